package pullups

import (
	"time"
)

// DayCount is the per-calendar-day pull-up counter, keyed by date. It is
// only ever mutated through the atomic increment, once per delivered rep.
type DayCount struct {
	Day       time.Time `json:"day"`
	Reps      int       `json:"reps"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stats is what the desktop app shows on the pull-ups card: the average
// reps per active day and the personal best, over the requested window.
type Stats struct {
	Days         int     `json:"days"`
	TotalReps    int     `json:"totalReps"`
	AvgPerDay    float64 `json:"avgPerDay"`
	PersonalBest int     `json:"personalBest"`
}

// Day truncates the given time to its calendar day in UTC; the backend keys
// daily counters by that date regardless of where the agent runs.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
