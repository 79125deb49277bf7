package workouts

import (
	"time"
)

const (
	TypeTreadmill = "treadmill"
	TypeOutdoor   = "outdoor"
)

// Workout is one recorded cardio session, normally coming from the
// treadmill tracker in the desktop app.
type Workout struct {
	ID             int       `json:"id"`
	Type           string    `json:"type"`
	StartedAt      time.Time `json:"startedAt"`
	EndedAt        time.Time `json:"endedAt"`
	DistanceMeters float64   `json:"distanceMeters"`
	Steps          int       `json:"steps"`
	Calories       int       `json:"calories"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (w Workout) Duration() time.Duration {
	return w.EndedAt.Sub(w.StartedAt)
}

type ListParams struct {
	From *time.Time
	To   *time.Time
}

// Summary aggregates workouts over a period, e.g. for the weekly card.
type Summary struct {
	Workouts      int           `json:"workouts"`
	TotalDistance float64       `json:"totalDistance"`
	TotalSteps    int           `json:"totalSteps"`
	TotalCalories int           `json:"totalCalories"`
	TotalDuration time.Duration `json:"totalDuration"`
}
