package detector

import (
	"errors"
	"time"
)

// Sample is one ultrasonic distance reading. A sample where the echo never
// came back, or where the computed distance is beyond the sensor's plausible
// range, is not an error - it is a valid "nothing in front of the sensor"
// input, marked with Valid=false.
type Sample struct {
	Centimeters float64
	Valid       bool
}

func ValidSample(centimeters float64) Sample {
	return Sample{Centimeters: centimeters, Valid: true}
}

func InvalidSample() Sample {
	return Sample{}
}

type Config struct {
	// TriggerCm - a valid reading at or below this arms a rep
	TriggerCm float64
	// ReleaseCm - a reading at or above this (or an invalid one) re-arms
	// the detector; must be strictly greater than TriggerCm, the gap is the
	// hysteresis band
	ReleaseCm float64
	// Debounce - minimum time between two counted reps
	Debounce time.Duration
}

var ErrInvalidThresholds = errors.New("release threshold must be strictly greater than trigger threshold")

// Detector turns the raw distance sample stream into discrete rep events.
//
// Two guards work together: the hysteresis band (trigger vs release
// threshold) stops a reading oscillating around a single boundary from
// counting one physical rep multiple times, and the debounce timer bounds
// the event rate even when hysteresis is satisfied by fast noise spikes.
type Detector struct {
	cfg     Config
	armed   bool
	lastRep time.Time
}

func New(cfg Config) (*Detector, error) {
	if cfg.ReleaseCm <= cfg.TriggerCm {
		return nil, ErrInvalidThresholds
	}
	return &Detector{
		cfg:   cfg,
		armed: true,
	}, nil
}

// Tick feeds one sample into the state machine and reports whether a rep
// was counted on this sample. It is a pure step function over (now, sample),
// so tests can drive it with a simulated clock.
func (d *Detector) Tick(now time.Time, s Sample) bool {
	if d.armed {
		if s.Valid && s.Centimeters <= d.cfg.TriggerCm && now.Sub(d.lastRep) > d.cfg.Debounce {
			d.armed = false
			d.lastRep = now
			return true
		}
		return false
	}

	// cooldown: wait for the bar (or the athlete) to clear the sensor
	if !s.Valid || s.Centimeters >= d.cfg.ReleaseCm {
		d.armed = true
	}
	return false
}

// Armed reports whether the next qualifying close-range sample may count a rep.
func (d *Detector) Armed() bool {
	return d.armed
}

// LastRep returns the time of the last counted rep (zero before the first one).
func (d *Detector) LastRep() time.Time {
	return d.lastRep
}
