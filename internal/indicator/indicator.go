package indicator

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

// Event is a condition worth signalling on the status LED.
type Event string

const (
	EventStartup       Event = "startup"
	EventAlivePulse    Event = "alive-pulse"
	EventLinkConnected Event = "link-connected"
	EventLinkFailed    Event = "link-failed"
	EventRepLogged     Event = "rep-logged"
	EventRepFailed     Event = "rep-failed"
)

// Pattern is a fixed blink pattern: how many times and how long per blink.
type Pattern struct {
	Blinks   int
	Duration time.Duration
}

// patterns is the fixed event -> blink mapping, kept identical to what the
// original firmware flashed on the onboard LED.
var patterns = map[Event]Pattern{
	EventStartup:       {Blinks: 1, Duration: time.Second},
	EventAlivePulse:    {Blinks: 1, Duration: 50 * time.Millisecond},
	EventLinkConnected: {Blinks: 3, Duration: 100 * time.Millisecond},
	EventLinkFailed:    {Blinks: 5, Duration: 300 * time.Millisecond},
	EventRepLogged:     {Blinks: 2, Duration: 80 * time.Millisecond},
	EventRepFailed:     {Blinks: 4, Duration: 150 * time.Millisecond},
}

// PatternFor returns the blink pattern for the given event.
func PatternFor(e Event) (Pattern, bool) {
	p, ok := patterns[e]
	return p, ok
}

type Indicator interface {
	Signal(e Event)
}

// LEDIndicator drives a binary on/off LED through a sysfs-style value file
// (e.g. /sys/class/leds/led0/brightness, or a gpio value file).
type LEDIndicator struct {
	path string
}

func NewLEDIndicator(path string) *LEDIndicator {
	return &LEDIndicator{path: path}
}

func (l *LEDIndicator) Signal(e Event) {
	p, ok := patterns[e]
	if !ok {
		log.Warnf("indicator: unknown event %q", e)
		return
	}

	for i := 0; i < p.Blinks; i++ {
		l.set("1")
		time.Sleep(p.Duration)
		l.set("0")
		if i < p.Blinks-1 {
			time.Sleep(p.Duration)
		}
	}
}

func (l *LEDIndicator) set(value string) {
	if err := os.WriteFile(l.path, []byte(value), 0o644); err != nil {
		log.Tracef("indicator: write led value: %s", err)
	}
}

// LogIndicator is the headless fallback: no LED, just a diagnostic line.
type LogIndicator struct{}

func NewLogIndicator() *LogIndicator {
	return &LogIndicator{}
}

func (l *LogIndicator) Signal(e Event) {
	p := patterns[e]
	log.Debugf("indicator: %s (blinks: %d, duration: %s)", e, p.Blinks, p.Duration)
}
