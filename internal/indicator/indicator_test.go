package indicator_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/2beens/fitstats/internal/indicator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternFor(t *testing.T) {
	for _, event := range []indicator.Event{
		indicator.EventStartup,
		indicator.EventAlivePulse,
		indicator.EventLinkConnected,
		indicator.EventLinkFailed,
		indicator.EventRepLogged,
		indicator.EventRepFailed,
	} {
		p, ok := indicator.PatternFor(event)
		require.True(t, ok, "no pattern for %s", event)
		assert.Positive(t, p.Blinks)
		assert.Positive(t, p.Duration)
	}

	_, ok := indicator.PatternFor("made-up-event")
	assert.False(t, ok)
}

func TestPatterns_DistinctPerOutcome(t *testing.T) {
	connected, _ := indicator.PatternFor(indicator.EventLinkConnected)
	failed, _ := indicator.PatternFor(indicator.EventLinkFailed)
	assert.NotEqual(t, connected, failed)

	logged, _ := indicator.PatternFor(indicator.EventRepLogged)
	repFailed, _ := indicator.PatternFor(indicator.EventRepFailed)
	assert.NotEqual(t, logged, repFailed)
}

func TestLEDIndicator_WritesValueFile(t *testing.T) {
	ledPath := filepath.Join(t.TempDir(), "brightness")

	led := indicator.NewLEDIndicator(ledPath)
	led.Signal(indicator.EventAlivePulse)

	// the pattern ends with the LED off
	value, err := os.ReadFile(ledPath)
	require.NoError(t, err)
	assert.Equal(t, "0", string(value))
}

func TestLEDIndicator_BoundedBlinkTime(t *testing.T) {
	ledPath := filepath.Join(t.TempDir(), "brightness")
	led := indicator.NewLEDIndicator(ledPath)

	start := time.Now()
	led.Signal(indicator.EventRepLogged)
	// 2 blinks of 80ms never hold the loop for more than a few hundred ms
	assert.Less(t, time.Since(start), time.Second)
}

func TestLogIndicator_UnknownEventNoPanic(t *testing.T) {
	ind := indicator.NewLogIndicator()
	assert.NotPanics(t, func() {
		ind.Signal(indicator.EventStartup)
		ind.Signal("made-up-event")
	})
}
