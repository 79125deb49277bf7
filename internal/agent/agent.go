package agent

import (
	"context"
	"time"

	"github.com/2beens/fitstats/internal/detector"
	"github.com/2beens/fitstats/internal/indicator"
	"github.com/2beens/fitstats/internal/sensor"
	"github.com/2beens/fitstats/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

type repReporter interface {
	Report(ctx context.Context) (int, error)
}

type linkMonitor interface {
	EnsureConnected(ctx context.Context) bool
}

// Agent is the device-side cooperative loop: one iteration per cycle runs
// the link check, a timed sensor poll, the detector tick and, on a counted
// rep, a single delivery attempt. Everything runs in one goroutine - there
// is exactly one outstanding network call at any time, and a dead link never
// blocks rep detection.
type Agent struct {
	link     linkMonitor
	sampler  sensor.Sampler
	detector *detector.Detector
	reporter repReporter
	ind      indicator.Indicator
	metrics  *metrics.Manager

	cycleInterval time.Duration
	pollInterval  time.Duration
	aliveInterval time.Duration

	lastPoll  time.Time
	lastPulse time.Time
}

type NewAgentParams struct {
	Link     linkMonitor
	Sampler  sensor.Sampler
	Detector *detector.Detector
	Reporter repReporter
	Ind      indicator.Indicator
	Metrics  *metrics.Manager

	// CycleInterval is the loop pace; defaults to 10ms
	CycleInterval time.Duration
	// PollInterval is the sensor sampling cadence
	PollInterval time.Duration
	// AliveInterval is the cadence of the liveness indicator pulse
	AliveInterval time.Duration
}

func New(params NewAgentParams) *Agent {
	cycleInterval := params.CycleInterval
	if cycleInterval <= 0 {
		cycleInterval = 10 * time.Millisecond
	}
	return &Agent{
		link:          params.Link,
		sampler:       params.Sampler,
		detector:      params.Detector,
		reporter:      params.Reporter,
		ind:           params.Ind,
		metrics:       params.Metrics,
		cycleInterval: cycleInterval,
		pollInterval:  params.PollInterval,
		aliveInterval: params.AliveInterval,
	}
}

// Run drives the loop until the context is done. Nothing in a cycle is
// fatal: sensor, detector and delivery failures all feed back into the state
// machine or the link monitor instead of propagating up.
func (a *Agent) Run(ctx context.Context) {
	log.Infof("agent: starting, poll interval %s, alive pulse every %s", a.pollInterval, a.aliveInterval)
	a.ind.Signal(indicator.EventStartup)

	ticker := time.NewTicker(a.cycleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infof("agent: stopping: %s", ctx.Err())
			return
		case <-ticker.C:
			a.Step(ctx, time.Now())
		}
	}
}

// Step executes one loop cycle at the given instant. It is exported so tests
// and the workout simulator can drive the agent with an artificial clock.
func (a *Agent) Step(ctx context.Context, now time.Time) {
	linkUp := a.link.EnsureConnected(ctx)
	if a.metrics != nil {
		if linkUp {
			a.metrics.GaugeLinkUp.Set(1)
		} else {
			a.metrics.GaugeLinkUp.Set(0)
		}
	}

	if now.Sub(a.lastPoll) >= a.pollInterval {
		a.lastPoll = now
		a.pollOnce(ctx, now)
	}

	if now.Sub(a.lastPulse) >= a.aliveInterval {
		a.lastPulse = now
		a.ind.Signal(indicator.EventAlivePulse)
	}
}

func (a *Agent) pollOnce(ctx context.Context, now time.Time) {
	sample := a.sampler.Sample(ctx)
	if sample.Valid {
		log.Tracef("agent: distance %.1f cm", sample.Centimeters)
	} else {
		log.Tracef("agent: distance reading invalid")
	}

	if !a.detector.Tick(now, sample) {
		return
	}

	log.Infof("agent: rep detected")
	if a.metrics != nil {
		a.metrics.CounterRepsDetected.Inc()
	}

	newCount, err := a.reporter.Report(ctx)
	if err != nil {
		log.Warnf("agent: rep not delivered: %s", err)
		a.countDelivery("failed")
		a.ind.Signal(indicator.EventRepFailed)
		return
	}

	log.Infof("agent: rep logged, today: %d", newCount)
	a.countDelivery("ok")
	a.ind.Signal(indicator.EventRepLogged)
}

func (a *Agent) countDelivery(outcome string) {
	if a.metrics == nil {
		return
	}
	a.metrics.CounterRepDeliveries.With(
		prometheus.Labels{"outcome": outcome},
	).Inc()
}
