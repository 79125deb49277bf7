package link

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/2beens/fitstats/internal/indicator"

	log "github.com/sirupsen/logrus"
)

type Status string

const (
	StatusSearching Status = "searching"
	StatusConnected Status = "connected"
	StatusError     Status = "error"
)

// Prober checks whether the network link actually carries traffic.
type Prober interface {
	Probe(ctx context.Context) error
}

// TCPProber dials a well-known address (the gateway, or the backend host)
// to verify the link.
type TCPProber struct {
	Addr    string
	Timeout time.Duration
}

func (p *TCPProber) Probe(ctx context.Context) error {
	dialer := net.Dialer{Timeout: p.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return err
	}
	return conn.Close()
}

// Monitor supervises the network link. Detection keeps running while the
// link is down - only delivery is affected, which is why the monitor never
// blocks longer than maxAttempts bounded probes per cycle.
type Monitor struct {
	prober        Prober
	maxAttempts   int
	retryDelay    time.Duration
	checkInterval time.Duration
	indicator     indicator.Indicator

	mutex       sync.Mutex
	status      Status
	lastChecked time.Time
}

type NewMonitorParams struct {
	Prober        Prober
	MaxAttempts   int
	RetryDelay    time.Duration
	CheckInterval time.Duration
	Indicator     indicator.Indicator
}

func NewMonitor(params NewMonitorParams) *Monitor {
	return &Monitor{
		prober:        params.Prober,
		maxAttempts:   params.MaxAttempts,
		retryDelay:    params.RetryDelay,
		checkInterval: params.CheckInterval,
		indicator:     params.Indicator,
		status:        StatusSearching,
	}
}

func (m *Monitor) Status() Status {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.status
}

func (m *Monitor) IsConnected() bool {
	return m.Status() == StatusConnected
}

// EnsureConnected checks the link and, when down, tries to re-establish it
// with a bounded number of probe attempts before giving up for this cycle.
// It reports whether the link is up afterwards.
func (m *Monitor) EnsureConnected(ctx context.Context) bool {
	m.mutex.Lock()
	if m.status == StatusConnected && time.Since(m.lastChecked) < m.checkInterval {
		m.mutex.Unlock()
		return true
	}
	m.mutex.Unlock()

	return m.reconnect(ctx)
}

// ForceReconnect drops the current link state and re-establishes the
// connection. Called by the delivery reporter after persistent failures.
func (m *Monitor) ForceReconnect(ctx context.Context) {
	log.Warnf("link: forced reconnect requested")
	m.setStatus(StatusSearching)
	m.reconnect(ctx)
}

func (m *Monitor) reconnect(ctx context.Context) bool {
	wasConnected := m.Status() == StatusConnected
	m.setStatus(StatusSearching)

	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			m.setStatus(StatusError)
			return false
		}

		if err := m.prober.Probe(ctx); err == nil {
			m.setStatus(StatusConnected)
			if !wasConnected {
				log.Infof("link: connected (attempt %d)", attempt)
				m.indicator.Signal(indicator.EventLinkConnected)
			}
			return true
		} else {
			log.Tracef("link: probe attempt %d/%d failed: %s", attempt, m.maxAttempts, err)
		}

		if attempt < m.maxAttempts {
			select {
			case <-ctx.Done():
				m.setStatus(StatusError)
				return false
			case <-time.After(m.retryDelay):
			}
		}
	}

	// give up for this cycle, the next one will try again
	m.setStatus(StatusError)
	log.Warnf("link: down, giving up after %d attempts", m.maxAttempts)
	m.indicator.Signal(indicator.EventLinkFailed)
	return false
}

func (m *Monitor) setStatus(status Status) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.status != status {
		log.Debugf("link: status %s -> %s", m.status, status)
	}
	m.status = status
	if status == StatusConnected {
		m.lastChecked = time.Now()
	}
}
