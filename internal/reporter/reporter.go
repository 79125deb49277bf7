package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/2beens/fitstats/internal/telemetry/metrics"
	"github.com/2beens/fitstats/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var ErrLinkDown = errors.New("network link is down")

// linkMonitor is the declared dependency through which persistent delivery
// failures force a reconnect.
type linkMonitor interface {
	IsConnected() bool
	ForceReconnect(ctx context.Context)
}

// IncrementResponse is the backend's answer to the increment RPC: the new
// daily count after this rep was recorded.
type IncrementResponse struct {
	Day  time.Time `json:"day"`
	Reps int       `json:"reps"`
}

// Reporter delivers one rep event with a single network call. Events are not
// queued or retried individually - losing an occasional count on a transient
// failure is a simpler failure mode than a local durable queue. Only
// persistent failure (failureThreshold consecutive misses) triggers the
// heavier corrective action of forcing a reconnect.
type Reporter struct {
	endpoint         string
	apiKey           string
	httpClient       *http.Client
	link             linkMonitor
	timeout          time.Duration
	metrics          *metrics.Manager
	failures         int
	failureThreshold int
}

type NewReporterParams struct {
	Endpoint         string
	APIKey           string
	HTTPClient       *http.Client
	Link             linkMonitor
	Timeout          time.Duration
	Metrics          *metrics.Manager
	FailureThreshold int
}

func NewReporter(params NewReporterParams) *Reporter {
	failureThreshold := params.FailureThreshold
	if failureThreshold <= 0 {
		failureThreshold = 3
	}
	return &Reporter{
		endpoint:         params.Endpoint,
		apiKey:           params.APIKey,
		httpClient:       params.HTTPClient,
		link:             params.Link,
		timeout:          params.Timeout,
		metrics:          params.Metrics,
		failureThreshold: failureThreshold,
	}
}

// Report records one rep on the backend daily counter and returns the new
// count. Exactly one request is made per call; the same event is never
// resubmitted on failure.
func (r *Reporter) Report(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "reporter.report")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !r.link.IsConnected() {
		// no network call while the link is down
		return 0, r.fail(ctx, ErrLinkDown)
	}

	newCount, err := r.call(ctx)
	if err != nil {
		return 0, r.fail(ctx, err)
	}

	r.failures = 0
	span.SetAttributes(attribute.Int("reps.today", newCount))
	return newCount, nil
}

// Failures returns the current number of consecutive failed deliveries.
func (r *Reporter) Failures() int {
	return r.failures
}

func (r *Reporter) call(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewBufferString("{}"))
	if err != nil {
		return 0, fmt.Errorf("create increment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("increment call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("increment call: unexpected status %d", resp.StatusCode)
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read increment response: %w", err)
	}

	var incrementResp IncrementResponse
	if err := json.Unmarshal(respBytes, &incrementResp); err != nil {
		// the rep was recorded, the body is just decoration
		log.Warnf("reporter: unmarshal increment response [%s]: %s", respBytes, err)
		return 0, nil
	}
	return incrementResp.Reps, nil
}

func (r *Reporter) fail(ctx context.Context, err error) error {
	r.failures++
	log.Warnf("reporter: delivery failed (%d consecutive): %s", r.failures, err)

	if r.failures >= r.failureThreshold {
		log.Warnf("reporter: %d consecutive failures, forcing reconnect", r.failures)
		if r.metrics != nil {
			r.metrics.CounterForcedReconnects.Inc()
		}
		r.link.ForceReconnect(ctx)
		// reset regardless of the reconnect outcome
		r.failures = 0
	}
	return err
}
