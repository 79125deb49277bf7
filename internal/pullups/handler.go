package pullups

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fitstats/internal/telemetry/metrics"
	"github.com/2beens/fitstats/internal/telemetry/tracing"
	"github.com/2beens/fitstats/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=pullups_test

type service interface {
	Increment(ctx context.Context, day time.Time) (*DayCount, error)
	Today(ctx context.Context) (*DayCount, error)
	History(ctx context.Context, days int) ([]DayCount, error)
	Stats(ctx context.Context, days int) (*Stats, error)
}

type Handler struct {
	service service
	metrics *metrics.Manager
}

func NewHandler(service service, metrics *metrics.Manager) *Handler {
	return &Handler{
		service: service,
		metrics: metrics,
	}
}

// HandleIncrement counts one rep for today. The agent sends an empty JSON
// object as body; the payload carries nothing, the authenticated request
// itself is the event. Responds with the new daily counter.
func (handler *Handler) HandleIncrement(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.pullups.increment")
	defer span.End()

	dc, err := handler.service.Increment(ctx, time.Now())
	if err != nil {
		log.Errorf("increment pullups: %s", err)
		http.Error(w, "increment failed", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterPullupIncrements.Inc()
	log.Debugf("pullups incremented, %s: %d", dc.Day.Format(time.DateOnly), dc.Reps)

	dcJson, err := json.Marshal(dc)
	if err != nil {
		log.Errorf("failed to marshal pullups counter: %s", err)
		http.Error(w, "increment failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, dcJson, http.StatusOK)
}

func (handler *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.pullups.today")
	defer span.End()

	dc, err := handler.service.Today(ctx)
	if err != nil {
		log.Errorf("get today pullups: %s", err)
		http.Error(w, "get today failed", http.StatusInternalServerError)
		return
	}

	dcJson, err := json.Marshal(dc)
	if err != nil {
		log.Errorf("failed to marshal pullups counter: %s", err)
		http.Error(w, "get today failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, dcJson, http.StatusOK)
}

type HistoryResponse struct {
	Days []DayCount `json:"days"`
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.pullups.history")
	defer span.End()

	vars := mux.Vars(r)
	days, err := strconv.Atoi(vars["days"])
	if err != nil || days <= 0 {
		http.Error(w, "invalid days parameter", http.StatusBadRequest)
		return
	}

	counts, err := handler.service.History(ctx, days)
	if err != nil {
		log.Errorf("pullups history [%d days]: %s", days, err)
		http.Error(w, "history failed", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(HistoryResponse{Days: counts})
	if err != nil {
		log.Errorf("failed to marshal pullups history: %s", err)
		http.Error(w, "history failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.pullups.stats")
	defer span.End()

	days := 30
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		var err error
		days, err = strconv.Atoi(daysParam)
		if err != nil || days <= 0 {
			http.Error(w, "invalid days parameter", http.StatusBadRequest)
			return
		}
	}

	stats, err := handler.service.Stats(ctx, days)
	if err != nil {
		log.Errorf("pullups stats [%d days]: %s", days, err)
		http.Error(w, "stats failed", http.StatusInternalServerError)
		return
	}

	statsJson, err := json.Marshal(stats)
	if err != nil {
		log.Errorf("failed to marshal pullups stats: %s", err)
		http.Error(w, "stats failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, statsJson, http.StatusOK)
}
