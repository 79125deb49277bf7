package pullups_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/fitstats/internal/pullups"
	"github.com/2beens/fitstats/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHandler_HandleIncrement(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := NewMockservice(ctrl)
	h := pullups.NewHandler(mockService, metrics.NewTestManager())

	day := pullups.Day(time.Now())
	mockService.EXPECT().
		Increment(gomock.Any(), gomock.Any()).
		Return(&pullups.DayCount{
			Day:       day,
			Reps:      42,
			UpdatedAt: time.Now().UTC(),
		}, nil)

	// the agent sends an empty JSON object, nothing else
	req, err := http.NewRequest("POST", "/pullups/increment", bytes.NewBufferString("{}"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleIncrement).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var dc pullups.DayCount
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dc))
	assert.Equal(t, 42, dc.Reps)
	assert.True(t, day.Equal(dc.Day))
}

func TestHandler_HandleIncrement_ServiceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := NewMockservice(ctrl)
	h := pullups.NewHandler(mockService, metrics.NewTestManager())

	mockService.EXPECT().
		Increment(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("db gone"))

	req, err := http.NewRequest("POST", "/pullups/increment", bytes.NewBufferString("{}"))
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleIncrement).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHandler_HandleToday(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := NewMockservice(ctrl)
	h := pullups.NewHandler(mockService, metrics.NewTestManager())

	mockService.EXPECT().
		Today(gomock.Any()).
		Return(&pullups.DayCount{
			Day:  pullups.Day(time.Now()),
			Reps: 7,
		}, nil)

	req, err := http.NewRequest("GET", "/pullups/today", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleToday).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var dc pullups.DayCount
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dc))
	assert.Equal(t, 7, dc.Reps)
}

func TestHandler_HandleHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := NewMockservice(ctrl)
	h := pullups.NewHandler(mockService, metrics.NewTestManager())

	day := pullups.Day(time.Now())
	mockService.EXPECT().
		History(gomock.Any(), 7).
		Return([]pullups.DayCount{
			{Day: day.AddDate(0, 0, -1), Reps: 10},
			{Day: day, Reps: 12},
		}, nil)

	req, err := http.NewRequest("GET", "/pullups/history/7", nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"days": "7"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleHistory).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp pullups.HistoryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Days, 2)
	assert.Equal(t, 12, resp.Days[1].Reps)
}

func TestHandler_HandleHistory_InvalidDays(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := NewMockservice(ctrl)
	h := pullups.NewHandler(mockService, metrics.NewTestManager())

	for _, days := range []string{"nope", "-3", "0"} {
		req, err := http.NewRequest("GET", "/pullups/history/"+days, nil)
		require.NoError(t, err)
		req = mux.SetURLVars(req, map[string]string{"days": days})

		rr := httptest.NewRecorder()
		http.HandlerFunc(h.HandleHistory).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	}
}

func TestHandler_HandleStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := NewMockservice(ctrl)
	h := pullups.NewHandler(mockService, metrics.NewTestManager())

	mockService.EXPECT().
		Stats(gomock.Any(), 14).
		Return(&pullups.Stats{
			Days:         10,
			TotalReps:    230,
			AvgPerDay:    23,
			PersonalBest: 40,
		}, nil)

	req, err := http.NewRequest("GET", "/pullups/stats?days=14", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleStats).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var stats pullups.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 40, stats.PersonalBest)
	assert.InDelta(t, 23, stats.AvgPerDay, 0.001)
}
