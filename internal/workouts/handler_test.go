package workouts_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/fitstats/internal/workouts"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func randomWorkout() workouts.Workout {
	start := gofakeit.DateRange(
		time.Now().AddDate(0, -1, 0),
		time.Now().Add(-2*time.Hour),
	).UTC().Truncate(time.Second)
	return workouts.Workout{
		Type:           workouts.TypeTreadmill,
		StartedAt:      start,
		EndedAt:        start.Add(30 * time.Minute),
		DistanceMeters: gofakeit.Float64Range(1000, 10000),
		Steps:          gofakeit.Number(1000, 12000),
		Calories:       gofakeit.Number(100, 600),
	}
}

func TestHandler_HandleAdd(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock)

	workout := randomWorkout()
	workoutJson, err := json.Marshal(workout)
	require.NoError(t, err)

	repoMock.EXPECT().
		Add(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, w workouts.Workout) (*workouts.Workout, error) {
			assert.Equal(t, workout.StartedAt, w.StartedAt)
			assert.Equal(t, workout.Steps, w.Steps)
			w.ID = 1
			return &w, nil
		})

	req, err := http.NewRequest("POST", "/workouts", bytes.NewBuffer(workoutJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleAdd).ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var added workouts.Workout
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &added))
	assert.Equal(t, 1, added.ID)
	assert.Equal(t, workout.Steps, added.Steps)
}

func TestHandler_HandleAdd_InvalidContentType(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock)

	req, err := http.NewRequest("POST", "/workouts", bytes.NewBufferString("{}"))
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleAdd).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_HandleAdd_EndBeforeStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock)

	workout := randomWorkout()
	workout.EndedAt = workout.StartedAt.Add(-time.Minute)
	workoutJson, err := json.Marshal(workout)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/workouts", bytes.NewBuffer(workoutJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleAdd).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_HandleGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock)

	repoMock.EXPECT().
		Get(gomock.Any(), 33).
		Return(nil, workouts.ErrWorkoutNotFound)

	req, err := http.NewRequest("GET", "/workouts/33", nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"id": "33"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleGet).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_HandleList_DateFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock)

	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)

	repoMock.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, params workouts.ListParams) ([]workouts.Workout, error) {
			require.NotNil(t, params.From)
			require.NotNil(t, params.To)
			assert.True(t, from.Equal(*params.From))
			assert.True(t, to.Equal(*params.To))
			return []workouts.Workout{randomWorkout(), randomWorkout()}, nil
		})

	req, err := http.NewRequest(
		"GET",
		"/workouts?from="+from.Format(time.RFC3339)+"&to="+to.Format(time.RFC3339),
		nil,
	)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleList).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp workouts.ListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Len(t, resp.Workouts, 2)
}

func TestHandler_HandleWeeklySummary(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock)

	w1 := randomWorkout()
	w2 := randomWorkout()
	repoMock.EXPECT().
		List(gomock.Any(), gomock.Any()).
		Return([]workouts.Workout{w1, w2}, nil)

	req, err := http.NewRequest("GET", "/workouts/weekly", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleWeeklySummary).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var summary workouts.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Workouts)
	assert.InDelta(t, w1.DistanceMeters+w2.DistanceMeters, summary.TotalDistance, 0.001)
	assert.Equal(t, w1.Steps+w2.Steps, summary.TotalSteps)
	assert.Equal(t, w1.Calories+w2.Calories, summary.TotalCalories)
	assert.Equal(t, w1.Duration()+w2.Duration(), summary.TotalDuration)
}

func TestHandler_HandleUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock)

	workout := randomWorkout()
	workoutJson, err := json.Marshal(workout)
	require.NoError(t, err)

	repoMock.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, w *workouts.Workout) error {
			assert.Equal(t, 12, w.ID)
			assert.Equal(t, workout.Steps, w.Steps)
			return nil
		})

	req, err := http.NewRequest("PUT", "/workouts/12", bytes.NewBuffer(workoutJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req = mux.SetURLVars(req, map[string]string{"id": "12"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleUpdate).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp workouts.UpdateWorkoutResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 12, resp.UpdatedID)
}

func TestHandler_HandleDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock)

	repoMock.EXPECT().
		Delete(gomock.Any(), 5).
		Return(nil)

	req, err := http.NewRequest("DELETE", "/workouts/5", nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"id": "5"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleDelete).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp workouts.DeleteWorkoutResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.DeletedID)
}
