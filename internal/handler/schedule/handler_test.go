package schedule_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicenter/booking-api/internal/handler/schedule"
	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/internal/repository/csvstore"
)

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := csvstore.New(t.TempDir())
	patients := csvstore.NewPatientRepository(store)
	doctors := csvstore.NewDoctorRepository(store)
	slots := csvstore.NewSlotRepository(store)
	appointments := csvstore.NewAppointmentRepository(store)

	require.NoError(t, doctors.ReplaceAll(ctx, []*model.Doctor{
		{ID: "d-1", Name: "Dr. Sarah Johnson", Specialty: "General Medicine", Location: "Main Clinic"},
		{ID: "d-2", Name: "Dr. Michael Chen", Specialty: "Cardiology", Location: "Main Clinic"},
	}))
	require.NoError(t, patients.Upsert(ctx, &model.Patient{ID: "p-1", Name: "Jane Doe"}))

	day := time.Now().AddDate(0, 0, 2).Format(model.DateLayout)
	require.NoError(t, slots.ReplaceAll(ctx, []*model.Slot{
		{ID: "s-1", DoctorID: "d-1", Date: day, StartTime: "09:00", DurationMinutes: 60, Status: model.SlotStatusFree},
		{ID: "s-2", DoctorID: "d-1", Date: day, StartTime: "13:00", DurationMinutes: 30, Status: model.SlotStatusBooked},
		{ID: "s-3", DoctorID: "d-2", Date: day, StartTime: "09:00", DurationMinutes: 60, Status: model.SlotStatusFree},
	}))

	engine := gin.New()
	schedule.NewHandler(slots, patients, doctors, appointments).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func get(t *testing.T, engine *gin.Engine, path string, out interface{}) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

func TestListSlots(t *testing.T) {
	engine := newEngine(t)

	var resp struct {
		Data []model.Slot `json:"data"`
	}
	code := get(t, engine, "/api/v1/schedule", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp.Data, 3)

	resp.Data = nil
	code = get(t, engine, "/api/v1/schedule?doctor_id=d-1&status=free", &resp)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "s-1", resp.Data[0].ID)

	resp.Data = nil
	code = get(t, engine, "/api/v1/schedule?duration=30", &resp)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "s-2", resp.Data[0].ID)

	// The to date is inclusive; slots on that day are still returned
	day := time.Now().AddDate(0, 0, 2).Format(model.DateLayout)
	resp.Data = nil
	code = get(t, engine, "/api/v1/schedule?from="+day+"&to="+day, &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp.Data, 3)

	code = get(t, engine, "/api/v1/schedule?from=not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code = get(t, engine, "/api/v1/schedule?duration=abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetStats(t *testing.T) {
	engine := newEngine(t)

	var resp struct {
		Data schedule.Stats `json:"data"`
	}
	code := get(t, engine, "/api/v1/stats", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, resp.Data.Patients)
	assert.Equal(t, 2, resp.Data.Doctors)
	assert.Equal(t, 3, resp.Data.TotalSlots)
	assert.Equal(t, 2, resp.Data.AvailableSlots)
	assert.Equal(t, 0, resp.Data.Appointments)
}
