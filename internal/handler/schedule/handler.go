package schedule

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/internal/repository"
	apperrors "github.com/medicenter/booking-api/pkg/errors"
	"github.com/medicenter/booking-api/pkg/httputil"
)

type Handler struct {
	slots        repository.SlotRepository
	patients     repository.PatientRepository
	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
}

func NewHandler(
	slots repository.SlotRepository,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	appointments repository.AppointmentRepository,
) *Handler {
	return &Handler{
		slots:        slots,
		patients:     patients,
		doctors:      doctors,
		appointments: appointments,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/schedule", h.ListSlots)
	r.GET("/stats", h.GetStats)
}

// ListSlots returns slots filtered by doctor, date window, duration and
// status. All filters are optional.
func (h *Handler) ListSlots(c *gin.Context) {
	filter := repository.SlotFilter{
		DoctorID: c.Query("doctor_id"),
		Status:   model.SlotStatus(c.Query("status")),
	}

	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation(model.DateLayout, v, time.Local)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid from date, expected YYYY-MM-DD", err))
			return
		}
		filter.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation(model.DateLayout, v, time.Local)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid to date, expected YYYY-MM-DD", err))
			return
		}
		// The end date is inclusive: cover its whole day, not midnight.
		filter.To = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if v := c.Query("duration"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d <= 0 {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid duration", err))
			return
		}
		filter.DurationMinutes = d
	}

	slots, err := h.slots.Find(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, slots)
}

type Stats struct {
	Patients          int `json:"patients"`
	Doctors           int `json:"doctors"`
	AvailableSlots    int `json:"available_slots"`
	TotalSlots        int `json:"total_slots"`
	Appointments      int `json:"appointments"`
	ConfirmedUpcoming int `json:"confirmed_upcoming"`
}

// GetStats returns record counts across the flat tables.
func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	patients, err := h.patients.List(ctx)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	doctors, err := h.doctors.List(ctx)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	slots, err := h.slots.List(ctx)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	appointments, err := h.appointments.List(ctx, model.AppointmentFilters{})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	stats := Stats{
		Patients:     len(patients),
		Doctors:      len(doctors),
		TotalSlots:   len(slots),
		Appointments: len(appointments),
	}
	for _, s := range slots {
		if s.Status == model.SlotStatusFree {
			stats.AvailableSlots++
		}
	}
	now := time.Now()
	for _, a := range appointments {
		if a.Status != model.AppointmentStatusConfirmed {
			continue
		}
		if start, err := a.StartsAt(); err == nil && start.After(now) {
			stats.ConfirmedUpcoming++
		}
	}
	httputil.RespondWithSuccess(c, stats)
}
