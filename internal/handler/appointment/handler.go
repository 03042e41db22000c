package appointment

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/internal/service/scheduler"
	apperrors "github.com/medicenter/booking-api/pkg/errors"
	"github.com/medicenter/booking-api/pkg/httputil"
)

type Handler struct {
	scheduler *scheduler.Service
}

func NewHandler(sched *scheduler.Service) *Handler {
	return &Handler{scheduler: sched}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.POST("", h.BookAppointment)
		appointments.POST("/:id/cancel", h.CancelAppointment)
	}
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := model.AppointmentFilters{
		PatientID: c.Query("patient_id"),
		DoctorID:  c.Query("doctor_id"),
		Status:    model.AppointmentStatus(c.Query("status")),
	}

	appointments, err := h.scheduler.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

type BookRequest struct {
	SlotID    string `json:"slot_id" binding:"required"`
	PatientID string `json:"patient_id" binding:"required"`
}

// BookAppointment books a slot directly, outside the conversational
// flow. A slot taken since listing fails with 409.
func (h *Handler) BookAppointment(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), nil))
		return
	}

	apt, err := h.scheduler.Book(c.Request.Context(), req.SlotID, req.PatientID)
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrSlotUnavailable):
			httputil.RespondWithError(c, apperrors.Conflict(err.Error(), nil))
		case errors.Is(err, scheduler.ErrDurationMismatch):
			httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), nil))
		default:
			httputil.RespondWithError(c, err)
		}
		return
	}
	httputil.RespondWithCreated(c, apt)
}

// CancelAppointment cancels a confirmed appointment and frees its slot.
func (h *Handler) CancelAppointment(c *gin.Context) {
	var req model.CancelAppointmentRequest
	// Reason is optional; an empty body is fine.
	_ = c.ShouldBindJSON(&req)

	apt, err := h.scheduler.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}
