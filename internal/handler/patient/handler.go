package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/internal/service/patient"
	apperrors "github.com/medicenter/booking-api/pkg/errors"
	"github.com/medicenter/booking-api/pkg/httputil"
)

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.POST("", h.RegisterPatient)
		patients.PUT("/:id/insurance", h.UpdateInsurance)
	}
}

// ListPatients returns all patients, optionally filtered by a name
// search term.
func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.Search(c.Request.Context(), c.Query("search"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

// RegisterPatient creates a patient record directly, outside the
// conversational flow.
func (h *Handler) RegisterPatient(c *gin.Context) {
	var req model.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), nil))
		return
	}

	p, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, p)
}

func (h *Handler) UpdateInsurance(c *gin.Context) {
	var ins model.Insurance
	if err := c.ShouldBindJSON(&ins); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), nil))
		return
	}

	p, err := h.service.UpdateInsurance(c.Request.Context(), c.Param("id"), ins)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}
