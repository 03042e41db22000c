package doctor

import (
	"github.com/gin-gonic/gin"

	"github.com/medicenter/booking-api/internal/repository"
	"github.com/medicenter/booking-api/pkg/httputil"
)

type Handler struct {
	doctors repository.DoctorRepository
}

func NewHandler(doctors repository.DoctorRepository) *Handler {
	return &Handler{doctors: doctors}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
	}
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.doctors.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctors)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	d, err := h.doctors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, d)
}
