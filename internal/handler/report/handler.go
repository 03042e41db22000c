package report

import (
	"github.com/gin-gonic/gin"

	"github.com/medicenter/booking-api/internal/service/report"
	apperrors "github.com/medicenter/booking-api/pkg/errors"
	"github.com/medicenter/booking-api/pkg/httputil"
)

type Handler struct {
	service *report.Service
}

func NewHandler(service *report.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/reports/:kind", h.GenerateReport)
}

type GenerateResponse struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// GenerateReport writes the requested table to a timestamped XLSX file
// and returns its path.
func (h *Handler) GenerateReport(c *gin.Context) {
	ctx := c.Request.Context()
	kind := c.Param("kind")

	var (
		path string
		err  error
	)
	switch kind {
	case "appointments":
		path, err = h.service.ExportAppointments(ctx)
	case "patients":
		path, err = h.service.ExportPatients(ctx)
	case "schedules":
		path, err = h.service.ExportSchedules(ctx)
	default:
		httputil.RespondWithError(c, apperrors.BadRequest("unknown report kind: "+kind, nil))
		return
	}
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, GenerateResponse{Kind: kind, Path: path})
}
