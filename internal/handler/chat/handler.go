package chat

import (
	"github.com/gin-gonic/gin"

	"github.com/medicenter/booking-api/internal/service/conversation"
	apperrors "github.com/medicenter/booking-api/pkg/errors"
	"github.com/medicenter/booking-api/pkg/httputil"
)

type Handler struct {
	service *conversation.Service
}

func NewHandler(service *conversation.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/chat", h.Chat)
}

type ChatRequest struct {
	// SessionID is empty on the first turn; the reply carries the ID to
	// send on subsequent turns.
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Chat advances the booking conversation by one turn.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	reply, err := h.service.Advance(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, reply)
}
