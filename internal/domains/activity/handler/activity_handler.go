package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"library-backend/internal/shared"
)

// StreamServer is satisfied by *realtime.Hub.
type StreamServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request) error
}

type Handler struct {
	stream StreamServer
}

func NewHandler(stream StreamServer) *Handler {
	return &Handler{stream: stream}
}

// Stream handles GET /api/activity/stream (websocket upgrade).
// Every recorded activity entry is pushed as {"type":"activity","data":{...}}.
func (h *Handler) Stream(c *gin.Context) {
	if err := h.stream.ServeWS(c.Writer, c.Request); err != nil {
		log.Warn().
			Err(err).
			Str("request_id", c.GetString(shared.ContextRequestID)).
			Msg("Websocket upgrade failed")
	}
}
