package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models/dto"
)

// UserIDFunc extracts the authenticated user id from a request. Zero means
// the caller has no profile and cannot subscribe.
type UserIDFunc func(c *gin.Context) int64

// Handler upgrades requests into notification streams
type Handler struct {
	hub      *Hub
	userID   UserIDFunc
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, userID UserIDFunc, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		userID:   userID,
		upgrader: newUpgrader(),
		logger:   logger,
	}
}

// HandleConnection godoc
// @Summary Subscribe to notifications
// @Description Upgrades the connection to a WebSocket that receives an event for every new notification of the caller
// @Tags notifications
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "No profile"
// @Router /notifications/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	userID := h.userID(c)
	if userID == 0 {
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse("A user profile is required to subscribe", nil))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		userID: userID,
		logger: h.logger,
	}
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
