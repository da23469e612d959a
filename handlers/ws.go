package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"mediahub/chat-center/utils"
	"mediahub/chat-center/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware on the API;
	// the feed carries the same public room data.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub    *ws.Hub
	logger *utils.Logger
}

func NewWSHandler(hub *ws.Hub, logger *utils.Logger) *WSHandler {
	return &WSHandler{
		hub:    hub,
		logger: logger,
	}
}

// Subscribe handles GET /ws and streams newly posted messages to the client.
func (h *WSHandler) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	client := ws.NewClient(conn, h.hub, h.logger)
	go client.Serve()
}
