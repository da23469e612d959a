package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mediahub/chat-center/models"
	"mediahub/chat-center/store"
	"mediahub/chat-center/utils"
	"mediahub/chat-center/ws"
)

type ChatHandler struct {
	store  *store.ChatStore
	hub    *ws.Hub
	logger *utils.Logger
}

func NewChatHandler(chatStore *store.ChatStore, hub *ws.Hub, logger *utils.Logger) *ChatHandler {
	return &ChatHandler{
		store:  chatStore,
		hub:    hub,
		logger: logger,
	}
}

// ListMessages handles GET /messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	c.JSON(http.StatusOK, models.Response{
		Code:    0,
		Message: "ok",
		Data:    h.store.ListMessages(),
	})
}

// SendMessage handles POST /send
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, models.Response{
			Code:    1,
			Message: "invalid request body",
		})
		return
	}

	msg, err := h.store.PostMessage(c.Request.Context(), req.Username, req.Content, req.Type)
	if err != nil {
		if store.IsValidation(err) {
			c.JSON(http.StatusOK, models.Response{
				Code:    1,
				Message: err.Error(),
			})
			return
		}
		h.logger.Error("Failed to post message", "error", err)
		c.JSON(http.StatusInternalServerError, models.Response{
			Code:    1,
			Message: "internal error",
		})
		return
	}

	h.hub.Broadcast(msg)

	c.JSON(http.StatusOK, models.Response{
		Code:    0,
		Message: "send ok",
		Data:    msg,
	})
}

// ListOnlineUsers handles GET /online
func (h *ChatHandler) ListOnlineUsers(c *gin.Context) {
	users, err := h.store.ListOnlineUsers(c.Request.Context())
	if err != nil {
		// Presence backend trouble should not break the chat UI; report an
		// empty room and keep serving.
		h.logger.Error("Failed to list online users", "error", err)
		users = []string{}
	}

	c.JSON(http.StatusOK, models.Response{
		Code:    0,
		Message: "ok",
		Data:    users,
	})
}

// Heartbeat handles POST /heartbeat
func (h *ChatHandler) Heartbeat(c *gin.Context) {
	var req models.HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, models.Response{
			Code:    1,
			Message: "invalid request body",
		})
		return
	}

	if err := h.store.Heartbeat(c.Request.Context(), req.Username); err != nil {
		if store.IsValidation(err) {
			c.JSON(http.StatusOK, models.Response{
				Code:    1,
				Message: err.Error(),
			})
			return
		}
		h.logger.Error("Failed to record heartbeat", "username", req.Username, "error", err)
		c.JSON(http.StatusInternalServerError, models.Response{
			Code:    1,
			Message: "internal error",
		})
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Code:    0,
		Message: "ok",
	})
}

// ClearMessages handles POST /clear
func (h *ChatHandler) ClearMessages(c *gin.Context) {
	h.store.ClearMessages()

	c.JSON(http.StatusOK, models.Response{
		Code:    0,
		Message: "cleared",
	})
}
