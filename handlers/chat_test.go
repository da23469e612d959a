package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"mediahub/chat-center/models"
	"mediahub/chat-center/store"
	"mediahub/chat-center/utils"
	"mediahub/chat-center/ws"
)

// envelope mirrors models.Response with raw data for per-test decoding.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// brokenPresence simulates an unreachable presence backend.
type brokenPresence struct{}

func (brokenPresence) Touch(context.Context, string) error {
	return errors.New("presence backend unavailable")
}

func (brokenPresence) Online(context.Context) ([]string, error) {
	return nil, errors.New("presence backend unavailable")
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := utils.NewDiscardLogger()
	path := filepath.Join(t.TempDir(), "chat_messages.json")
	chatStore := store.NewChatStore(path, 100, store.NewMemoryPresence(300*time.Second), logger)
	hub := ws.NewHub(logger)
	handler := NewChatHandler(chatStore, hub, logger)

	router := gin.New()
	router.GET("/messages", handler.ListMessages)
	router.POST("/send", handler.SendMessage)
	router.GET("/online", handler.ListOnlineUsers)
	router.POST("/heartbeat", handler.Heartbeat)
	router.POST("/clear", handler.ClearMessages)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func TestSendAndListMessages(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/send", models.SendMessageRequest{
		Username: "alice",
		Content:  "hi",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.Code != 0 {
		t.Fatalf("expected code 0, got %d (%s)", env.Code, env.Message)
	}

	var created models.Message
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode created message: %v", err)
	}
	if created.Username != "alice" || created.Content != "hi" || created.Type != models.MessageTypeText {
		t.Fatalf("unexpected created message: %+v", created)
	}

	_, env = doJSON(t, router, http.MethodGet, "/messages", nil)
	var messages []models.Message
	if err := json.Unmarshal(env.Data, &messages); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(messages) != 1 || messages[0] != created {
		t.Fatalf("expected [%+v], got %+v", created, messages)
	}
}

func TestSendMessageValidationFailure(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/send", models.SendMessageRequest{
		Username: "",
		Content:  "hi",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.Code != 1 {
		t.Fatalf("expected code 1, got %d", env.Code)
	}
	if env.Message == "" {
		t.Fatalf("expected a human-readable failure message")
	}
	if len(env.Data) != 0 {
		t.Fatalf("expected no data on validation failure, got %s", env.Data)
	}

	// The failed post must not have touched state.
	_, env = doJSON(t, router, http.MethodGet, "/messages", nil)
	var messages []models.Message
	if err := json.Unmarshal(env.Data, &messages); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected no messages, got %d", len(messages))
	}

	_, env = doJSON(t, router, http.MethodGet, "/online", nil)
	var online []string
	if err := json.Unmarshal(env.Data, &online); err != nil {
		t.Fatalf("decode online users: %v", err)
	}
	if len(online) != 0 {
		t.Fatalf("expected no online users, got %v", online)
	}
}

func TestHeartbeatAndOnline(t *testing.T) {
	router := newTestRouter(t)

	_, env := doJSON(t, router, http.MethodPost, "/heartbeat", models.HeartbeatRequest{Username: "bob"})
	if env.Code != 0 {
		t.Fatalf("expected code 0, got %d (%s)", env.Code, env.Message)
	}

	_, env = doJSON(t, router, http.MethodGet, "/online", nil)
	var online []string
	if err := json.Unmarshal(env.Data, &online); err != nil {
		t.Fatalf("decode online users: %v", err)
	}
	if len(online) != 1 || online[0] != "bob" {
		t.Fatalf("expected [bob], got %v", online)
	}
}

func TestHeartbeatValidationFailure(t *testing.T) {
	router := newTestRouter(t)

	_, env := doJSON(t, router, http.MethodPost, "/heartbeat", models.HeartbeatRequest{Username: ""})
	if env.Code != 1 {
		t.Fatalf("expected code 1, got %d", env.Code)
	}
}

func TestClearMessages(t *testing.T) {
	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/send", models.SendMessageRequest{Username: "alice", Content: "hi"})

	_, env := doJSON(t, router, http.MethodPost, "/clear", nil)
	if env.Code != 0 {
		t.Fatalf("expected code 0, got %d (%s)", env.Code, env.Message)
	}

	_, env = doJSON(t, router, http.MethodGet, "/messages", nil)
	var messages []models.Message
	if err := json.Unmarshal(env.Data, &messages); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected no messages after clear, got %d", len(messages))
	}
}

func TestListMessagesEmptyIsArray(t *testing.T) {
	router := newTestRouter(t)

	_, env := doJSON(t, router, http.MethodGet, "/messages", nil)
	if env.Code != 0 {
		t.Fatalf("expected code 0, got %d", env.Code)
	}
	if string(env.Data) != "[]" {
		t.Fatalf("expected empty JSON array, got %s", env.Data)
	}
}

func TestInternalFailureReturnsServerError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	logger := utils.NewDiscardLogger()
	path := filepath.Join(t.TempDir(), "chat_messages.json")
	chatStore := store.NewChatStore(path, 100, brokenPresence{}, logger)
	handler := NewChatHandler(chatStore, ws.NewHub(logger), logger)

	router := gin.New()
	router.POST("/heartbeat", handler.Heartbeat)
	router.GET("/online", handler.ListOnlineUsers)

	// A backend outage is not a validation failure: still code 1, but the
	// status line is 500 rather than 200.
	rec, env := doJSON(t, router, http.MethodPost, "/heartbeat", models.HeartbeatRequest{Username: "bob"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for backend failure, got %d", rec.Code)
	}
	if env.Code != 1 {
		t.Fatalf("expected code 1, got %d", env.Code)
	}

	// The online list degrades to empty instead of failing the UI.
	rec, env = doJSON(t, router, http.MethodGet, "/online", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.Code != 0 {
		t.Fatalf("expected code 0, got %d", env.Code)
	}
	if string(env.Data) != "[]" {
		t.Fatalf("expected empty online list, got %s", env.Data)
	}
}

func TestSendMessageInvalidBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/send", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if env.Code != 1 {
		t.Fatalf("expected code 1 for malformed body, got %d", env.Code)
	}
}
