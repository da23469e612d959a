package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mediahub/chat-center/models"
	"mediahub/chat-center/utils"
)

// ChatStore owns the bounded message log and the presence map. All
// operations are serialized behind a single mutex so the store is safe to
// share between concurrent request handlers.
//
// The message log is the only durable state: it is loaded once at
// construction and rewritten in full after every mutation. Presence lives
// in the injected PresenceTracker.
type ChatStore struct {
	mu          sync.Mutex
	messages    []models.Message
	presence    PresenceTracker
	dataPath    string
	maxMessages int
	logger      *utils.Logger
	now         func() time.Time
}

// defaultMaxMessages is the compiled-in log bound, used when the configured
// value is unusable.
const defaultMaxMessages = 100

func NewChatStore(dataPath string, maxMessages int, presence PresenceTracker, logger *utils.Logger) *ChatStore {
	if maxMessages < 1 {
		logger.Warn("Invalid max messages bound, using default",
			"value", maxMessages, "default", defaultMaxMessages)
		maxMessages = defaultMaxMessages
	}
	s := &ChatStore{
		presence:    presence,
		dataPath:    dataPath,
		maxMessages: maxMessages,
		logger:      logger,
		now:         time.Now,
	}
	s.load()
	return s
}

// ListMessages returns the current message log in insertion order.
func (s *ChatStore) ListMessages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]models.Message, len(s.messages))
	copy(messages, s.messages)
	return messages
}

// PostMessage validates the input, refreshes the sender's presence, appends
// a new message, trims the log to maxMessages and persists it. On a
// validation failure no state changes at all.
func (s *ChatStore) PostMessage(ctx context.Context, username, content, msgType string) (models.Message, error) {
	username = strings.TrimSpace(username)
	content = strings.TrimSpace(content)
	if username == "" || content == "" {
		return models.Message{}, &ValidationError{Reason: "username and content must not be empty"}
	}
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Presence failures never block the post; availability wins.
	if err := s.presence.Touch(ctx, username); err != nil {
		s.logger.Error("Failed to update presence", "username", username, "error", err)
	}

	now := s.now()
	msg := models.Message{
		ID:       now.UnixMilli(),
		Username: username,
		Content:  content,
		Time:     now.Format(models.TimeLayout),
		Type:     msgType,
	}

	s.messages = append(s.messages, msg)
	if len(s.messages) > s.maxMessages {
		trimmed := make([]models.Message, s.maxMessages)
		copy(trimmed, s.messages[len(s.messages)-s.maxMessages:])
		s.messages = trimmed
	}

	s.save()
	return msg, nil
}

// ListOnlineUsers returns the usernames considered online right now.
func (s *ChatStore) ListOnlineUsers(ctx context.Context) ([]string, error) {
	return s.presence.Online(ctx)
}

// Heartbeat refreshes the presence timestamp for username. It does not
// touch the message log.
func (s *ChatStore) Heartbeat(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return &ValidationError{Reason: "username must not be empty"}
	}
	return s.presence.Touch(ctx, username)
}

// ClearMessages empties the message log and persists the empty list.
// Presence is unaffected.
func (s *ChatStore) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	s.save()
}

// load reads the persisted message log. A missing file is the normal
// first-run case; a malformed one is logged and replaced by an empty log.
func (s *ChatStore) load() {
	data, err := os.ReadFile(s.dataPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Error("Failed to read chat history", "path", s.dataPath, "error", err)
		}
		s.messages = nil
		return
	}

	var messages []models.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		s.logger.Error("Failed to parse chat history, starting empty", "path", s.dataPath, "error", err)
		s.messages = nil
		return
	}
	s.messages = messages
	s.logger.Info("Loaded chat history", "path", s.dataPath, "messages", len(messages))
}

// save writes the full message log as a pretty-printed JSON array, via a
// temp file renamed into place so a crash mid-write cannot truncate the
// history. Failures are logged and never surfaced to callers; memory and
// disk may diverge until the next successful save.
func (s *ChatStore) save() {
	messages := s.messages
	if messages == nil {
		messages = []models.Message{}
	}

	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		s.logger.Error("Failed to serialize chat history", "error", err)
		return
	}

	dir := filepath.Dir(s.dataPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("Failed to create data directory", "path", dir, "error", err)
		return
	}

	tmp, err := os.CreateTemp(dir, ".chat-*.json")
	if err != nil {
		s.logger.Error("Failed to create temp file", "path", dir, "error", err)
		return
	}

	if _, err := tmp.Write(data); err != nil {
		s.logger.Error("Failed to write chat history", "path", tmp.Name(), "error", err)
		tmp.Close()
		os.Remove(tmp.Name())
		return
	}
	if err := tmp.Close(); err != nil {
		s.logger.Error("Failed to close temp file", "path", tmp.Name(), "error", err)
		os.Remove(tmp.Name())
		return
	}

	if err := os.Rename(tmp.Name(), s.dataPath); err != nil {
		s.logger.Error("Failed to replace chat history", "path", s.dataPath, "error", err)
		os.Remove(tmp.Name())
	}
}
