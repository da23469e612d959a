package models

const (
	MessageTypeText   = "text"
	MessageTypeSystem = "system"
)

// TimeLayout is the message timestamp format persisted to disk and returned
// to clients. It is part of the compatibility surface for existing
// deployments and must not change.
const TimeLayout = "2006-01-02 15:04:05"

// Message is a single chat message. Field names match the persisted JSON
// file format of existing deployments.
type Message struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Content  string `json:"content"`
	Time     string `json:"time"`
	Type     string `json:"type"`
}

// Response is the envelope returned by every chat API operation. The
// envelope has exactly two codes: 0 means success, 1 means failure.
// Validation failures return code 1 with HTTP 200; internal failures return
// code 1 with HTTP 500, so clients tell them apart by the status line.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type SendMessageRequest struct {
	Username string `json:"username"`
	Content  string `json:"content"`
	Type     string `json:"type"`
}

type HeartbeatRequest struct {
	Username string `json:"username"`
}
