package models

import "encoding/json"

// Roles recognized in a conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single committed turn in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the relay chat endpoint.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatResponse is the relay's reply envelope. Raw carries the upstream
// payload untouched so the client can inspect it when debugging.
type ChatResponse struct {
	Reply string          `json:"reply"`
	Raw   json.RawMessage `json:"raw,omitempty"`
}

// ErrorResponse is the flat error envelope used by the relay.
type ErrorResponse struct {
	Error string `json:"error"`
}
