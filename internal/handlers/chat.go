package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"chatwidget/internal/models"
	"chatwidget/internal/services"
)

// replyGenerator is the slice of the Gemini service the chat handler needs.
type replyGenerator interface {
	ChatReply(ctx context.Context, messages []models.ChatMessage) (string, json.RawMessage, error)
}

type ChatHandler struct {
	gemini replyGenerator
}

func NewChatHandler(gemini replyGenerator) *ChatHandler {
	return &ChatHandler{gemini: gemini}
}

// Relay accepts the widget's full conversation history and responds with the
// upstream reply text plus the untouched upstream payload.
func (h *ChatHandler) Relay(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid messages payload")
		return
	}

	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid messages payload")
		return
	}

	reply, raw, err := h.gemini.ChatReply(r.Context(), req.Messages)
	if err != nil {
		log.Printf("Gemini API error: %v", err)

		var upstreamErr *services.UpstreamError
		if errors.As(err, &upstreamErr) {
			writeError(w, http.StatusInternalServerError, upstreamErr.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, services.GenericUpstreamMessage)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply, Raw: raw})
}
