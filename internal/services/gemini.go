package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"chatwidget/internal/models"
)

// FallbackReply is returned when the upstream answer carries no extractable
// text part.
const FallbackReply = "No response received."

// GenericUpstreamMessage is what callers show when the upstream error body
// had nothing usable in it.
const GenericUpstreamMessage = "Failed to call Gemini API. Check your key or model name."

// Wire shapes for the generativelanguage generateContent endpoint.

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"` // "user" or "model"
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type geminiAPIError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// UpstreamError is a failed generateContent call, carrying a message safe to
// show the end user.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gemini API error (HTTP %d): %s", e.Status, e.Message)
}

// GeminiService forwards conversation histories to the Gemini
// generateContent endpoint using a server-held API key.
type GeminiService struct {
	baseURL  string
	apiKey   string
	model    string
	client   *http.Client
	rateChan chan struct{} // Token bucket
}

func NewGeminiService(baseURL, apiKey, model string, concurrentReqs int) *GeminiService {
	if concurrentReqs < 1 {
		concurrentReqs = 1
	}

	// Token bucket limiting concurrent upstream calls
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		baseURL:  baseURL,
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: 60 * time.Second},
		rateChan: rateChan,
	}
}

// acquireRate blocks until an upstream slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// ChatReply reshapes the conversation history into a generateContent call
// and extracts the first candidate's first text part as the reply. The raw
// upstream payload is returned alongside so the relay can pass it through.
func (s *GeminiService) ChatReply(ctx context.Context, messages []models.ChatMessage) (string, json.RawMessage, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", nil, err
	}
	defer s.releaseRate()

	contents := make([]geminiContent, 0, len(messages))
	for _, msg := range messages {
		contents = append(contents, geminiContent{
			Role:  upstreamRole(msg.Role),
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}

	body, err := json.Marshal(geminiRequest{Contents: contents})
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal Gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("failed to build Gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("failed to reach Gemini API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read Gemini response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil, &UpstreamError{
			Status:  resp.StatusCode,
			Message: upstreamMessage(raw),
		}
	}

	var result geminiResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", nil, fmt.Errorf("failed to parse Gemini response: %w", err)
	}

	return extractReply(result), raw, nil
}

// upstreamRole maps conversation roles onto Gemini's. Gemini calls the
// assistant side "model"; everything else is user input.
func upstreamRole(role string) string {
	if role == models.RoleAssistant {
		return "model"
	}
	return "user"
}

func extractReply(resp geminiResponse) string {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return FallbackReply
	}
	if text := resp.Candidates[0].Content.Parts[0].Text; text != "" {
		return text
	}
	return FallbackReply
}

// upstreamMessage digs the human-readable message out of a Gemini error
// body, falling back to a generic hint.
func upstreamMessage(raw []byte) string {
	var apiErr geminiAPIError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return GenericUpstreamMessage
}
