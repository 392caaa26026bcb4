package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"chatwidget/internal/models"
)

func TestSendRejectsEmptyHistory(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	_, err := client.Send(context.Background(), nil)
	if !errors.Is(err, ErrEmptyHistory) {
		t.Fatalf("Expected ErrEmptyHistory, got %v", err)
	}
	if n := atomic.LoadInt32(&requests); n != 0 {
		t.Errorf("Expected no network call, got %d", n)
	}
}

func TestSendSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("Expected POST /api/chat, got %s", r.URL.Path)
		}

		var req models.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
			t.Errorf("Expected history with one 'hello' turn, got %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reply":"world","raw":{}}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	reply, err := client.Send(context.Background(), []models.ChatMessage{
		{Role: models.RoleUser, Content: "hello"},
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply != "world" {
		t.Errorf("Expected reply 'world', got %q", reply)
	}
}

func TestSendRelayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to call Gemini API. Check your key or model name."}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	_, err := client.Send(context.Background(), []models.ChatMessage{
		{Role: models.RoleUser, Content: "hello"},
	})
	if err == nil {
		t.Fatal("Expected error for relay failure")
	}
	if !strings.Contains(err.Error(), "Failed to call Gemini API") {
		t.Errorf("Expected relay error message surfaced, got %v", err)
	}
}

func TestSendMissingReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"raw":{}}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	_, err := client.Send(context.Background(), []models.ChatMessage{
		{Role: models.RoleUser, Content: "hello"},
	})
	if err == nil {
		t.Fatal("Expected error for missing reply field")
	}
}
