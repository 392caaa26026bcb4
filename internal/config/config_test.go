package config

import (
	"os"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestLoadWidgetDefaults(t *testing.T) {
	os.Unsetenv("RELAY_URL")
	os.Unsetenv("REVEAL_INTERVAL_MS")
	os.Unsetenv("SPEECH_RECOGNIZER_CMD")

	cfg := LoadWidget()

	if cfg.RelayURL != "http://localhost:5000" {
		t.Errorf("Expected default relay URL, got %q", cfg.RelayURL)
	}
	if cfg.RevealIntervalMs != 20 {
		t.Errorf("Expected default reveal interval 20, got %d", cfg.RevealIntervalMs)
	}
	if cfg.SpeechCommand != "" {
		t.Errorf("Expected empty speech command, got %q", cfg.SpeechCommand)
	}
}
