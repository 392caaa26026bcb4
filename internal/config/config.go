package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the relay server settings.
type Config struct {
	// Server
	Port string
	Env  string

	// Gemini upstream
	GeminiAPIKey         string
	GeminiModel          string
	GeminiBaseURL        string
	GeminiConcurrentReqs int

	// HTTP surface
	AllowedOrigin      string
	ChatRequestsPerMin int
}

// WidgetConfig holds the chat widget settings.
type WidgetConfig struct {
	RelayURL         string
	RevealIntervalMs int
	SpeechCommand    string
}

// Load reads the relay configuration from the environment.
func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "5000"),
		Env:                  getEnvOrDefault("ENV", "development"),
		GeminiAPIKey:         mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "models/gemini-2.5-flash-lite"),
		GeminiBaseURL:        getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		AllowedOrigin:        getEnvOrDefault("ALLOWED_ORIGIN", "*"),
		ChatRequestsPerMin:   getEnvAsIntOrDefault("CHAT_REQUESTS_PER_MINUTE", 60),
	}

	return cfg
}

// LoadWidget reads the widget configuration from the environment. The widget
// never sees the Gemini key; it only needs to find the relay.
func LoadWidget() *WidgetConfig {
	godotenv.Load()

	return &WidgetConfig{
		RelayURL:         getEnvOrDefault("RELAY_URL", "http://localhost:5000"),
		RevealIntervalMs: getEnvAsIntOrDefault("REVEAL_INTERVAL_MS", 20),
		SpeechCommand:    getEnvOrDefault("SPEECH_RECOGNIZER_CMD", ""),
	}
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
