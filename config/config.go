package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	LLMProvider     string // anthropic, openai, ollama
	AnthropicKey    string
	OpenAIKey       string
	LLMModel        string
	OllamaBaseURL   string
	DiscordToken    string
	DiscordWebhook  string
	DatabasePath    string
	ReminderGrace   time.Duration // how long a due reminder stays "due"
	FollowUpDelay   time.Duration // gap between a reminder and its follow-up
}

func Load() *Config {
	_ = godotenv.Load() // ignore error if no .env

	return &Config{
		LLMProvider:     envOr("LLM_PROVIDER", "anthropic"),
		AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		LLMModel:        os.Getenv("LLM_MODEL"),
		OllamaBaseURL:   envOr("OLLAMA_BASE_URL", "http://localhost:11434/v1"),
		DiscordToken:    os.Getenv("DISCORD_BOT_TOKEN"),
		DiscordWebhook:  os.Getenv("DISCORD_WEBHOOK_URL"),
		DatabasePath:    envOr("DATABASE_PATH", "./buddy.db"),
		ReminderGrace:   durationOr("REMINDER_GRACE", 2*time.Hour),
		FollowUpDelay:   durationOr("FOLLOW_UP_DELAY", time.Hour),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
