package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port     int
	LogLevel string
	APIKey   string

	AgentURL    string
	AgentAPIKey string

	TransportURL    string
	TransportKey    string
	TransportSecret string
	Room            string
	LocalIdentity   string

	NatsURL   string
	NatsToken string

	CallbackURL string

	Persona string
	Channel string
	Locale  string
}

func Load() Config {
	return Config{
		Port:     envInt("VIGIL_PORT", 8760),
		LogLevel: envStr("LOG_LEVEL", "info"),
		APIKey:   envStr("VIGIL_API_KEY", ""),

		AgentURL:    envStr("AGENT_URL", "http://localhost:8000"),
		AgentAPIKey: envStr("AGENT_API_KEY", ""),

		TransportURL:    envStr("TRANSPORT_URL", ""),
		TransportKey:    envStr("TRANSPORT_API_KEY", ""),
		TransportSecret: envStr("TRANSPORT_API_SECRET", ""),
		Room:            envStr("TRANSPORT_ROOM", "test-room"),
		LocalIdentity:   envStr("TRANSPORT_IDENTITY", "vigil-agent"),

		NatsURL:   envStr("NATS_URL", ""),
		NatsToken: envStr("NATS_TOKEN", ""),

		CallbackURL: envStr("CALLBACK_URL", ""),

		Persona: envStr("VIGIL_PERSONA", "grandma"),
		Channel: envStr("VIGIL_CHANNEL", "call"),
		Locale:  envStr("VIGIL_LOCALE", "IN"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
