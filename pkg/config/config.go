package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all process-wide settings. Everything is sourced from the
// environment; the variable names are the ones production deployments
// already use, so existing .env files keep working.
type Config struct {
	// Telegram side.
	BotToken string `env:"TELEGRAM_BOT_TOKEN,required"`
	GroupID  int64  `env:"TELEGRAM_GROUP_ID,required"`

	// CRM (Bubble workflow API) side.
	CrmBaseURL string `env:"BUBBLE_API_URL,required"`
	CrmAPIKey  string `env:"BUBBLE_API_KEY,required"`

	// Public base URL the Telegram webhook is registered against,
	// e.g. https://relay.example.com. Empty disables registration.
	WebhookBaseURL string `env:"WEBHOOK_BASE_URL"`

	Port        int    `env:"PORT" envDefault:"3000"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// Telegram user IDs allowed to reply on behalf of the team. Empty means
	// any non-bot sender is accepted.
	TeamSenderIDs []int64 `env:"TEAM_SENDER_IDS" envSeparator:","`

	// When true, a webhook message without usable text is reported back to
	// Telegram as 400 instead of being silently ignored.
	StrictInboundValidation bool `env:"STRICT_INBOUND_VALIDATION" envDefault:"true"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsTeamSender reports whether the given Telegram user may act as a team
// member. An empty allow-list accepts everyone.
func (c *Config) IsTeamSender(userID int64) bool {
	if len(c.TeamSenderIDs) == 0 {
		return true
	}
	for _, id := range c.TeamSenderIDs {
		if id == userID {
			return true
		}
	}
	return false
}
