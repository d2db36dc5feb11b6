package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	ResendAPIKey  string `env:"RESEND_API_KEY"`
	ResendBaseURL string `env:"RESEND_BASE_URL" envDefault:"https://api.resend.com"`
	EmailFrom     string `env:"EMAIL_FROM" envDefault:"Spicy Biryani <orders@spicybiryanihousegrb.shop>"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"Spicy Biryani"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	TwilioAccountSID  string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `env:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber string `env:"TWILIO_PHONE_NUMBER"`
	TwilioBaseURL     string `env:"TWILIO_BASE_URL" envDefault:"https://api.twilio.com"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret              string `env:"JWT_SECRET"`
	AdminPasswordHash      string `env:"ADMIN_PASSWORD_HASH"`
	AdminSessionTTLMinutes int    `env:"ADMIN_SESSION_TTL_MINUTES" envDefault:"720"`

	ChatReplyDelay time.Duration `env:"CHAT_REPLY_DELAY" envDefault:"1s"`
	ChatRulesFile  string        `env:"CHAT_RULES_FILE"`
	ChatRateLimit  int           `env:"CHAT_RATE_LIMIT" envDefault:"30"`
	ChatRateWindow time.Duration `env:"CHAT_RATE_WINDOW" envDefault:"1m"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TwilioConfigured indica si las tres credenciales de Twilio están presentes.
func (c *Config) TwilioConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioPhoneNumber != ""
}
