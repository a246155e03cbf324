package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultScrapingBeeURL = "https://app.scrapingbee.com/api/v1/"
	DefaultCSLBURL        = "https://www2.cslb.ca.gov/OnlineServices/CheckLicenseII/CheckLicense.aspx"
)

type Config struct {
	DatabaseURL string
	LogLevel    string
	LogFormat   string

	// Remote-render proxy (ScrapingBee)
	ScrapingBeeAPIKey  string
	ScrapingBeeBaseURL string
	RenderWaitMS       int
	PremiumProxy       bool
	RenderUserAgent    string
	RenderTimeoutSecs  int
	CSLBURL            string

	// Search
	SearchLimit    int
	AuditQueueSize int

	// API Server
	APIToken      string
	APIPort       string
	AllowedOrigin string

	// Discord (optional)
	DiscordToken        string
	DiscordGuildID      string
	DiscordLogChannelID string

	// Resend Email (optional, drift alerts)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	AlertEmail    string

	// Twilio SMS (optional, drift alerts)
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	AlertSMSTo       string
}

// MustLoad reads configuration from the environment, loading .env first if present.
func MustLoad() *Config {
	_ = godotenv.Load() // .env is optional

	cfg := Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load reads configuration from the environment and applies defaults. It does not validate.
func Load() *Config {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		LogFormat:   os.Getenv("LOG_FORMAT"),

		ScrapingBeeAPIKey:  os.Getenv("SCRAPINGBEE_API_KEY"),
		ScrapingBeeBaseURL: os.Getenv("SCRAPINGBEE_BASE_URL"),
		RenderUserAgent:    os.Getenv("RENDER_USER_AGENT"),
		CSLBURL:            os.Getenv("CSLB_URL"),

		APIToken:      os.Getenv("API_TOKEN"),
		APIPort:       os.Getenv("API_PORT"),
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),

		DiscordToken:        os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID:      os.Getenv("DISCORD_GUILD_ID"),
		DiscordLogChannelID: os.Getenv("DISCORD_LOG_CHANNEL_ID"),

		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		EmailFrom:     os.Getenv("EMAIL_FROM"),
		EmailFromName: os.Getenv("EMAIL_FROM_NAME"),
		AlertEmail:    os.Getenv("ALERT_EMAIL"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
		AlertSMSTo:       os.Getenv("ALERT_SMS_TO"),
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.ScrapingBeeBaseURL == "" {
		cfg.ScrapingBeeBaseURL = DefaultScrapingBeeURL
	}
	if cfg.CSLBURL == "" {
		cfg.CSLBURL = DefaultCSLBURL
	}
	if cfg.APIPort == "" {
		cfg.APIPort = "8080"
	}

	cfg.RenderWaitMS = getEnvInt("RENDER_WAIT_MS", 3000)
	cfg.RenderTimeoutSecs = getEnvInt("RENDER_TIMEOUT_SECONDS", 90)
	cfg.PremiumProxy = getEnvBool("PREMIUM_PROXY", true)
	cfg.SearchLimit = getEnvInt("SEARCH_LIMIT", 10)
	cfg.AuditQueueSize = getEnvInt("AUDIT_QUEUE_SIZE", 256)

	return cfg
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errMissing("DATABASE_URL")
	}
	return nil
}

// LiveSearchEnabled is false when no proxy API key is configured.
func (c *Config) LiveSearchEnabled() bool {
	return strings.TrimSpace(c.ScrapingBeeAPIKey) != ""
}

// RenderWait returns the proxy wait setting as a duration.
func (c *Config) RenderWait() time.Duration {
	return time.Duration(c.RenderWaitMS) * time.Millisecond
}

type missingError string

func (e missingError) Error() string { return string(e) + " is required" }

func errMissing(key string) error { return missingError(key) }

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
