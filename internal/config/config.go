package config

import (
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/tedstonne/takkr-sub000/internal/utils"
)

// Config holds all application configuration.
type Config struct {
	AppName string
	AppPort string
	AppUrl  string
	DBUrl   string

	// Relying-party identity the ceremony engine binds credentials to.
	RPID     string
	RPName   string
	RPOrigin string

	SessionSecret []byte
	SessionTTL    time.Duration

	ChallengeTTL time.Duration

	HeartbeatInterval time.Duration
}

// Defaults for time-based configuration.
const (
	AppName = "board-service"

	DefaultSessionTTL        = 30 * 24 * time.Hour
	DefaultChallengeTTL      = 5 * time.Minute
	DefaultHeartbeatInterval = 15000 * time.Millisecond

	RPName = "Takkr"
)

// LoadConfig reads the environment and returns a *Config. Missing
// required variables are fatal.
func LoadConfig() *Config {
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}

	appUrl := os.Getenv("APP_URL")
	if appUrl == "" {
		utils.Logger.Fatal("APP_URL env var is missing")
	}
	parsed, err := url.Parse(appUrl)
	if err != nil || parsed.Hostname() == "" {
		utils.Logger.Fatalf("APP_URL %q is not a valid URL", appUrl)
	}

	dbUrl := os.Getenv("DB_URL")
	if dbUrl == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		utils.Logger.Fatal("SESSION_SECRET env var is missing")
	}
	if len(sessionSecret) < 32 {
		utils.Logger.Fatal("SESSION_SECRET must be at least 32 bytes")
	}

	heartbeat := DefaultHeartbeatInterval
	if v := os.Getenv("HEARTBEAT_INTERVAL_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			utils.Logger.Fatalf("HEARTBEAT_INTERVAL_MS %q is not a positive integer", v)
		}
		heartbeat = time.Duration(ms) * time.Millisecond
	}

	sessionTTL := DefaultSessionTTL
	if v := os.Getenv("SESSION_TTL_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			utils.Logger.Fatalf("SESSION_TTL_HOURS %q is not a positive integer", v)
		}
		sessionTTL = time.Duration(hours) * time.Hour
	}

	utils.Logger.Debugf("App can be accessed at: %s", appUrl)

	return &Config{
		AppName:           AppName,
		AppPort:           appPort,
		AppUrl:            appUrl,
		DBUrl:             dbUrl,
		RPID:              parsed.Hostname(),
		RPName:            RPName,
		RPOrigin:          parsed.Scheme + "://" + parsed.Host,
		SessionSecret:     []byte(sessionSecret),
		SessionTTL:        sessionTTL,
		ChallengeTTL:      DefaultChallengeTTL,
		HeartbeatInterval: heartbeat,
	}
}
