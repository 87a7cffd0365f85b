package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	AppURL         string        // public base URL of the frontend (redirect target after auth)
	CatalogURL     string        // remote rows JSON document (optional)
	CatalogFile    string        // local catalog.yaml fallback (optional)
	ReloadInterval time.Duration // interval to refetch the catalog (default: 24h)
	RemoteTimeout  time.Duration // timeout for outbound catalog/notes/drive calls

	NotesEndpoint string // spreadsheet-backed notes endpoint (empty = sample data)

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string        // fixed redirect URI for the popup flow
	SessionClearURL    string        // remote session-clearing endpoint (optional)
	StatusPollInterval time.Duration // popup-closed detection tick (default: 1s)
	SecureCookies      bool          // Secure flag on token cookies

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedOrigins []string // CORS origins allowed to call the API
	AllowedCIDRS   []string // IPs allowed to hit admin endpoints (reload)
	TrustProxy     bool     // true => trust X-Forwarded-For headers
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SHEETHUB_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SHEETHUB_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("SHEETHUB_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SHEETHUB_PRETTY_LOG", true),

		// Catalog source
		AppURL:         requireEnv("SHEETHUB_APP_URL"),
		CatalogURL:     getenv("SHEETHUB_CATALOG_URL", ""),
		CatalogFile:    getenv("SHEETHUB_CATALOG_FILE", ""),
		ReloadInterval: mustDuration("SHEETHUB_RELOAD_INTERVAL", 24*time.Hour),
		RemoteTimeout:  mustDuration("SHEETHUB_REMOTE_TIMEOUT", 15*time.Second),

		// Notes backend
		NotesEndpoint: getenv("SHEETHUB_NOTES_ENDPOINT", ""),

		// Google OAuth
		GoogleClientID:     getenv("SHEETHUB_GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getenv("SHEETHUB_GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectURL:   getenv("SHEETHUB_OAUTH_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
		SessionClearURL:    getenv("SHEETHUB_SESSION_CLEAR_URL", ""),
		StatusPollInterval: mustDuration("SHEETHUB_STATUS_POLL_INTERVAL", time.Second),
		SecureCookies:      mustBool("SHEETHUB_SECURE_COOKIES", false),

		// Redis settings
		RedisAddr:             requireEnv("SHEETHUB_REDIS_ADDR"),
		RedisUser:             getenv("SHEETHUB_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("SHEETHUB_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("SHEETHUB_REDIS_PASSWORD", ""),
		RedisDB:               requireEnvInt("SHEETHUB_REDIS_DB"),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedOrigins: parseList(getenv("SHEETHUB_ALLOWED_ORIGINS", "")),
		AllowedCIDRS:   parseList(getenv("SHEETHUB_ALLOWED_CIDRS", "")),
		TrustProxy:     mustBool("SHEETHUB_TRUST_PROXY", true),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: SHEETHUB_REDIS_PASSWORD is required when SHEETHUB_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.GoogleClientSecret != "" {
			cfgCopy.GoogleClientSecret = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
