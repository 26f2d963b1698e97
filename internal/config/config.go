// Package config reads process configuration from HOEJEONG_* environment
// variables, with an optional .env file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Prefix is prepended to every key.
const Prefix = "HOEJEONG_"

// Store backends.
const (
	StoreSQLite   = "sqlite"
	StoreWorkbook = "workbook"
)

// EnvProduction is the ENV value that makes missing secrets fatal.
const EnvProduction = "production"

// Config is the resolved process configuration.
type Config struct {
	Addr string
	Env  string

	Store        string
	DBPath       string
	WorkbookPath string

	// RedisURL empty selects the in-process cache and lock.
	RedisURL string
	CacheTTL time.Duration
	LockTTL  time.Duration

	AdminLogin    string
	AdminPassword string
	AdminName     string

	ResendAPIKey string
	DigestFrom   string
	DigestTo     []string
	DigestCron   string

	LogLevel  slog.Level
	LogFormat string // "json" or "text"

	Location *time.Location

	CSRFKey        []byte
	TrustedOrigins []string
	SecureCookies  bool
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads .env (if present) and the environment.
// godotenv never overrides variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(Prefix + key)); v != "" {
			return v
		}
		return def
	}
	var err error
	cfg := &Config{
		Addr:          get("ADDR", ":8080"),
		Env:           strings.ToLower(get("ENV", "development")),
		Store:         strings.ToLower(get("STORE", StoreSQLite)),
		DBPath:        get("DB_PATH", "hoejeong.db"),
		WorkbookPath:  get("WORKBOOK_PATH", "교회출석데이터.xlsx"),
		RedisURL:      get("REDIS_URL", ""),
		AdminLogin:    get("ADMIN_LOGIN", ""),
		AdminPassword: get("ADMIN_PASSWORD", ""),
		AdminName:     get("ADMIN_NAME", "관리자"),
		ResendAPIKey:  get("RESEND_API_KEY", ""),
		DigestFrom:    get("DIGEST_FROM", ""),
		DigestTo:      splitList(get("DIGEST_TO", "")),
		DigestCron:    get("DIGEST_CRON", "0 7 1 * *"),
		LogFormat:     strings.ToLower(get("LOG_FORMAT", "text")),
	}
	cfg.TrustedOrigins = splitList(get("TRUSTED_ORIGINS", ""))

	switch cfg.Store {
	case StoreSQLite, StoreWorkbook:
	default:
		return nil, fmt.Errorf("%sSTORE must be %q or %q, got %q", Prefix, StoreSQLite, StoreWorkbook, cfg.Store)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("%sLOG_FORMAT must be json or text, got %q", Prefix, cfg.LogFormat)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("%sLOG_LEVEL: %w", Prefix, err)
	}
	if cfg.CacheTTL, err = duration(get("CACHE_TTL", "60s")); err != nil {
		return nil, fmt.Errorf("%sCACHE_TTL: %w", Prefix, err)
	}
	if cfg.LockTTL, err = duration(get("LOCK_TTL", "10s")); err != nil {
		return nil, fmt.Errorf("%sLOCK_TTL: %w", Prefix, err)
	}
	if cfg.Location, err = time.LoadLocation(get("TIMEZONE", "Asia/Seoul")); err != nil {
		return nil, fmt.Errorf("%sTIMEZONE: %w", Prefix, err)
	}
	if cfg.SecureCookies, err = strconv.ParseBool(get("SECURE_COOKIES", strconv.FormatBool(cfg.IsProduction()))); err != nil {
		return nil, fmt.Errorf("%sSECURE_COOKIES: %w", Prefix, err)
	}
	if cfg.CSRFKey, err = csrfKey(get("CSRF_KEY", ""), cfg.IsProduction()); err != nil {
		return nil, err
	}
	if len(cfg.DigestTo) > 0 && cfg.DigestFrom == "" {
		return nil, fmt.Errorf("%sDIGEST_FROM is required when %sDIGEST_TO is set", Prefix, Prefix)
	}
	return cfg, nil
}

// duration accepts a Go duration ("90s") or a bare number of seconds.
func duration(raw string) (time.Duration, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative duration %d", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", raw)
	}
	return d, nil
}

// csrfKey decodes a 64-hex-character key. Outside production a missing key is
// replaced by a random one, so CSRF tokens do not survive a restart.
func csrfKey(keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, fmt.Errorf("%sCSRF_KEY must be 64 hex characters (32 bytes)", Prefix)
		}
		return key, nil
	}
	if production {
		return nil, fmt.Errorf("%sCSRF_KEY is required in production", Prefix)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	slog.Warn("config_event", "event", "random_csrf_key", "hint", "set "+Prefix+"CSRF_KEY for production")
	return key, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
