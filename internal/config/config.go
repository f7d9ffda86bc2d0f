package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrSnakeDoc/smartnote/internal/domain"
)

const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"

	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel      string // "debug" | "info" | "warn" | "error"
	PrettyLog     bool   // true => zap dev (color), false => zap prod (JSON)
	LogFile       string // optional rotating log file
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	// Notes
	StoreBackend    string          // "memory" | "file" | "redis"
	DataDir         string          // file backend directory
	SeedFile        string          // optional seed notes yaml, empty = built-in examples
	DefaultLanguage domain.Language // active language before any preference is saved
	FlushInterval   time.Duration   // retry interval for failed persistence writes

	// Dictation
	DictationEnabled bool          // false => speech drafts report unsupported
	DraftMaxIdle     time.Duration // drafts without fragments for this long are stopped
	DraftGCInterval  time.Duration

	// AI
	AIProvider      string        // "none" | "openai" | "gemini"
	OpenAIKey       string        // required for openai
	OpenAIModel     string        // ex: gpt-4o-mini
	OpenAIBaseURL   string        // optional, OpenAI-compatible endpoint
	GeminiKey       string        // required for gemini
	GeminiModel     string        // ex: gemini-2.0-flash
	GeminiBaseURL   string        // optional
	AITimeout       time.Duration // per-call HTTP timeout
	SummaryCacheTTL time.Duration // 0 = no cache

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

	// Rate limit on AI routes (token bucket per client IP)
	AIRateBurst  int           // bucket size
	AIRateRefill time.Duration // one token per interval

	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "127.0.0.1, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

// Load reads an optional .env file, then the environment. Invalid
// combinations panic, the same way missing required values do.
func Load() *Config {
	loadDotEnv(getenv("SMARTNOTE_ENV_FILE", ".env"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SMARTNOTE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SMARTNOTE_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:      getenv("SMARTNOTE_LOG_LEVEL", "info"),
		PrettyLog:     mustBool("SMARTNOTE_PRETTY_LOG", true),
		LogFile:       getenv("SMARTNOTE_LOG_FILE", ""),
		LogMaxSizeMB:  getenvInt("SMARTNOTE_LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getenvInt("SMARTNOTE_LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getenvInt("SMARTNOTE_LOG_MAX_AGE_DAYS", 30),

		// Notes
		StoreBackend:    strings.ToLower(getenv("SMARTNOTE_STORE", StoreFile)),
		DataDir:         getenv("SMARTNOTE_DATA_DIR", "./data"),
		SeedFile:        getenv("SMARTNOTE_SEED_FILE", ""),
		DefaultLanguage: mustLanguage("SMARTNOTE_DEFAULT_LANGUAGE", domain.DefaultLanguage),
		FlushInterval:   mustDuration("SMARTNOTE_FLUSH_INTERVAL", 30*time.Second),

		// Dictation
		DictationEnabled: mustBool("SMARTNOTE_DICTATION_ENABLED", true),
		DraftMaxIdle:     mustDuration("SMARTNOTE_DRAFT_MAX_IDLE", 15*time.Minute),
		DraftGCInterval:  mustDuration("SMARTNOTE_DRAFT_GC_INTERVAL", time.Minute),

		// AI
		AIProvider:      strings.ToLower(getenv("SMARTNOTE_AI_PROVIDER", ProviderNone)),
		OpenAIKey:       getenv("SMARTNOTE_OPENAI_API_KEY", ""),
		OpenAIModel:     getenv("SMARTNOTE_OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:   getenv("SMARTNOTE_OPENAI_BASE_URL", ""),
		GeminiKey:       getenv("SMARTNOTE_GEMINI_API_KEY", ""),
		GeminiModel:     getenv("SMARTNOTE_GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL:   getenv("SMARTNOTE_GEMINI_BASE_URL", ""),
		AITimeout:       mustDuration("SMARTNOTE_AI_TIMEOUT", 30*time.Second),
		SummaryCacheTTL: mustDuration("SMARTNOTE_SUMMARY_CACHE_TTL", 10*time.Minute),

		// Redis settings
		RedisAddr:             getenv("SMARTNOTE_REDIS_ADDR", "localhost:6379"),
		RedisUser:             getenv("SMARTNOTE_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("SMARTNOTE_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("SMARTNOTE_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("SMARTNOTE_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		AIRateBurst:  getenvInt("SMARTNOTE_AI_RATE_BURST", 10),
		AIRateRefill: mustDuration("SMARTNOTE_AI_RATE_REFILL", 6*time.Second),

		// Access restrictions
		AllowedCIDRS: parseAllowedIPs(getenv("SMARTNOTE_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("SMARTNOTE_TRUST_PROXY", false),
	}

	cfg.validate()

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

func (cfg *Config) validate() {
	switch cfg.StoreBackend {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		panic(fmt.Sprintf("❌ FATAL: SMARTNOTE_STORE must be one of memory, file, redis (got %q)", cfg.StoreBackend))
	}

	// Validate Redis password configuration
	if cfg.StoreBackend == StoreRedis && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: SMARTNOTE_REDIS_PASSWORD is required when SMARTNOTE_REDIS_PASSWORD_REQUIRED=true")
	}

	switch cfg.AIProvider {
	case ProviderNone:
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			panic("❌ FATAL: SMARTNOTE_OPENAI_API_KEY is required when SMARTNOTE_AI_PROVIDER=openai")
		}
	case ProviderGemini:
		if cfg.GeminiKey == "" {
			panic("❌ FATAL: SMARTNOTE_GEMINI_API_KEY is required when SMARTNOTE_AI_PROVIDER=gemini")
		}
	default:
		panic(fmt.Sprintf("❌ FATAL: SMARTNOTE_AI_PROVIDER must be one of none, openai, gemini (got %q)", cfg.AIProvider))
	}

	if cfg.FlushInterval <= 0 {
		panic("❌ FATAL: SMARTNOTE_FLUSH_INTERVAL must be > 0")
	}
	if cfg.DictationEnabled && cfg.DraftGCInterval <= 0 {
		panic("❌ FATAL: SMARTNOTE_DRAFT_GC_INTERVAL must be > 0 when dictation is enabled")
	}
}

// Redacted returns a copy safe to print.
func (cfg *Config) Redacted() Config {
	c := *cfg
	for _, s := range []*string{&c.RedisPassword, &c.OpenAIKey, &c.GeminiKey} {
		if *s != "" {
			*s = "***REDACTED***"
		}
	}
	return c
}

// loadDotEnv loads KEY=VALUE pairs without overriding the real environment.
// A missing file is fine.
func loadDotEnv(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		panic(fmt.Sprintf("❌ FATAL: cannot parse %s: %v", path, err))
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
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

func mustLanguage(key string, def domain.Language) domain.Language {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	lang, err := domain.ParseLanguage(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid language for %s: %s", key, v))
	}
	return lang
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
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
