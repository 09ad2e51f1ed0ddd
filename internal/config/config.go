package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	APIKeyEnv    = "OPENAI_API_KEY"
	APIKeyPrefix = "sk-"

	defaultDBFile        = "qc.db"
	defaultModel         = "gpt-4o"
	defaultMaxIterations = 15
	defaultTopK          = 10
	defaultHTTPAddr      = ":8501"
)

// Config is built once in main and passed to everything that needs it.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	LLMTimeout time.Duration

	DBPath        string
	MaxIterations int
	TopK          int

	HTTPAddr string

	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// ConfigurationError reports a missing or malformed setting.
type ConfigurationError struct {
	Var    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Var, e.Reason)
}

// Load reads a .env file if present (its values win over the process
// environment) and then builds a Config from env vars. A missing API key
// is not an error here; it is reported when an agent is built.
func Load() Config {
	_ = godotenv.Overload()
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() Config {
	return Config{
		APIKey:        strings.TrimSpace(os.Getenv(APIKeyEnv)),
		BaseURL:       EnvString("OPENAI_BASE_URL", ""),
		Model:         EnvString("OPENAI_MODEL", defaultModel),
		LLMTimeout:    EnvDuration("LLM_TIMEOUT", 0),
		DBPath:        ResolvePath(EnvString("SQLITE_PATH", defaultDBFile)),
		MaxIterations: EnvInt("AGENT_MAX_ITERATIONS", defaultMaxIterations),
		TopK:          EnvInt("AGENT_TOP_K", defaultTopK),
		HTTPAddr:      EnvString("HTTP_ADDR", defaultHTTPAddr),
		CacheTTL:      EnvDuration("ANSWER_CACHE_TTL", 0),
		RedisAddr:     EnvString("REDIS_ADDR", ""),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       EnvInt("REDIS_DB", 0),
	}
}

// ValidateAPIKey checks presence and the provider's key prefix.
func (c Config) ValidateAPIKey() error {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return &ConfigurationError{Var: APIKeyEnv, Reason: "not found in environment variables"}
	}
	if !strings.HasPrefix(key, APIKeyPrefix) {
		return &ConfigurationError{Var: APIKeyEnv, Reason: "has an invalid format"}
	}
	return nil
}

// MaskKey returns a preview of a secret showing only its first and last
// few characters.
func MaskKey(key string) string {
	n := len(key)
	if n < 8 {
		return strings.Repeat("*", n)
	}
	head, tail := min(15, n/4), min(10, n/4)
	return key[:head] + "..." + key[n-tail:]
}

// ResolvePath anchors a relative path to the directory holding the running
// executable, so the binary finds its data regardless of the caller's
// working directory.
func ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(ExecutableDir(), path)
}

// ExecutableDir is the directory of the running binary, or the working
// directory when it cannot be determined.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func EnvString(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func EnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return def
}

func EnvDuration(key string, def time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return def
}
