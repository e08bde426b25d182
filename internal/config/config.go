package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends accepted by the Storage field.
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config holds application configuration.
type Config struct {
	// CanvasWidth and CanvasHeight size rendered schematics when the caller
	// does not supply a viewport.
	CanvasWidth  int `json:"canvas_width"`
	CanvasHeight int `json:"canvas_height"`

	// Storage selects the key-value backend for persisted state:
	// "sqlite" (default, ~/.gatepad/gatepad.db), "redis" or "memory".
	Storage string `json:"storage,omitempty"`

	// RedisAddr is the host:port of the Redis server when Storage is "redis".
	RedisAddr string `json:"redis_addr,omitempty"`

	// RedisPrefix namespaces every key written to Redis.
	RedisPrefix string `json:"redis_prefix,omitempty"`

	// BackendURL is the base URL of the analysis/simulation backend.
	BackendURL string `json:"backend_url,omitempty"`

	// BackendTimeoutSeconds bounds each backend request.
	BackendTimeoutSeconds int `json:"backend_timeout_seconds,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of tool type prefixes to disable entirely
	// (e.g. "history" disables every history_* tool).
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		CanvasWidth:           1100,
		CanvasHeight:          420,
		Storage:               StorageSQLite,
		RedisAddr:             "localhost:6379",
		RedisPrefix:           "gatepad:",
		BackendURL:            "http://localhost:5000",
		BackendTimeoutSeconds: 60,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.gatepad.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.gatepad) and repo (.gatepad) directories.
// Repo config is found by walking upward from startDir to find the nearest .gatepad/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .gatepad/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".gatepad", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error; existing variables are never overwritten.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays GATEPAD_* environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	cfg.BackendURL = getEnv("GATEPAD_BACKEND_URL", cfg.BackendURL)
	cfg.Storage = getEnv("GATEPAD_STORAGE", cfg.Storage)
	cfg.RedisAddr = getEnv("GATEPAD_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPrefix = getEnv("GATEPAD_REDIS_PREFIX", cfg.RedisPrefix)
	cfg.BackendTimeoutSeconds = getEnvAsInt("GATEPAD_BACKEND_TIMEOUT", cfg.BackendTimeoutSeconds)
	cfg.CanvasWidth = getEnvAsInt("GATEPAD_CANVAS_WIDTH", cfg.CanvasWidth)
	cfg.CanvasHeight = getEnvAsInt("GATEPAD_CANVAS_HEIGHT", cfg.CanvasHeight)
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageSQLite, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q (want sqlite, redis or memory)", c.Storage)
	}
	if c.Storage == StorageRedis && c.RedisAddr == "" {
		return fmt.Errorf("redis_addr is required when storage is redis")
	}
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return fmt.Errorf("canvas size must be positive, got %dx%d", c.CanvasWidth, c.CanvasHeight)
	}
	return nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		CanvasWidth:           firstInt(overlay.CanvasWidth, base.CanvasWidth),
		CanvasHeight:          firstInt(overlay.CanvasHeight, base.CanvasHeight),
		Storage:               firstString(overlay.Storage, base.Storage),
		RedisAddr:             firstString(overlay.RedisAddr, base.RedisAddr),
		RedisPrefix:           firstString(overlay.RedisPrefix, base.RedisPrefix),
		BackendURL:            firstString(overlay.BackendURL, base.BackendURL),
		BackendTimeoutSeconds: firstInt(overlay.BackendTimeoutSeconds, base.BackendTimeoutSeconds),
		DBMaxOpenConns:        firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:        firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func firstInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

func firstString(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: invalid integer for %s, using %d", key, defaultValue)
		return defaultValue
	}

	return value
}
