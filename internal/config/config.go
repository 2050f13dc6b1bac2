// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Cache backends selectable with CACHE_BACKEND.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds all configuration for the MCP server.
type Config struct {
	CatalogDir        string        // CATALOG_DIR, default "" (no documents)
	CatalogWatch      bool          // CATALOG_WATCH, default true
	CacheBackend      string        // CACHE_BACKEND, "memory" or "redis", default "memory"
	CacheMaxItems     int           // CACHE_MAX_ITEMS, default 1024
	HTTPClientTimeout time.Duration // HTTP_CLIENT_TIMEOUT_MS, default 10000ms (10s)

	// Resolver behavior
	ResolverDeduplicate   bool // RESOLVER_DEDUPLICATE, default true
	ResolverSanitizeLabel bool // RESOLVER_SANITIZE_LABELS, default true

	// Validation behavior
	ValidationFailFast bool         // VALIDATION_FAIL_FAST, default false
	ValidationLanguage language.Tag // VALIDATION_LANGUAGE, default "en"

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFormat     string // LOG_FORMAT, "text" or "json", default "text"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		CatalogDir:        getEnvString("CATALOG_DIR", ""),
		CatalogWatch:      getEnvBool("CATALOG_WATCH", true),
		CacheBackend:      strings.ToLower(getEnvString("CACHE_BACKEND", CacheBackendMemory)),
		CacheMaxItems:     getEnvInt("CACHE_MAX_ITEMS", 1024),
		HTTPClientTimeout: getEnvDurationMs("HTTP_CLIENT_TIMEOUT_MS", 10000),

		ResolverDeduplicate:   getEnvBool("RESOLVER_DEDUPLICATE", true),
		ResolverSanitizeLabel: getEnvBool("RESOLVER_SANITIZE_LABELS", true),

		ValidationFailFast: getEnvBool("VALIDATION_FAIL_FAST", false),
		ValidationLanguage: getEnvLanguage("VALIDATION_LANGUAGE", language.English),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFormat:     getEnvString("LOG_FORMAT", "text"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}

func getEnvLanguage(key string, defaultVal language.Tag) language.Tag {
	if v := os.Getenv(key); v != "" {
		if tag, err := language.Parse(v); err == nil {
			return tag
		}
	}
	return defaultVal
}
