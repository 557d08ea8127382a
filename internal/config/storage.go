package config

import "strings"

// Backend names mirrored from the store package.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Backend     string
	DataFile    string
	RedisURL    string
	DatabaseURL string
}

func loadStorage() StorageConfig {
	cfg := StorageConfig{
		DataFile:    envOrDefault(envDataFile, defaultDataFile),
		RedisURL:    envOrDefault(envRedisURL, ""),
		DatabaseURL: envOrDefault(envDatabaseURL, ""),
	}
	cfg.Backend = resolveBackend(envOrDefault(envStorageBackend, ""), cfg)
	return cfg
}

// resolveBackend honors an explicit choice and otherwise prefers a configured managed
// backend over the flat file.
func resolveBackend(explicit string, cfg StorageConfig) string {
	if explicit = strings.ToLower(strings.TrimSpace(explicit)); explicit != "" {
		return explicit
	}
	switch {
	case cfg.RedisURL != "":
		return BackendRedis
	case cfg.DatabaseURL != "":
		return BackendPostgres
	default:
		return BackendFile
	}
}
