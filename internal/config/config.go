package config

import "github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"

// Config holds runtime configuration for the server.
type Config struct {
	Port        string
	DistDir     string
	Version     string
	CORSOrigins []string
	Target      guesses.TargetPair
	Storage     StorageConfig
	Leaderboard LeaderboardConfig
	Log         LogConfig
	Metrics     MetricsConfig
}

// LeaderboardConfig selects how the live leaderboard is fed.
type LeaderboardConfig struct {
	Source       string
	PollInterval Duration
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:        envOrDefault(envPort, defaultPort),
		DistDir:     envOrDefault(envDistDir, defaultDistDir),
		Version:     envOrDefault(envVersion, ""),
		CORSOrigins: listEnvOrDefault(envCORSOrigins, []string{defaultCORSOrigin}),
		Target:      loadTarget(),
		Storage:     loadStorage(),
		Leaderboard: LeaderboardConfig{
			Source:       loadSourceMode(),
			PollInterval: durationEnvOrDefault(envPollInterval, defaultPollInterval),
		},
		Log: LogConfig{
			Level:  envOrDefault(envLogLevel, defaultLogLevel),
			Format: envOrDefault(envLogFormat, defaultLogFormat),
		},
		Metrics: loadMetrics(),
	}
}
