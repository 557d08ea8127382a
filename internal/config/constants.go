package config

import "time"

const (
	envPort           = "PORT"
	envDistDir        = "DIST_DIR"
	envVersion        = "APP_VERSION"
	envCORSOrigins    = "CORS_ORIGINS"
	envStorageBackend = "STORAGE_BACKEND"
	envDataFile       = "DATA_FILE"
	envRedisURL       = "REDIS_URL"
	envDatabaseURL    = "DATABASE_URL"
	envSource         = "LEADERBOARD_SOURCE"
	envPollInterval   = "POLL_INTERVAL"
	envTargetTwin1    = "TARGET_TWIN1"
	envTargetTwin2    = "TARGET_TWIN2"
	envLogLevel       = "LOG_LEVEL"
	envLogFormat      = "LOG_FORMAT"
	envMetricsPort    = "METRICS_PORT"
	envMetricsOn      = "METRICS_ENABLED"
	envOtelEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService    = "OTEL_SERVICE_NAME"
	envOtelInsecure   = "OTEL_EXPORTER_OTLP_INSECURE"

	defaultPort         = "3000"
	defaultDistDir      = "dist"
	defaultCORSOrigin   = "*"
	defaultDataFile     = "data/leaderboard.json"
	defaultPollInterval = 5 * Duration(time.Second)
	defaultLogLevel     = "info"
	defaultLogFormat    = "json"
	defaultMetricsPort  = "9090"
	defaultServiceName  = "twin-reveal-service"

	// Mirrors leaderboard.ModeSubscribe / ModePoll.
	sourceSubscribe = "subscribe"
	sourcePoll      = "poll"
)
