// SPDX-License-Identifier: MIT

package config

// Environment keys. Each maps to the YAML key in its comment.
const (
	EnvConfigFile = "CONNECT_CONFIG" // path to the YAML file

	EnvAPIBaseURL = "CONNECT_API_BASE_URL" // api.baseURL
	EnvAPITimeout = "CONNECT_API_TIMEOUT"  // api.timeout

	EnvQRScheme   = "CONNECT_QR_SCHEME"    // qr.scheme
	EnvQRPath     = "CONNECT_QR_PATH"      // qr.path
	EnvQRParam    = "CONNECT_QR_PARAM"     // qr.param
	EnvQRStrict   = "CONNECT_QR_STRICT"    // qr.strict
	EnvQRPattern  = "CONNECT_QR_PATTERN"   // qr.pattern
	EnvQRHTTPBase = "CONNECT_QR_HTTP_BASE" // qr.httpBase

	EnvStoreBackend  = "CONNECT_STORE_BACKEND"        // store.backend
	EnvStorePath     = "CONNECT_STORE_PATH"           // store.path
	EnvRedisAddr     = "CONNECT_STORE_REDIS_ADDR"     // store.redis.addr
	EnvRedisPassword = "CONNECT_STORE_REDIS_PASSWORD" // store.redis.password
	EnvRedisDB       = "CONNECT_STORE_REDIS_DB"       // store.redis.db
	EnvRedisPrefix   = "CONNECT_STORE_REDIS_PREFIX"   // store.redis.prefix

	EnvHistoryDBPath = "CONNECT_HISTORY_DB_PATH" // history.dbPath
	EnvHistoryTTL    = "CONNECT_HISTORY_TTL"     // history.ttl

	EnvScheduleCacheTTL = "CONNECT_SCHEDULE_CACHE_TTL" // schedule.cacheTTL

	EnvBreakerThreshold    = "CONNECT_BREAKER_THRESHOLD"     // breaker.threshold
	EnvBreakerResetTimeout = "CONNECT_BREAKER_RESET_TIMEOUT" // breaker.resetTimeout

	EnvLogLevel   = "CONNECT_LOG_LEVEL"   // log.level
	EnvLogService = "CONNECT_LOG_SERVICE" // log.service

	EnvTelemetryEnabled     = "CONNECT_TELEMETRY_ENABLED"       // telemetry.enabled
	EnvTelemetryExporter    = "CONNECT_TELEMETRY_EXPORTER"      // telemetry.exporter
	EnvTelemetryEndpoint    = "CONNECT_TELEMETRY_ENDPOINT"      // telemetry.endpoint
	EnvTelemetrySampling    = "CONNECT_TELEMETRY_SAMPLING_RATE" // telemetry.samplingRate
	EnvTelemetryEnvironment = "CONNECT_TELEMETRY_ENVIRONMENT"   // telemetry.environment

	EnvMockListenAddr       = "CONNECT_MOCK_LISTEN_ADDR"       // mock.listenAddr
	EnvMockRateLimit        = "CONNECT_MOCK_RATE_LIMIT"        // mock.rateLimit
	EnvMockParticipantRate  = "CONNECT_MOCK_PARTICIPANT_RATE"  // mock.participantRate
	EnvMockParticipantBurst = "CONNECT_MOCK_PARTICIPANT_BURST" // mock.participantBurst

	EnvMetricsAddr = "CONNECT_METRICS_ADDR" // metrics.addr
)
