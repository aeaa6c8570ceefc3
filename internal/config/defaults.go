// SPDX-License-Identifier: MIT

package config

import (
	"time"

	"github.com/connectapp/connect/internal/qrcode"
)

const (
	DefaultAPIBaseURL = "http://192.168.1.8:5000/api/v1"
	DefaultAPITimeout = 10 * time.Second
	DefaultStorePath  = "connect-store.json"
	DefaultHistoryDB  = "connect-history.db"
	DefaultMockListen = "127.0.0.1:5000"
)

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		API: APIConfig{
			BaseURL: DefaultAPIBaseURL,
			Timeout: DefaultAPITimeout,
		},
		QR: QRConfig{
			Scheme:   qrcode.DefaultScheme,
			Path:     qrcode.DefaultPath,
			Param:    qrcode.DefaultParam,
			Pattern:  qrcode.DefaultPattern,
			HTTPBase: qrcode.DefaultHTTPBase,
		},
		Store: StoreConfig{
			Backend: "file",
			Path:    DefaultStorePath,
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "connect:"},
		},
		History: HistoryConfig{
			DBPath: DefaultHistoryDB,
			TTL:    5 * time.Minute,
		},
		Schedule: ScheduleConfig{CacheTTL: time.Minute},
		Breaker: BreakerConfig{
			Threshold:    3,
			ResetTimeout: 30 * time.Second,
		},
		Log: LogConfig{Level: "info", Service: "connect"},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "development",
		},
		Mock: MockConfig{
			ListenAddr:       DefaultMockListen,
			RateLimit:        600,
			ParticipantRate:  2,
			ParticipantBurst: 4,
		},
	}
}
