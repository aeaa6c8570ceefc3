// SPDX-License-Identifier: MIT

package config

import "time"

// AppConfig is the fully resolved runtime configuration.
type AppConfig struct {
	Version string `yaml:"-"`

	API       APIConfig       `yaml:"api"`
	QR        QRConfig        `yaml:"qr"`
	Store     StoreConfig     `yaml:"store"`
	History   HistoryConfig   `yaml:"history"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Breaker   BreakerConfig   `yaml:"breaker"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Mock      MockConfig      `yaml:"mock"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type APIConfig struct {
	BaseURL string        `yaml:"baseURL" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

type QRConfig struct {
	Scheme  string `yaml:"scheme" validate:"required"`
	Path    string `yaml:"path" validate:"required"`
	Param   string `yaml:"param" validate:"required"`
	Strict  bool   `yaml:"strict"`
	Pattern string `yaml:"pattern"`
	// HTTPBase is the host embedded in generated HTTP QR links.
	HTTPBase string `yaml:"httpBase" validate:"omitempty,url"`
}

type StoreConfig struct {
	Backend string      `yaml:"backend" validate:"oneof=memory file badger redis"`
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	Prefix   string `yaml:"prefix"`
}

type HistoryConfig struct {
	DBPath string        `yaml:"dbPath"`
	TTL    time.Duration `yaml:"ttl" validate:"gte=0"`
}

type ScheduleConfig struct {
	CacheTTL time.Duration `yaml:"cacheTTL" validate:"gte=0"`
}

type BreakerConfig struct {
	Threshold    int           `yaml:"threshold" validate:"gte=1"`
	ResetTimeout time.Duration `yaml:"resetTimeout" validate:"gt=0"`
}

type LogConfig struct {
	Level   string `yaml:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Service string `yaml:"service"`
}

type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter" validate:"oneof=grpc http"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate" validate:"gte=0,lte=1"`
	Environment  string  `yaml:"environment"`
}

type MockConfig struct {
	ListenAddr string `yaml:"listenAddr" validate:"required,hostname_port"`
	// RateLimit is the global request budget per minute; 0 disables it.
	RateLimit int `yaml:"rateLimit" validate:"gte=0"`
	// ParticipantRate is attendance submissions per second per participant.
	ParticipantRate  float64 `yaml:"participantRate" validate:"gte=0"`
	ParticipantBurst int     `yaml:"participantBurst" validate:"gte=0"`
}

type MetricsConfig struct {
	// Addr serves /metrics for the CLI when set.
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// FileConfig mirrors AppConfig for YAML decoding. Pointers distinguish unset
// from zero so the file only overrides what it names.
type FileConfig struct {
	API       *FileAPI       `yaml:"api,omitempty"`
	QR        *FileQR        `yaml:"qr,omitempty"`
	Store     *FileStore     `yaml:"store,omitempty"`
	History   *FileHistory   `yaml:"history,omitempty"`
	Schedule  *FileSchedule  `yaml:"schedule,omitempty"`
	Breaker   *FileBreaker   `yaml:"breaker,omitempty"`
	Log       *FileLog       `yaml:"log,omitempty"`
	Telemetry *FileTelemetry `yaml:"telemetry,omitempty"`
	Mock      *FileMock      `yaml:"mock,omitempty"`
	Metrics   *FileMetrics   `yaml:"metrics,omitempty"`
}

type FileAPI struct {
	BaseURL string `yaml:"baseURL,omitempty"`
	Timeout string `yaml:"timeout,omitempty"`
}

type FileQR struct {
	Scheme   string `yaml:"scheme,omitempty"`
	Path     string `yaml:"path,omitempty"`
	Param    string `yaml:"param,omitempty"`
	Strict   *bool  `yaml:"strict,omitempty"`
	Pattern  string `yaml:"pattern,omitempty"`
	HTTPBase string `yaml:"httpBase,omitempty"`
}

type FileStore struct {
	Backend string     `yaml:"backend,omitempty"`
	Path    string     `yaml:"path,omitempty"`
	Redis   *FileRedis `yaml:"redis,omitempty"`
}

type FileRedis struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       *int   `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

type FileHistory struct {
	DBPath string `yaml:"dbPath,omitempty"`
	TTL    string `yaml:"ttl,omitempty"`
}

type FileSchedule struct {
	CacheTTL string `yaml:"cacheTTL,omitempty"`
}

type FileBreaker struct {
	Threshold    *int   `yaml:"threshold,omitempty"`
	ResetTimeout string `yaml:"resetTimeout,omitempty"`
}

type FileLog struct {
	Level   string `yaml:"level,omitempty"`
	Service string `yaml:"service,omitempty"`
}

type FileTelemetry struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
	Environment  string   `yaml:"environment,omitempty"`
}

type FileMock struct {
	ListenAddr       string   `yaml:"listenAddr,omitempty"`
	RateLimit        *int     `yaml:"rateLimit,omitempty"`
	ParticipantRate  *float64 `yaml:"participantRate,omitempty"`
	ParticipantBurst *int     `yaml:"participantBurst,omitempty"`
}

type FileMetrics struct {
	Addr string `yaml:"addr,omitempty"`
}
