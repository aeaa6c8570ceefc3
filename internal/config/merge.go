// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"time"
)

func setString(dst *string, v string) {
	if v != "" {
		*dst = expandEnv(v)
	}
}

func setDuration(dst *time.Duration, field, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q: %w", field, v, err)
	}
	*dst = d
	return nil
}

func setPtr[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// mergeFileConfig overlays the keys present in src onto dst.
func mergeFileConfig(dst *AppConfig, src *FileConfig) error {
	if f := src.API; f != nil {
		setString(&dst.API.BaseURL, f.BaseURL)
		if err := setDuration(&dst.API.Timeout, "api.timeout", f.Timeout); err != nil {
			return err
		}
	}
	if f := src.QR; f != nil {
		setString(&dst.QR.Scheme, f.Scheme)
		setString(&dst.QR.Path, f.Path)
		setString(&dst.QR.Param, f.Param)
		setPtr(&dst.QR.Strict, f.Strict)
		if f.Pattern != "" {
			// patterns are taken literally; $ is a regexp anchor
			dst.QR.Pattern = f.Pattern
		}
		setString(&dst.QR.HTTPBase, f.HTTPBase)
	}
	if f := src.Store; f != nil {
		setString(&dst.Store.Backend, f.Backend)
		setString(&dst.Store.Path, f.Path)
		if r := f.Redis; r != nil {
			setString(&dst.Store.Redis.Addr, r.Addr)
			setString(&dst.Store.Redis.Password, r.Password)
			setPtr(&dst.Store.Redis.DB, r.DB)
			setString(&dst.Store.Redis.Prefix, r.Prefix)
		}
	}
	if f := src.History; f != nil {
		setString(&dst.History.DBPath, f.DBPath)
		if err := setDuration(&dst.History.TTL, "history.ttl", f.TTL); err != nil {
			return err
		}
	}
	if f := src.Schedule; f != nil {
		if err := setDuration(&dst.Schedule.CacheTTL, "schedule.cacheTTL", f.CacheTTL); err != nil {
			return err
		}
	}
	if f := src.Breaker; f != nil {
		setPtr(&dst.Breaker.Threshold, f.Threshold)
		if err := setDuration(&dst.Breaker.ResetTimeout, "breaker.resetTimeout", f.ResetTimeout); err != nil {
			return err
		}
	}
	if f := src.Log; f != nil {
		setString(&dst.Log.Level, f.Level)
		setString(&dst.Log.Service, f.Service)
	}
	if f := src.Telemetry; f != nil {
		setPtr(&dst.Telemetry.Enabled, f.Enabled)
		setString(&dst.Telemetry.Exporter, f.Exporter)
		setString(&dst.Telemetry.Endpoint, f.Endpoint)
		setPtr(&dst.Telemetry.SamplingRate, f.SamplingRate)
		setString(&dst.Telemetry.Environment, f.Environment)
	}
	if f := src.Mock; f != nil {
		setString(&dst.Mock.ListenAddr, f.ListenAddr)
		setPtr(&dst.Mock.RateLimit, f.RateLimit)
		setPtr(&dst.Mock.ParticipantRate, f.ParticipantRate)
		setPtr(&dst.Mock.ParticipantBurst, f.ParticipantBurst)
	}
	if f := src.Metrics; f != nil {
		setString(&dst.Metrics.Addr, f.Addr)
	}
	return nil
}

// mergeEnvConfig applies CONNECT_* overrides. Each helper falls back to the
// value already resolved from defaults and file.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.API.BaseURL = l.envString(EnvAPIBaseURL, cfg.API.BaseURL)
	cfg.API.Timeout = l.envDuration(EnvAPITimeout, cfg.API.Timeout)

	cfg.QR.Scheme = l.envString(EnvQRScheme, cfg.QR.Scheme)
	cfg.QR.Path = l.envString(EnvQRPath, cfg.QR.Path)
	cfg.QR.Param = l.envString(EnvQRParam, cfg.QR.Param)
	cfg.QR.Strict = l.envBool(EnvQRStrict, cfg.QR.Strict)
	cfg.QR.Pattern = l.envString(EnvQRPattern, cfg.QR.Pattern)
	cfg.QR.HTTPBase = l.envString(EnvQRHTTPBase, cfg.QR.HTTPBase)

	cfg.Store.Backend = l.envString(EnvStoreBackend, cfg.Store.Backend)
	cfg.Store.Path = l.envString(EnvStorePath, cfg.Store.Path)
	cfg.Store.Redis.Addr = l.envString(EnvRedisAddr, cfg.Store.Redis.Addr)
	cfg.Store.Redis.Password = l.envString(EnvRedisPassword, cfg.Store.Redis.Password)
	cfg.Store.Redis.DB = l.envInt(EnvRedisDB, cfg.Store.Redis.DB)
	cfg.Store.Redis.Prefix = l.envString(EnvRedisPrefix, cfg.Store.Redis.Prefix)

	cfg.History.DBPath = l.envString(EnvHistoryDBPath, cfg.History.DBPath)
	cfg.History.TTL = l.envDuration(EnvHistoryTTL, cfg.History.TTL)

	cfg.Schedule.CacheTTL = l.envDuration(EnvScheduleCacheTTL, cfg.Schedule.CacheTTL)

	cfg.Breaker.Threshold = l.envInt(EnvBreakerThreshold, cfg.Breaker.Threshold)
	cfg.Breaker.ResetTimeout = l.envDuration(EnvBreakerResetTimeout, cfg.Breaker.ResetTimeout)

	cfg.Log.Level = l.envString(EnvLogLevel, cfg.Log.Level)
	cfg.Log.Service = l.envString(EnvLogService, cfg.Log.Service)

	cfg.Telemetry.Enabled = l.envBool(EnvTelemetryEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvTelemetryExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvTelemetryEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvTelemetrySampling, cfg.Telemetry.SamplingRate)
	cfg.Telemetry.Environment = l.envString(EnvTelemetryEnvironment, cfg.Telemetry.Environment)

	cfg.Mock.ListenAddr = l.envString(EnvMockListenAddr, cfg.Mock.ListenAddr)
	cfg.Mock.RateLimit = l.envInt(EnvMockRateLimit, cfg.Mock.RateLimit)
	cfg.Mock.ParticipantRate = l.envFloat(EnvMockParticipantRate, cfg.Mock.ParticipantRate)
	cfg.Mock.ParticipantBurst = l.envInt(EnvMockParticipantBurst, cfg.Mock.ParticipantBurst)

	cfg.Metrics.Addr = l.envString(EnvMetricsAddr, cfg.Metrics.Addr)
}
