// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/connectapp/connect/internal/auth"
	"github.com/connectapp/connect/internal/config"
	"github.com/connectapp/connect/internal/history"
	xglog "github.com/connectapp/connect/internal/log"
	"github.com/connectapp/connect/internal/platform/httpx"
	"github.com/connectapp/connect/internal/presenca"
	"github.com/connectapp/connect/internal/resilience"
	"github.com/connectapp/connect/internal/schedule"
	"github.com/connectapp/connect/internal/store"
	"github.com/connectapp/connect/internal/telemetry"
	"github.com/connectapp/connect/internal/version"
)

// app wires the long-lived dependencies a command needs.
type app struct {
	cfg      config.AppConfig
	kv       store.Store
	provider *auth.Provider
	tracing  *telemetry.Provider
	closers  []func() error
}

func newApp(ctx context.Context, cfg config.AppConfig) (*app, error) {
	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Log.Service,
		ServiceVersion: version.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	kv, err := store.Open(store.Config{
		Backend: store.Backend(cfg.Store.Backend),
		Path:    cfg.Store.Path,
		Redis: store.RedisConfig{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			Prefix:   cfg.Store.Redis.Prefix,
		},
	}, xglog.WithComponent("store"))
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("open store: %w", err)
	}

	provider := auth.NewProvider(auth.NewStorage(kv))
	provider.Load(ctx)

	return &app{
		cfg:      cfg,
		kv:       kv,
		provider: provider,
		tracing:  tp,
		closers:  []func() error{kv.Close},
	}, nil
}

func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	errs = append(errs, a.tracing.Shutdown(ctx))
	return errors.Join(errs...)
}

func (a *app) breaker(name string) *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker(name, a.cfg.Breaker.Threshold, a.cfg.Breaker.ResetTimeout)
}

func (a *app) presenca() *presenca.Client {
	hc := auth.WithBearer(httpx.NewTracedClient(a.cfg.API.Timeout, "presenca"), a.provider.Token)
	return presenca.New(a.cfg.API.BaseURL, presenca.Options{Timeout: a.cfg.API.Timeout, HTTPClient: hc})
}

func (a *app) authClient() *auth.Client {
	return auth.NewClient(a.cfg.API.BaseURL, a.cfg.API.Timeout, nil)
}

func (a *app) schedule() *schedule.Client {
	c := schedule.New(a.cfg.API.BaseURL, schedule.Options{
		Timeout:  a.cfg.API.Timeout,
		CacheTTL: a.cfg.Schedule.CacheTTL,
		Breaker:  a.breaker("schedule"),
	})
	a.closers = append(a.closers, func() error { c.Close(); return nil })
	return c
}

func (a *app) history() (*history.Service, error) {
	var cache *history.Cache
	if a.cfg.History.DBPath != "" {
		c, err := history.Open(a.cfg.History.DBPath, history.DefaultDBConfig())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, c.Close)
		cache = c
	}
	return history.NewService(a.presenca(), cache, history.Options{
		TTL: a.cfg.History.TTL,
		Breaker: resilience.NewCircuitBreaker("history", a.cfg.Breaker.Threshold, a.cfg.Breaker.ResetTimeout,
			resilience.WithNeutralErrors(history.IsRejection)),
	}), nil
}
