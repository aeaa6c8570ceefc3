// SPDX-License-Identifier: MIT

// Command connect-mock serves the in-memory mock backend for local
// development of the Connect client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/connectapp/connect/internal/config"
	xglog "github.com/connectapp/connect/internal/log"
	"github.com/connectapp/connect/internal/mockapi"
	"github.com/connectapp/connect/internal/telemetry"
	"github.com/connectapp/connect/internal/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run serves until ctx ends. ready, when non-nil, receives the bound API
// address once listening.
func run(ctx context.Context, args []string, stdout io.Writer, ready chan<- string) error {
	fs := flag.NewFlagSet("connect-mock", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file (YAML)")
	listen := fs.String("listen", "", "API listen address (overrides mock.listenAddr)")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintf(stdout, "connect-mock %s\n", version.String())
		return nil
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.NewLoader(*configPath, version.Version).Load()
	if err != nil {
		return err
	}
	xglog.Configure(xglog.Config{Level: cfg.Log.Level, Service: "connect-mock", Version: version.Version})
	logger := xglog.WithComponent("mock")

	addr := cfg.Mock.ListenAddr
	if *listen != "" {
		addr = *listen
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "connect-mock",
		ServiceVersion: version.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = tp.Shutdown(context.WithoutCancel(ctx)) }()

	api := mockapi.New(mockapi.Config{
		Fixtures:         mockapi.DefaultFixtures(),
		RateLimit:        cfg.Mock.RateLimit,
		ParticipantRate:  cfg.Mock.ParticipantRate,
		ParticipantBurst: cfg.Mock.ParticipantBurst,
		ServiceName:      "connect-mock",
		ExposeMetrics:    cfg.Metrics.Addr == "",
		Version:          version.Version,
	})

	servers := []*http.Server{{Handler: api, ReadHeaderTimeout: 5 * time.Second}}
	listeners := make([]net.Listener, 0, 2)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	listeners = append(listeners, ln)

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mln, err := net.Listen("tcp", cfg.Metrics.Addr)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("listen %s: %w", cfg.Metrics.Addr, err)
		}
		servers = append(servers, &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second})
		listeners = append(listeners, mln)
	}

	logger.Info().
		Str(xglog.FieldEvent, "mock.started").
		Str("addr", ln.Addr().String()).
		Str(xglog.FieldBaseURL, "http://"+ln.Addr().String()+mockapi.APIPrefix).
		Msg("mock backend listening")
	if ready != nil {
		ready <- ln.Addr().String()
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range servers {
		srv, l := servers[i], listeners[i]
		g.Go(func() error {
			if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(shutdownCtx))
		}
		logger.Info().Str(xglog.FieldEvent, "mock.stopped").Msg("mock backend stopped")
		return errors.Join(errs...)
	})
	return g.Wait()
}
