// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/connectapp/connect/internal/config"
	xglog "github.com/connectapp/connect/internal/log"
	"github.com/connectapp/connect/internal/presenca"
	"github.com/connectapp/connect/internal/qrcode"
	"github.com/connectapp/connect/internal/scanner"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// terminalCamera stands in for the device camera; permission is decided by
// a flag.
type terminalCamera struct {
	deny bool
}

func (c terminalCamera) PermissionGranted() bool { return !c.deny }

func (c terminalCamera) RequestPermission(context.Context) (bool, error) {
	return !c.deny, nil
}

// terminalAlerter prints alerts as "Title: message" lines.
type terminalAlerter struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

func (a *terminalAlerter) Alert(al scanner.Alert) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.out, "%s: %s\n", al.Title, al.Message)
}

func (a *terminalAlerter) Busy(busy bool) {
	if !busy {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintln(a.err, "Registrando presença...")
}

func (c *cli) runScan(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("connect scan", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	deny := fs.Bool("deny-camera", false, "simulate a denied camera permission")
	watch := fs.Bool("watch-config", false, "reload the config file when it changes")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, loader, err := c.loadConfig()
	if err != nil {
		return c.fail(err)
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return c.fail(err)
	}
	defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

	logger := xglog.WithComponent("cli")

	if *watch {
		holder := config.NewConfigHolder(cfg, loader)
		updates := make(chan config.AppConfig, 1)
		holder.RegisterListener(updates)
		if err := holder.StartWatcher(ctx); err != nil {
			return c.fail(err)
		}
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case next := <-updates:
					xglog.Configure(xglog.Config{Level: next.Log.Level, Output: c.stderr, Service: next.Log.Service, Version: next.Version})
				}
			}
		}()
	}

	if cfg.Metrics.Addr != "" {
		stopMetrics := serveMetrics(cfg.Metrics.Addr, c.stderr)
		defer stopMetrics()
	}

	decoder, err := qrcode.NewDecoder(cfg.DecoderOptions())
	if err != nil {
		return c.fail(err)
	}
	alerter := &terminalAlerter{out: c.stdout, err: c.stderr}
	ctrl, err := scanner.New(scanner.Config{
		Camera:    terminalCamera{deny: *deny},
		Alerter:   alerter,
		Identity:  a.provider,
		Submitter: a.presenca(),
		Decoder:   decoder,
		OnRegistered: func(o presenca.Outcome) {
			logger.Debug().Str(xglog.FieldEvent, "cli.registered").Msg(o.Message)
		},
	})
	if err != nil {
		return c.fail(err)
	}
	defer ctrl.Close()

	failures := 0
	lines := bufio.NewScanner(c.stdin)
	for lines.Scan() {
		payload := strings.TrimSpace(lines.Text())
		if payload == "" {
			continue
		}
		s, err := ctrl.Open(ctx)
		if errors.Is(err, scanner.ErrPermissionDenied) {
			return 1
		}
		if err != nil {
			return c.fail(err)
		}
		s.HandleScan(payload)
		res, err := s.Wait(ctx)
		if err != nil {
			s.Cancel()
			return c.fail(err)
		}
		if res.Cancelled || !res.Outcome.Registered() {
			failures++
		}
	}
	if err := lines.Err(); err != nil {
		return c.fail(err)
	}
	if failures > 0 {
		return 1
	}
	return 0
}

// serveMetrics exposes /metrics on addr until the returned func is called.
func serveMetrics(addr string, stderr io.Writer) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(stderr, "metrics server: %v\n", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
