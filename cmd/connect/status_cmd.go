// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"sort"

	"github.com/connectapp/connect/internal/health"
	"github.com/connectapp/connect/internal/history"
	"github.com/connectapp/connect/internal/platform/httpx"
	"github.com/connectapp/connect/internal/version"
)

// runStatus checks the backend, the session store and the history database.
func (c *cli) runStatus(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("connect status", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	a, done, code := c.openApp(ctx)
	if a == nil {
		return code
	}
	defer done()

	var cache *history.Cache
	if a.cfg.History.DBPath != "" {
		hc, err := history.Open(a.cfg.History.DBPath, history.DefaultDBConfig())
		if err == nil {
			a.closers = append(a.closers, hc.Close)
			cache = hc
		}
	}

	m := health.NewManager(version.Version)
	m.Register(
		health.NewBackendChecker(a.cfg.API.BaseURL, a.httpClient()),
		health.NewStoreChecker(a.kv),
		health.NewHistoryChecker(cache),
	)
	report := m.Run(ctx)

	if *asJSON {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else {
		names := make([]string, 0, len(report.Checks))
		for name := range report.Checks {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(c.stdout, "status: %s\n", report.Status)
		for _, name := range names {
			r := report.Checks[name]
			line := fmt.Sprintf("  %-8s %s", name, r.Status)
			if r.Message != "" {
				line += "  " + r.Message
			}
			if r.Error != "" {
				line += "  (" + r.Error + ")"
			}
			fmt.Fprintln(c.stdout, line)
		}
	}
	if report.Status == health.StatusUnhealthy {
		return 1
	}
	return 0
}

func (a *app) httpClient() *http.Client {
	return httpx.NewTracedClient(a.cfg.API.Timeout, "health")
}
