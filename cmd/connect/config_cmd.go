// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"strings"

	"github.com/connectapp/connect/internal/config"
	"github.com/connectapp/connect/internal/version"
)

func (c *cli) runConfig(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		c.printConfigUsage()
		return 0
	}
	switch args[0] {
	case "validate":
		return c.runConfigValidate(args[1:])
	case "dump":
		return c.runConfigDump(args[1:])
	default:
		fmt.Fprintf(c.stderr, "Unknown subcommand: %s\n\n", args[0])
		c.printConfigUsage()
		return 2
	}
}

func (c *cli) printConfigUsage() {
	fmt.Fprintln(c.stderr, "Usage:")
	fmt.Fprintln(c.stderr, "  connect config validate [--file|-f config.yaml]")
	fmt.Fprintln(c.stderr, "  connect config dump [--file|-f config.yaml] [--format=yaml|json]")
}

func (c *cli) configFlags(name string, args []string, extra func(*flag.FlagSet)) (string, bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var file string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return "", false
	}
	if strings.TrimSpace(file) == "" {
		file = c.configPath
	}
	return strings.TrimSpace(file), true
}

func (c *cli) runConfigValidate(args []string) int {
	path, ok := c.configFlags("connect config validate", args, nil)
	if !ok {
		return 2
	}
	if _, err := config.NewLoader(path, version.Version).Load(); err != nil {
		fmt.Fprintf(c.stderr, "Configuration error in %s:\n  %v\n", describe(path), err)
		return 1
	}
	fmt.Fprintf(c.stdout, "✓ %s is valid\n", describe(path))
	return 0
}

func (c *cli) runConfigDump(args []string) int {
	var format string
	path, ok := c.configFlags("connect config dump", args, func(fs *flag.FlagSet) {
		fs.StringVar(&format, "format", "yaml", "output format: yaml or json")
	})
	if !ok {
		return 2
	}
	cfg, err := config.NewLoader(path, version.Version).Load()
	if err != nil {
		fmt.Fprintf(c.stderr, "Configuration error in %s:\n  %v\n", describe(path), err)
		return 1
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "yaml", "yml":
		out, err := config.Dump(cfg)
		if err != nil {
			return c.fail(err)
		}
		_, _ = c.stdout.Write(out)
		return 0
	case "json":
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg.Redacted()); err != nil {
			return c.fail(err)
		}
		return 0
	default:
		fmt.Fprintf(c.stderr, "Unsupported format: %s (use yaml or json)\n", format)
		return 2
	}
}

func describe(path string) string {
	if path == "" {
		return "environment + defaults"
	}
	return path
}
