// SPDX-License-Identifier: MIT

// Command connect is the terminal client for the Connect attendance system.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/connectapp/connect/internal/config"
	xglog "github.com/connectapp/connect/internal/log"
	"github.com/connectapp/connect/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cli carries the process streams and global flags into subcommands.
type cli struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	configPath string
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("connect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }

	var (
		showVersion bool
		configPath  string
		envFile     string
	)
	fs.BoolVar(&showVersion, "version", false, "print version and exit")
	fs.StringVar(&configPath, "config", "", "path to config file (YAML); defaults to $"+config.EnvConfigFile)
	fs.StringVar(&envFile, "env-file", ".env", "optional KEY=VALUE file loaded before the environment is read")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if showVersion {
		fmt.Fprintf(stdout, "connect %s\n", version.String())
		return 0
	}

	xglog.Configure(xglog.Config{Level: "warn", Output: stderr, Service: "connect", Version: version.Version})

	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if strings.TrimSpace(configPath) == "" {
		configPath = config.ParseString(config.EnvConfigFile, "")
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return 2
	}

	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr, configPath: configPath}
	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "scan":
		return c.runScan(ctx, cmdArgs)
	case "decode":
		return c.runDecode(cmdArgs)
	case "qr":
		return c.runQR(cmdArgs)
	case "login":
		return c.runLogin(ctx, cmdArgs)
	case "register":
		return c.runRegister(ctx, cmdArgs)
	case "logout":
		return c.runLogout(ctx, cmdArgs)
	case "whoami":
		return c.runWhoami(ctx, cmdArgs)
	case "schedule":
		return c.runSchedule(ctx, cmdArgs)
	case "history":
		return c.runHistory(ctx, cmdArgs)
	case "status":
		return c.runStatus(ctx, cmdArgs)
	case "config":
		return c.runConfig(cmdArgs)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", cmd)
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: connect [--config file] [--env-file file] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  scan      read QR payloads from stdin and register attendance")
	fmt.Fprintln(w, "  decode    print the activity identifier carried by a payload")
	fmt.Fprintln(w, "  qr        print the QR payloads for an activity")
	fmt.Fprintln(w, "  login     sign in and remember the participant")
	fmt.Fprintln(w, "  register  create an account")
	fmt.Fprintln(w, "  logout    forget the signed-in participant")
	fmt.Fprintln(w, "  whoami    show the signed-in participant")
	fmt.Fprintln(w, "  schedule  list activities")
	fmt.Fprintln(w, "  history   list your registered attendance")
	fmt.Fprintln(w, "  status    check the backend, session store and history database")
	fmt.Fprintln(w, "  config    validate or dump the configuration")
}

// loadConfig resolves the effective configuration and reconfigures logging
// from it.
func (c *cli) loadConfig() (config.AppConfig, *config.Loader, error) {
	loader := config.NewLoader(c.configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		return cfg, loader, err
	}
	xglog.Configure(xglog.Config{
		Level:   cfg.Log.Level,
		Output:  c.stderr,
		Service: cfg.Log.Service,
		Version: cfg.Version,
	})
	return cfg, loader, nil
}

func (c *cli) fail(err error) int {
	fmt.Fprintf(c.stderr, "Error: %v\n", err)
	return 1
}
