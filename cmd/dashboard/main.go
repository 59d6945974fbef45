// Package main is the coin dashboard command line client.
//
// Usage: dashboard [-json] <command> [flags] [args]
//
// Market-data commands always answer: when the upstream API throttles or
// fails they print fallback data. Backend commands (news, podcast, rugpull)
// report errors instead.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"coin-dashboard/internal/config"
	"coin-dashboard/internal/observability/logging"
)

// errUsage marks argument errors; run prints usage and exits with 2.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	global.SetOutput(stderr)
	jsonOut := global.Bool("json", false, "print results as JSON")
	global.Usage = func() { printUsage(stderr) }
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	rest := global.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return 2
	}
	cmd, ok := lookup(rest[0])
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", rest[0])
		printUsage(stderr)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Writer: stderr,
	})
	slog.SetDefault(logger)
	if cmd.name != "watch" {
		cfg.Report(logger, nil)
	}

	a, err := newApp(ctx, cfg, logger, stdout, *jsonOut)
	if err != nil {
		logger.Error("failed to initialize", slog.Any("error", err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close", slog.Any("error", err))
		}
	}()

	if err := cmd.run(ctx, a, rest[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Usage: dashboard %s\n", cmd.usage)
			return 2
		}
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dashboard [-json] <command> [flags] [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
}
