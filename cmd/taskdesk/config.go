package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/taskdesk/taskdesk/internal/config"
)

const version = "0.3.0"

// cliConfig holds the parsed global flags plus the loaded file config.
type cliConfig struct {
	LogLevel slog.Level
	App      *config.Config
	Args     []string
}

func parseFlags() cliConfig {
	var cfg cliConfig

	printVersion := flag.Bool("version", false, "Show version.")
	logLevel := flag.String("log-level", "warn", "Log level (debug | info | warn | error).")
	configPath := flag.String("config", config.DefaultConfigPath(), "Path to config file.")
	backend := flag.String("storage", "", "Override storage backend (sqlite | file | memory).")
	path := flag.String("storage-path", "", "Override storage path.")
	flag.Parse()

	if *printVersion {
		fmt.Fprintln(os.Stdout, "taskdesk "+version)
		os.Exit(0)
	}

	cfg.LogLevel = parseLogLevel(*logLevel)

	app, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *backend != "" {
		app.Storage.Backend = *backend
	}
	if *path != "" {
		app.Storage.Path = *path
	}
	cfg.App = app
	cfg.Args = flag.Args()

	return cfg
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
