package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	Locator     string
	LogLevel    string
	LogFormat   string
	Layers      string
	Hops        int
	Limit       int
	ShowVersion bool
	ShowHelp    bool
}

func parseFlags() (*CLIConfig, []string) {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("SEMGRAPH_CONFIG", ""),
		"Path to configuration file, optional (env: SEMGRAPH_CONFIG)")

	flag.StringVar(&cfg.Locator, "graph",
		getEnv("SEMGRAPH_GRAPH", ":memory:"),
		"Graph locator: \":memory:\", a .db/.sqlite path, or a directory (env: SEMGRAPH_GRAPH)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("SEMGRAPH_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: SEMGRAPH_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("SEMGRAPH_LOG_FORMAT", "json"),
		"Log format: json, text (env: SEMGRAPH_LOG_FORMAT)")

	flag.StringVar(&cfg.Layers, "layers", "",
		"Comma-separated layers to enable for validation")

	flag.IntVar(&cfg.Hops, "hops",
		getEnvInt("SEMGRAPH_HOPS", 0),
		"Traversal depth bound, 0 for the configured default (env: SEMGRAPH_HOPS)")

	flag.IntVar(&cfg.Limit, "limit",
		getEnvInt("SEMGRAPH_LIMIT", 0),
		"Traversal result cap, 0 for the configured default (env: SEMGRAPH_LIMIT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	flag.Usage = printDetailedHelp

	flag.Parse()
	return cfg, flag.Args()
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.Hops < 0 {
		return fmt.Errorf("invalid hops: %d", cfg.Hops)
	}
	if cfg.Limit < 0 {
		return fmt.Errorf("invalid limit: %d", cfg.Limit)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Knowledge Graph Validation and Reasoning

Usage:
  %s [flags] <command> [args...]

Commands:
  load <pack.yaml|pack.json>...   Load foundation packs into the graph
  add <edge>...                   Add edges in notation form
  query <pattern>                 Print edges matching a pattern
  validate <edge>...              Validate proposed edges against the rules
  reason <start>                  Bounded traversal from an edge or pattern
  connector <id>                  Print edges with the given connector

Flags:
`, appName, appName)
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  %[1]s -graph clinical.db load packs/clinical.yaml
  %[1]s -graph clinical.db -layers foundation,user validate "(takes/P patient/C ibuprofen/C)"
  %[1]s -graph clinical.db -hops 3 reason "(is/P a/C b/C)"
`, appName)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
