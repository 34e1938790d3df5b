// Package main implements the semgraph command line. It opens a graph
// backend by locator, loads foundation packs, and runs validation and
// reasoning queries from the shell.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/c360/semgraph"
	"github.com/c360/semgraph/config"
	"github.com/c360/semgraph/validate"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "semgraph"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, args := parseFlags()

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp || len(args) == 0 {
		printDetailedHelp()
		return nil
	}
	if err := validateFlags(cliCfg); err != nil {
		return err
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg := config.Default()
	if cliCfg.ConfigPath != "" {
		loaded, err := config.Load(cliCfg.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	api, err := semgraph.Open(cliCfg.Locator,
		semgraph.WithConfig(cfg),
		semgraph.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := api.Close(); cerr != nil {
			logger.Error("close failed", "error", cerr)
		}
	}()

	for _, layer := range strings.Split(cliCfg.Layers, ",") {
		if layer = strings.TrimSpace(layer); layer != "" {
			api.Layers().Enable(layer)
		}
	}

	ctx := context.Background()
	command, rest := args[0], args[1:]

	switch command {
	case "load":
		return runLoad(ctx, api, rest)
	case "add":
		return runAdd(ctx, api, rest)
	case "query":
		return runQuery(ctx, api, rest)
	case "validate":
		return runValidate(ctx, api, rest)
	case "reason":
		return runReason(ctx, api, cliCfg, rest)
	case "connector":
		return runConnector(ctx, api, rest)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func runLoad(ctx context.Context, api *semgraph.API, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("load requires at least one pack file")
	}
	for _, path := range paths {
		result, err := api.LoadFoundationPack(ctx, path)
		if err != nil {
			return err
		}
		fmt.Printf("%s: inserted %d, updated %d, errors %d\n",
			path, result.Inserted, result.Updated, len(result.Errors))
		for _, edgeErr := range result.Errors {
			fmt.Printf("  %s: %v\n", edgeErr.Edge, edgeErr.Err)
		}
	}
	return nil
}

func runAdd(ctx context.Context, api *semgraph.API, edges []string) error {
	if len(edges) == 0 {
		return fmt.Errorf("add requires at least one edge")
	}
	for _, s := range edges {
		edge, err := api.AddEdge(ctx, s, nil)
		if err != nil {
			return err
		}
		fmt.Println(edge.String())
	}
	return nil
}

func runQuery(ctx context.Context, api *semgraph.API, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("query requires exactly one pattern")
	}
	entries, err := api.Query(ctx, args[0])
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Println(entry.Edge.String())
	}
	return nil
}

func runValidate(ctx context.Context, api *semgraph.API, edges []string) error {
	if len(edges) == 0 {
		return fmt.Errorf("validate requires at least one proposed edge")
	}
	report, err := api.ValidateStrings(ctx, edges)
	if err != nil {
		return err
	}
	if err := printJSON(report); err != nil {
		return err
	}
	if report.Decision == validate.DecisionDeny {
		return fmt.Errorf("validation denied %d edge(s)", len(report.Rejected))
	}
	return nil
}

func runReason(ctx context.Context, api *semgraph.API, cliCfg *CLIConfig, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("reason requires exactly one start edge or pattern")
	}
	results, err := api.Reason(ctx, args[0], cliCfg.Hops, cliCfg.Limit)
	if err != nil {
		return err
	}
	return printJSON(results)
}

func runConnector(ctx context.Context, api *semgraph.API, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("connector requires exactly one identifier")
	}
	entries, err := api.EdgesByConnector(ctx, args[0])
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Println(entry.Edge.String())
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
