package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gatepad/gatepad/internal/config"
	"github.com/gatepad/gatepad/internal/kv"
	"github.com/gatepad/gatepad/internal/mcp"
	"github.com/gatepad/gatepad/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"classify": true, "lint": true, "render": true,
	"status": true, "text": true, "save": true,
	"project": true, "file": true, "history": true, "prefs": true,
	"analyze": true, "debug": true, "optimize": true, "simulate": true,
	"templates": true, "apply-template": true, "chat": true, "upload": true,
	"serve": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
             _                       _
   __ _  __ _| |_ ___ _ __   __ _  __| |
  / _' |/ _' | __/ _ \ '_ \ / _' |/ _' |
 | (_| | (_| | ||  __/ |_) | (_| | (_| |
  \__, |\__,_|\__\___| .__/ \__,_|\__,_|
  |___/              |_|

  Verilog circuit workspace

  Usage: gatepad <command> [options]
         gatepad serve
         gatepad --help

  MCP server mode requires piped input.`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Help and version need no storage.
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil)
		if err := app.Run(os.Args); err != nil {
			fatalf("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() && !isCLIMode() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'gatepad --help' for usage.\n")
		os.Exit(1)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fatalf("could not determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, ".gatepad")

	cwd, err := os.Getwd()
	if err != nil {
		fatalf("could not determine working directory: %v", err)
	}

	if err := config.LoadEnvFile(filepath.Join(cwd, ".env")); err != nil {
		fatalf("%v", err)
	}
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fatalf("failed to load config: %v", err)
	}
	config.ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		fatalf("invalid config: %v", err)
	}

	ctx := context.Background()
	store, closeStore, err := kv.Open(ctx, cfg, baseDir)
	if err != nil {
		fatalf("failed to open storage: %v", err)
	}
	defer closeStore()

	session, err := ops.NewSession(ctx, store, cfg)
	if err != nil {
		closeStore()
		fatalf("failed to load workspace: %v", err)
	}
	defer session.Close()

	if isCLIMode() {
		app := newCLIApp(session, cfg)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			session.Close()
			closeStore()
			os.Exit(1)
		}
		return
	}

	// MCP server mode (default)
	if err := mcp.Run(session, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		session.Close()
		closeStore()
		os.Exit(1)
	}
}
