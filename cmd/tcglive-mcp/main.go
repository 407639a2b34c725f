package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/tcglive/internal/app"
	"github.com/peterkuimelis/tcglive/internal/config"
	tcglivemcp "github.com/peterkuimelis/tcglive/internal/mcp"
)

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol; logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	var events io.Writer
	if cfg.EventLog {
		events = os.Stderr
	}
	a, err := app.New(cfg, logger, events)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	s := server.NewMCPServer("tcglive", "1.0.0")
	tcglivemcp.RegisterTools(s, a.Manager, a.Catalog)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
