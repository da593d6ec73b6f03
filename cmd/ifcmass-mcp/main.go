package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"ifcmass/internal/adapters/geometry"
	"ifcmass/internal/adapters/ifc"
	mcpadapter "ifcmass/internal/adapters/mcp"
	"ifcmass/internal/config"
	"ifcmass/internal/logger"
	"ifcmass/internal/logger/console"
	"ifcmass/internal/ports"
)

func main() {
	config.LoadEnv()
	cfg := config.FromEnv()

	flag.StringVar(&cfg.CachePath, "cache", cfg.CachePath, "path to the density cache")
	flag.StringVar(&cfg.Store, "store", cfg.Store, "density cache backend: json or sqlite")
	flag.StringVar(&cfg.Lookup, "lookup", cfg.Lookup, "density lookup: openai, ollama, claude or none")
	flag.StringVar(&cfg.Model, "model", cfg.Model, "model queried by the density lookup")
	flag.StringVar(&cfg.KeyPath, "key", cfg.KeyPath, "path to the OpenAI key file")
	flag.Parse()

	// stdout carries the protocol, logs go to stderr
	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{Debug: cfg.Debug, Output: os.Stderr}))

	if err := cfg.Validate(); err != nil {
		log.Fatalf("ifcmass-mcp: %v", err)
	}

	store, closer, err := config.OpenStore(cfg)
	if err != nil {
		log.Fatalf("ifcmass-mcp: %v", err)
	}
	defer closer.Close()

	deps := mcpadapter.Deps{
		Loader:  ifc.NewLoader(),
		Kernels: geometry.NewFactory(ports.GeometrySettings{WorldCoords: true}),
		Store:   store,
		Lookup:  config.NewLookup(cfg),
	}

	mcpServer := server.NewMCPServer(
		"ifcmass-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, deps)
	mcpadapter.RegisterWriteTools(mcpServer, store)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("ifcmass-mcp: %v", err)
	}
}
