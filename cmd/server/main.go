package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/agenthands/cardmatch/internal/app"
	"github.com/agenthands/cardmatch/internal/config"
	"github.com/agenthands/cardmatch/internal/logger"
	"github.com/agenthands/cardmatch/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.ApplyEnv()

	zlog, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize", "error", err)
	}
	defer a.Close()

	if err := a.Matcher.Warm(ctx); err != nil {
		zlog.Fatal("failed to warm matcher", "error", err)
	}

	var crew server.Crewmates
	if cfg.Memgraph.Enabled {
		publisher, d, err := app.ConnectGraph(ctx, cfg.Memgraph, zlog)
		if err != nil {
			zlog.Fatal("failed to connect to memgraph", "error", err)
		}
		defer d.Close(ctx)
		crew = publisher
	}

	r := server.NewServer(a.Matcher, crew, zlog.With("component", "server")).SetupRouter()

	zlog.Info("starting server", "port", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		zlog.Fatal("server stopped", "error", err)
	}
}
