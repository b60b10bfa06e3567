// Package app assembles a Matcher from configuration. Both binaries start
// from here.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/agenthands/cardmatch/internal/config"
	"github.com/agenthands/cardmatch/internal/core"
	"github.com/agenthands/cardmatch/internal/core/graph"
	"github.com/agenthands/cardmatch/internal/core/index"
	"github.com/agenthands/cardmatch/internal/core/recognition"
	"github.com/agenthands/cardmatch/internal/dataset"
	"github.com/agenthands/cardmatch/internal/driver"
	"github.com/agenthands/cardmatch/internal/llm"
	"github.com/agenthands/cardmatch/internal/logger"
	"github.com/agenthands/cardmatch/internal/ocr"
	"github.com/agenthands/cardmatch/internal/store"
)

type App struct {
	Config  *config.Config
	Matcher *core.Matcher
	Clients *llm.Clients
	Store   store.CacheStore
	Logger  *logger.Logger
}

// New loads the dataset and builds every component cfg asks for. The
// embedding cache is not touched; call Matcher.Warm.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	cards, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		return nil, err
	}

	clients, err := llm.NewClients(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM clients: %w", err)
	}

	cacheStore, err := store.New(cfg.Cache.Backend, cfg.Cache.Path)
	if err != nil {
		_ = clients.Close()
		return nil, err
	}

	var reranker llm.RerankerClient
	if clients.Generator != nil {
		reranker = llm.NewSimpleLLMReranker(clients.Generator)
	}

	ix := index.New(clients.Embedder, cacheStore, log.With("component", "index"))
	extractor := recognition.NewExtractor(clients.Generator, clients.Vision, ocr.New(cfg.OCR), cfg.Recognition)
	matcher := core.NewMatcher(cards, ix, extractor, reranker, cfg.Match, log.With("component", "matcher"))

	log.Info("dataset loaded", "path", cfg.Dataset.Path, "cards", len(cards), "provider", cfg.LLM.Provider)
	return &App{
		Config:  cfg,
		Matcher: matcher,
		Clients: clients,
		Store:   cacheStore,
		Logger:  log,
	}, nil
}

func (a *App) Close() error {
	var errs []error
	errs = append(errs, a.Clients.Close())
	if c, ok := a.Store.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// ConnectGraph opens the Memgraph connection described by cfg. The caller
// closes the returned driver.
func ConnectGraph(ctx context.Context, cfg config.MemgraphConfig, log *logger.Logger) (*graph.Publisher, driver.GraphDriver, error) {
	d, err := driver.NewMemgraphDriver(ctx, cfg.URI, cfg.User, cfg.Password, log.With("component", "memgraph"))
	if err != nil {
		return nil, nil, err
	}
	return graph.NewPublisher(d, log.With("component", "graph")), d, nil
}
