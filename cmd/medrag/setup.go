package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/medrag/internal/config"
	"github.com/sandevgo/medrag/internal/core"
	"github.com/sandevgo/medrag/internal/providers/index"
	"github.com/sandevgo/medrag/internal/providers/llm"
	"github.com/sandevgo/medrag/internal/providers/rag"
	"github.com/sandevgo/medrag/internal/service/chat"
	"github.com/sandevgo/medrag/internal/service/command"
	"github.com/sandevgo/medrag/internal/service/memory"
	"github.com/sandevgo/medrag/internal/service/prompt"
	"github.com/sandevgo/medrag/internal/service/retrieval"
	"github.com/sandevgo/medrag/internal/transport/web"
	"github.com/sandevgo/medrag/pkg/log"
)

// app holds the wiring shared by every command that answers questions.
type app struct {
	cfg  *config.AppConfig
	rag  *config.RAGConfig
	init *retrieval.Initializer
	chat *chat.Orchestrator

	commands *command.Router
}

func newApp(ctx context.Context) (*app, error) {
	logger := log.FromCtx(ctx)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, err
	}

	appCfg, err := config.LoadAppConfig()
	if err != nil {
		return nil, err
	}
	ragCfg, err := config.LoadRAGConfig()
	if err != nil {
		return nil, err
	}
	llmCfg, err := config.LoadLLMConfig()
	if err != nil {
		return nil, err
	}

	instructions, err := prompt.LoadInstructions(appCfg.GetPromptPath())
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		return nil, err
	}
	completer := llm.NewCompleter(provider, llmCfg.Provider, core.GenerationParams{
		Model:       llmCfg.Model,
		Temperature: llmCfg.Temperature,
		MaxTokens:   llmCfg.MaxTokens,
	}, llmCfg.Timeout)

	initializer := retrieval.NewInitializer(
		func(ctx context.Context) (core.Embedder, error) {
			return rag.NewEmbedder(ctx, ragCfg)
		},
		func(ctx context.Context) (core.VectorIndex, error) {
			return index.New(ctx, appCfg, ragCfg)
		},
		ragCfg.InitRetryAfter,
	)

	orchestrator := chat.NewOrchestrator(
		memory.NewStore(appCfg.MemoryWindow),
		initializer,
		retrieval.NewRetriever(initializer),
		completer,
		instructions,
		appCfg.RetrievalK,
	)

	logger.Debug().
		Str("llm", llmCfg.Provider).
		Str("model", llmCfg.Model).
		Str("embedding", ragCfg.EmbeddingProvider).
		Str("index", ragCfg.IndexKind).
		Int("window", appCfg.MemoryWindow).
		Int("k", appCfg.RetrievalK).
		Msg("application wired")

	a := &app{
		cfg:  appCfg,
		rag:  ragCfg,
		init: initializer,
		chat: orchestrator,
	}
	a.commands = command.NewRouter(orchestrator, a)
	return a, nil
}

// Close releases whatever retrieval clients were constructed.
func (a *app) Close() error {
	embedder, idx, ok := a.init.Clients()
	if !ok {
		return nil
	}
	if c, isCache := embedder.(*rag.CachedEmbedder); isCache {
		c.Close()
	}
	if c, isCloser := idx.(io.Closer); isCloser {
		return c.Close()
	}
	return nil
}

// Report implements command.Reporter.
func (a *app) Report(ctx context.Context) (string, *core.IndexStats) {
	state := a.init.State().String()

	_, idx, ok := a.init.Clients()
	if !ok {
		return state, nil
	}
	stats, err := idx.Stats(ctx)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to read index stats")
		return state, nil
	}
	return state, &stats
}

// Status implements web.Health.
func (a *app) Status(ctx context.Context) web.HealthStatus {
	state, stats := a.Report(ctx)
	return web.HealthStatus{Retrieval: state, Index: stats}
}

// initEnv loads <runtime>/.env and then ./.env. Variables already set win.
func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)

	for _, envFile := range []string{filepath.Join(runtimePath, ".env"), ".env"} {
		if _, err := os.Stat(envFile); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}

		if err := godotenv.Load(envFile); err != nil {
			logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
			return err
		}
		logger.Debug().Str("path", envFile).Msg("loaded .env file")
	}
	return nil
}
