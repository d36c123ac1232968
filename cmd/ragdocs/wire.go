package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/ragdocs/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragdocs/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragdocs/internal/adapters/driven/pacing"
	"github.com/custodia-labs/ragdocs/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragdocs/internal/adapters/driven/vector"
	"github.com/custodia-labs/ragdocs/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragdocs/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/ragdocs/internal/connectors/filesystem"
	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/core/services"
	"github.com/custodia-labs/ragdocs/internal/logger"
	"github.com/custodia-labs/ragdocs/internal/normalisers"
	"github.com/custodia-labs/ragdocs/internal/postprocessors"
)

// newSetup returns the CLI setup hook. environ supplies process variables.
func newSetup(environ func() []string) cli.SetupFunc {
	return func(_ context.Context, opts cli.Options) (*cli.Services, error) {
		return buildServices(opts, environ)
	}
}

// buildServices wires the driven adapters into the core services.
// Missing providers leave the dependent services nil so that commands
// which do not need them (settings, stats) still run.
func buildServices(opts cli.Options, environ func() []string) (svcs *cli.Services, err error) {
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	defer func() {
		if err != nil {
			_ = closeAll()
		}
	}()

	store, err := openConfigStore(opts.ConfigPath, environ)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	for key, value := range opts.Overrides {
		store.Override(key, value)
	}
	configDir := filepath.Dir(store.Path())

	settingsService := services.NewSettingsService(store, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if settings.VectorIndex.DataDir == "" {
		settings.VectorIndex.DataDir = filepath.Join(configDir, "data")
	}

	out := &cli.Services{
		Settings:      settingsService,
		TelegramToken: settings.Telegram.Token,
		Server: httpapi.Config{
			Addr:            settings.Server.Addr,
			APIKeyHashes:    settings.Server.APIKeyHashes,
			JWTSecret:       settings.Server.JWTSecret,
			AzureConfigured: settings.Embedding.Provider == domain.AIProviderAzure && settings.Embedding.IsConfigured(),
		},
	}

	providers, err := ai.Build(settings)
	if err != nil {
		logger.Warn("%v", err)
		providers = &ai.Services{}
	}
	closers = append(closers, func() error { providers.Close(); return nil })

	index, err := vector.Open(settings)
	if err != nil {
		return nil, err
	}
	closers = append(closers, index.Close)

	out.Index = services.NewIndexService(index)
	out.Health = services.NewHealthService(providers.Embedding, index, providers.LLM)

	if providers.Embedding == nil {
		logger.Debug("embedding provider not configured")
	} else {
		retriever := services.NewRetriever(providers.QueryEmbedding, index)
		out.Retrieve = retriever

		ingest, err := newIngestService(settingsService, settings, providers.Embedding, index)
		if err != nil {
			return nil, err
		}
		out.Ingest = ingest

		schedStore, err := sqlite.NewStore(settings.VectorIndex.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open scheduler store: %w", err)
		}
		closers = append(closers, schedStore.Close)

		out.SchedulerConfig = settingsService.GetSchedulerConfig()
		out.Scheduler = services.NewScheduler(out.SchedulerConfig, schedStore.SchedulerStore(), ingest)

		if providers.LLM != nil {
			prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
			if err != nil {
				return nil, err
			}
			answerer := services.NewAnswerer(providers.LLM, prompts, services.AnswererConfig{
				MaxTokens:       settings.Generation.MaxTokens,
				Temperature:     settings.Generation.Temperature,
				MaxContextChars: settings.Generation.MaxContextChars,
			})
			out.Ask = services.NewAskService(retriever, answerer)
		}
	}
	if out.Ask == nil {
		logger.Debug("ask pipeline unavailable: run 'ragdocs settings wizard' to configure providers")
	}

	out.Close = closeAll
	return out, nil
}

func openConfigStore(path string, environ func() []string) (*file.ConfigStore, error) {
	opts := []file.Option{
		file.WithEnvFiles(".env"),
		file.WithEnviron(environ),
	}
	if path != "" {
		return file.NewConfigStoreFile(path, opts...)
	}
	return file.NewConfigStore("", opts...)
}

func newIngestService(
	settingsService *services.SettingsService,
	settings *domain.AppSettings,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
) (*services.IngestService, error) {
	pipeline, err := postprocessors.Build(postprocessors.Defaults(), settingsService.GetPipelineConfig(settings.Chunking))
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}

	corpus := filesystem.New(settings.Ingest.CorpusDir,
		filesystem.WithRecursive(settings.Ingest.Recursive),
		filesystem.WithRegistry(normalisers.Default()),
	)

	return services.NewIngestService(corpus, pipeline, embedder, index, pacing.NewLimiter(settings.Ingest.EmbedInterval)), nil
}
