// Package cli implements the dz command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/distillyzer/dz-cli/internal/adapters/driven/acquire/article"
	"github.com/distillyzer/dz-cli/internal/adapters/driven/acquire/github"
	"github.com/distillyzer/dz-cli/internal/adapters/driven/acquire/whisper"
	"github.com/distillyzer/dz-cli/internal/adapters/driven/acquire/ytdlp"
	configfile "github.com/distillyzer/dz-cli/internal/adapters/driven/config/file"
	ollamaembed "github.com/distillyzer/dz-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/distillyzer/dz-cli/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/distillyzer/dz-cli/internal/adapters/driven/llm/anthropic"
	openaillm "github.com/distillyzer/dz-cli/internal/adapters/driven/llm/openai"
	"github.com/distillyzer/dz-cli/internal/adapters/driven/storage/sqlite"
	"github.com/distillyzer/dz-cli/internal/chunker"
	"github.com/distillyzer/dz-cli/internal/core/ports/driven"
	"github.com/distillyzer/dz-cli/internal/core/ports/driving"
	"github.com/distillyzer/dz-cli/internal/core/services"
	"github.com/distillyzer/dz-cli/internal/logger"
	"github.com/distillyzer/dz-cli/internal/retry"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services wired by setupApp and shared across commands.
var (
	settings       *configfile.Settings
	store          *sqlite.Store
	harvestService driving.HarvestService
	queryService   driving.QueryService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "dz",
	Short: "Personal knowledge harvester",
	Long: `dz ingests video transcripts, web articles and repository docs
into a local catalog, then answers questions from that catalog with
cited sources.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if skipsWiring(cmd) {
			return nil
		}
		return setupApp(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if store != nil {
			_ = store.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging to stderr")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// skipsWiring reports whether the command runs without the full app.
func skipsWiring(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return true
	}
	return false
}

// setupApp loads settings and builds the service graph.
func setupApp(ctx context.Context) error {
	configStore, err := configfile.NewStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	settings, err = configStore.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Seed a config file on first run so users have something to edit.
	if !configStore.Exists() {
		if err := configStore.Save(settings); err != nil {
			logger.Warn("Writing default config: %v", err)
		}
	}

	store, err = sqlite.NewStore(configStore.DataDir(settings))
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}

	return wireServices(ctx)
}

// wireServices builds the service graph from the loaded settings.
// Acquisition is always wired; search, channel listing and article or
// repo harvesting need no API key. Only embedding and synthesis degrade
// when their providers are unconfigured.
func wireServices(ctx context.Context) error {
	embedder, err := buildEmbedder(settings)
	if err != nil {
		return err
	}
	if embedder == nil {
		logger.Debug("no embedding provider configured; harvested content will not be embedded")
	}

	// Transcription shares the OpenAI key; video harvesting is
	// unavailable without it.
	var transcriber driven.Transcriber
	if key := transcriptionKey(settings); key != "" {
		transcriber, err = whisper.New(whisper.Config{
			APIKey:  key,
			BaseURL: settings.WhisperURL,
		})
		if err != nil {
			return fmt.Errorf("configuring transcriber: %w", err)
		}
	}

	ch := chunker.New(chunker.WithBudget(settings.ChunkBudget))

	harvestService = services.NewHarvestService(
		store,
		ytdlp.New(),
		transcriber,
		article.New(),
		github.New(ctx, settings.GitHubToken),
		embedder,
		store,
		ch,
		retry.Default,
	)

	llm, err := buildLLM(settings)
	if err != nil {
		return err
	}
	if llm != nil && embedder != nil {
		retriever := services.NewRetriever(store, embedder, store)
		assembler := services.NewContextAssembler(settings.ContextBudget)
		queryService = services.NewQueryService(retriever, assembler, llm)
	}

	return nil
}

// transcriptionKey returns the OpenAI key used for Whisper, from
// either the embedding settings or the environment.
func transcriptionKey(settings *configfile.Settings) string {
	if settings.Embedding.Provider == "openai" && settings.Embedding.APIKey != "" {
		return settings.Embedding.APIKey
	}
	return os.Getenv(configfile.EnvOpenAIKey)
}

// buildEmbedder returns nil without error when the provider is simply
// unconfigured.
func buildEmbedder(settings *configfile.Settings) (driven.EmbeddingService, error) {
	switch settings.Embedding.Provider {
	case "openai":
		if settings.Embedding.APIKey == "" {
			return nil, nil
		}
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.Embedding.APIKey,
			BaseURL: settings.Embedding.BaseURL,
			Model:   settings.Embedding.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring embeddings: %w", err)
		}
		return svc, nil
	case "ollama":
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.Embedding.BaseURL,
			Model:   settings.Embedding.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", settings.Embedding.Provider)
	}
}

// buildLLM returns nil without error when no API key is configured.
func buildLLM(settings *configfile.Settings) (driven.LLMService, error) {
	if settings.LLM.APIKey == "" {
		return nil, nil
	}
	switch settings.LLM.Provider {
	case "anthropic":
		svc, err := anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey: settings.LLM.APIKey,
			Model:  settings.LLM.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring llm: %w", err)
		}
		return svc, nil
	case "openai":
		svc, err := openaillm.NewLLMService(openaillm.Config{
			APIKey: settings.LLM.APIKey,
			Model:  settings.LLM.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring llm: %w", err)
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", settings.LLM.Provider)
	}
}
