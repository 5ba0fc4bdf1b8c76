// Package file provides the TOML-backed settings store. Settings live
// in ~/.dz/config.toml; API keys may also come from the environment.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultChunkBudget   = 400
	DefaultContextBudget = 2000
	DefaultSessionCap    = 20
	DefaultRetrieveK     = 5

	DefaultEmbeddingProvider = "openai"
	DefaultEmbeddingModel    = "text-embedding-3-small"
	DefaultLLMProvider       = "anthropic"
	DefaultLLMModel          = "claude-sonnet-4-5"
	DefaultOllamaURL         = "http://localhost:11434"
	DefaultWhisperURL        = "https://api.openai.com/v1"
)

// Environment variable fallbacks for credentials.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvGitHubToken  = "GITHUB_TOKEN"
)

// Settings is the full tool configuration.
type Settings struct {
	// DataDir is where the catalog database lives. Empty means
	// <config dir>/data.
	DataDir string `toml:"data_dir,omitempty"`

	// ChunkBudget is the maximum chunk size in characters.
	ChunkBudget int `toml:"chunk_budget"`

	// ContextBudget is the maximum assembled context size in
	// characters.
	ContextBudget int `toml:"context_budget"`

	// SessionCap is the maximum retained conversation turns.
	SessionCap int `toml:"session_cap"`

	// RetrieveK is the number of chunks fetched per question.
	RetrieveK int `toml:"retrieve_k"`

	Embedding EmbeddingSettings `toml:"embedding"`
	LLM       LLMSettings       `toml:"llm"`

	// WhisperURL is the transcription API base URL.
	WhisperURL string `toml:"whisper_url,omitempty"`

	// GitHubToken authenticates repository harvesting. Falls back to
	// GITHUB_TOKEN.
	GitHubToken string `toml:"github_token,omitempty"`
}

// EmbeddingSettings selects and configures the embedding provider.
type EmbeddingSettings struct {
	// Provider is "openai" or "ollama".
	Provider string `toml:"provider"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// APIKey authenticates hosted providers. Falls back to
	// OPENAI_API_KEY.
	APIKey string `toml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint (required for ollama).
	BaseURL string `toml:"base_url,omitempty"`
}

// LLMSettings selects and configures the synthesis provider.
type LLMSettings struct {
	// Provider is "anthropic" or "openai".
	Provider string `toml:"provider"`

	// Model is the completion model name.
	Model string `toml:"model"`

	// APIKey authenticates the provider. Falls back to
	// ANTHROPIC_API_KEY or OPENAI_API_KEY by provider.
	APIKey string `toml:"api_key,omitempty"`
}

// DefaultSettings returns the configuration used when no file exists.
func DefaultSettings() *Settings {
	return &Settings{
		ChunkBudget:   DefaultChunkBudget,
		ContextBudget: DefaultContextBudget,
		SessionCap:    DefaultSessionCap,
		RetrieveK:     DefaultRetrieveK,
		Embedding: EmbeddingSettings{
			Provider: DefaultEmbeddingProvider,
			Model:    DefaultEmbeddingModel,
		},
		LLM: LLMSettings{
			Provider: DefaultLLMProvider,
			Model:    DefaultLLMModel,
		},
		WhisperURL: DefaultWhisperURL,
	}
}

// Store loads and persists Settings as TOML.
type Store struct {
	configDir string
	filePath  string
}

// NewStore creates a settings store. If configDir is empty, defaults
// to ~/.dz.
func NewStore(configDir string) (*Store, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".dz")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &Store{
		configDir: configDir,
		filePath:  filepath.Join(configDir, "config.toml"),
	}, nil
}

// ConfigDir returns the configuration directory.
func (s *Store) ConfigDir() string {
	return s.configDir
}

// Load reads settings from disk, applying defaults for anything the
// file omits. A missing file yields pure defaults.
func (s *Store) Load() (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvFallbacks(settings)
			return settings, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	fillZeroDefaults(settings)
	applyEnvFallbacks(settings)
	return settings, nil
}

// Exists reports whether a config file is present on disk.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.filePath)
	return err == nil
}

// Save persists settings to disk with restricted permissions. Credentials
// pulled from the environment are not written back.
func (s *Store) Save(settings *Settings) error {
	out := *settings
	stripEnvCredentials(&out)

	data, err := toml.Marshal(&out)
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// DataDir resolves the catalog data directory for these settings.
func (s *Store) DataDir(settings *Settings) string {
	if settings.DataDir != "" {
		return settings.DataDir
	}
	return filepath.Join(s.configDir, "data")
}

// fillZeroDefaults restores defaults for fields the file left unset.
func fillZeroDefaults(settings *Settings) {
	defaults := DefaultSettings()
	if settings.ChunkBudget <= 0 {
		settings.ChunkBudget = defaults.ChunkBudget
	}
	if settings.ContextBudget <= 0 {
		settings.ContextBudget = defaults.ContextBudget
	}
	if settings.SessionCap <= 0 {
		settings.SessionCap = defaults.SessionCap
	}
	if settings.RetrieveK <= 0 {
		settings.RetrieveK = defaults.RetrieveK
	}
	if settings.Embedding.Provider == "" {
		settings.Embedding.Provider = defaults.Embedding.Provider
	}
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = defaults.Embedding.Model
	}
	if settings.LLM.Provider == "" {
		settings.LLM.Provider = defaults.LLM.Provider
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = defaults.LLM.Model
	}
	if settings.WhisperURL == "" {
		settings.WhisperURL = defaults.WhisperURL
	}
}

// stripEnvCredentials blanks credentials whose value came from the
// environment, the inverse of applyEnvFallbacks. The fallback restores
// them on the next Load.
func stripEnvCredentials(settings *Settings) {
	if settings.Embedding.APIKey != "" && settings.Embedding.APIKey == os.Getenv(EnvOpenAIKey) {
		settings.Embedding.APIKey = ""
	}
	if settings.LLM.APIKey != "" {
		switch settings.LLM.Provider {
		case "anthropic":
			if settings.LLM.APIKey == os.Getenv(EnvAnthropicKey) {
				settings.LLM.APIKey = ""
			}
		case "openai":
			if settings.LLM.APIKey == os.Getenv(EnvOpenAIKey) {
				settings.LLM.APIKey = ""
			}
		}
	}
	if settings.GitHubToken != "" && settings.GitHubToken == os.Getenv(EnvGitHubToken) {
		settings.GitHubToken = ""
	}
}

// applyEnvFallbacks fills empty credentials from the environment.
func applyEnvFallbacks(settings *Settings) {
	if settings.Embedding.APIKey == "" && settings.Embedding.Provider == "openai" {
		settings.Embedding.APIKey = os.Getenv(EnvOpenAIKey)
	}
	if settings.LLM.APIKey == "" {
		switch settings.LLM.Provider {
		case "anthropic":
			settings.LLM.APIKey = os.Getenv(EnvAnthropicKey)
		case "openai":
			settings.LLM.APIKey = os.Getenv(EnvOpenAIKey)
		}
	}
	if settings.GitHubToken == "" {
		settings.GitHubToken = os.Getenv(EnvGitHubToken)
	}
}
