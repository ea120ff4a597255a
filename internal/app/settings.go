package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/lorekeep/internal/adapters/driven/digest"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
	"github.com/custodia-labs/lorekeep/internal/postprocessors/chunker"
)

// Backend names accepted by store.backend.
const (
	BackendJSONFile = "jsonfile"
	BackendSQLite   = "sqlite"
	BackendBadger   = "badger"
	BackendMemory   = "memory"
)

// Embedding providers accepted by semantic.provider.
const (
	ProviderNone   = "none"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// DefaultAPIKeyEnv names the environment variable holding the OpenAI key.
const DefaultAPIKeyEnv = "OPENAI_API_KEY"

// Settings is the resolved configuration of one store.
type Settings struct {
	Dir              string
	Backend          string
	Digest           string
	AllowPartialLoad bool

	Chunker  ChunkerSettings
	Semantic SemanticSettings
}

// ChunkerSettings configures the default chunker.
type ChunkerSettings struct {
	Strategy string
	Window   int
	Overlap  int
	MaxSize  int
}

// SemanticSettings configures the embedding backend and semantic index.
type SemanticSettings struct {
	// Enabled overrides the persisted index setting when non-nil.
	Enabled *bool

	Provider  string
	Model     string
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
	RateLimit float64
}

// DefaultDir returns ~/.lorekeep/store, or a relative .lorekeep when the
// home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lorekeep"
	}
	return filepath.Join(home, ".lorekeep", "store")
}

// DefaultSettings returns the settings used for keys absent from config.
func DefaultSettings() Settings {
	return Settings{
		Dir:              DefaultDir(),
		Backend:          BackendJSONFile,
		Digest:           digest.SHA256,
		AllowPartialLoad: true,
		Chunker: ChunkerSettings{
			Strategy: string(chunker.StrategyFixed),
			Window:   chunker.DefaultWindow,
			Overlap:  chunker.DefaultOverlap,
			MaxSize:  chunker.DefaultMaxSize,
		},
		Semantic: SemanticSettings{
			Provider:  ProviderNone,
			APIKeyEnv: DefaultAPIKeyEnv,
		},
	}
}

// LoadSettings reads settings from cfg, falling back to DefaultSettings
// for every missing key.
func LoadSettings(cfg driven.ConfigStore) Settings {
	s := DefaultSettings()
	if cfg == nil {
		return s
	}

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(cfg.GetString(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if _, ok := cfg.Get(key); ok {
			*dst = cfg.GetInt(key)
		}
	}

	str("store.dir", &s.Dir)
	str("store.backend", &s.Backend)
	str("store.digest", &s.Digest)
	if _, ok := cfg.Get("store.allow_partial_load"); ok {
		s.AllowPartialLoad = cfg.GetBool("store.allow_partial_load")
	}

	str("chunker.strategy", &s.Chunker.Strategy)
	num("chunker.window", &s.Chunker.Window)
	num("chunker.overlap", &s.Chunker.Overlap)
	num("chunker.max_size", &s.Chunker.MaxSize)

	if _, ok := cfg.Get("semantic.enabled"); ok {
		enabled := cfg.GetBool("semantic.enabled")
		s.Semantic.Enabled = &enabled
	}
	str("semantic.provider", &s.Semantic.Provider)
	str("semantic.model", &s.Semantic.Model)
	str("semantic.base_url", &s.Semantic.BaseURL)
	str("semantic.api_key_env", &s.Semantic.APIKeyEnv)
	if secs := cfg.GetInt("semantic.timeout_seconds"); secs > 0 {
		s.Semantic.Timeout = time.Duration(secs) * time.Second
	}
	if _, ok := cfg.Get("semantic.rate_limit"); ok {
		s.Semantic.RateLimit = cfg.GetFloat("semantic.rate_limit")
	}

	s.Dir = expandHome(s.Dir)
	s.Backend = strings.ToLower(s.Backend)
	s.Semantic.Provider = strings.ToLower(s.Semantic.Provider)
	return s
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
