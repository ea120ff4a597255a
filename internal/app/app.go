// Package app is the composition root: it turns settings into adapters and
// wires them into the store service.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/lorekeep/internal/adapters/driven/digest"
	"github.com/custodia-labs/lorekeep/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/lorekeep/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/lorekeep/internal/adapters/driven/lexical"
	"github.com/custodia-labs/lorekeep/internal/adapters/driven/metadata"
	"github.com/custodia-labs/lorekeep/internal/adapters/driven/objectstore"
	"github.com/custodia-labs/lorekeep/internal/adapters/driven/semantic"
	"github.com/custodia-labs/lorekeep/internal/adapters/driven/storage/badger"
	"github.com/custodia-labs/lorekeep/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/lorekeep/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lorekeep/internal/adapters/driven/storage/snapshot"
	"github.com/custodia-labs/lorekeep/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
	"github.com/custodia-labs/lorekeep/internal/core/services"
	"github.com/custodia-labs/lorekeep/internal/logger"
	"github.com/custodia-labs/lorekeep/internal/metrics"
	"github.com/custodia-labs/lorekeep/internal/postprocessors/chunker"
)

// TableStoreMeta records store-wide invariants that must not change
// between opens.
const TableStoreMeta = "store_meta"

const storeMetaVersion = 1

type storeMeta struct {
	Version int    `json:"version"`
	Digest  string `json:"digest"`
}

// App holds the opened store and the instruments shared with the CLI.
type App struct {
	Store    *services.Store
	Metrics  *metrics.Metrics
	Settings Settings
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}

// Open builds every component for settings. Partially loaded state is a
// warning unless AllowPartialLoad is false, in which case it is an error.
func Open(ctx context.Context, settings Settings) (app *App, err error) {
	logger.Section("Open")
	logger.Debug("dir=%s backend=%s digest=%s", settings.Dir, settings.Backend, settings.Digest)

	dg, err := digest.New(settings.Digest)
	if err != nil {
		return nil, err
	}

	if settings.Backend != BackendMemory {
		if err := os.MkdirAll(settings.Dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	tables, err := OpenTables(settings.Backend, settings.Dir)
	if err != nil {
		return nil, err
	}

	var backend driven.EmbeddingService
	defer func() {
		if err != nil {
			if backend != nil {
				backend.Close()
			}
			tables.Close()
		}
	}()

	if err := checkStoreMeta(ctx, tables, dg); err != nil {
		return nil, err
	}

	objects, err := objectstore.New(settings.Dir, dg)
	if err != nil {
		return nil, err
	}
	meta, err := metadata.Open(ctx, tables)
	if err != nil {
		return nil, err
	}
	lex, err := lexical.Open(ctx, tables)
	if err != nil {
		return nil, err
	}

	backend, err = NewEmbeddingBackend(settings.Semantic)
	if err != nil {
		// An unusable backend only disables semantic search.
		logger.Warn("embedding backend: %v", err)
		backend = nil
	}
	sem, err := semantic.Open(ctx, tables, backend, semanticOptions(settings.Semantic))
	if err != nil {
		return nil, err
	}

	chunkers := Chunkers(settings.Chunker)
	def, err := chunker.ParseStrategy(settings.Chunker.Strategy)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	store, err := services.NewStore(services.StoreDeps{
		Meta:           meta,
		Objects:        objects,
		Digest:         dg,
		Lexical:        lex,
		Semantic:       sem,
		Chunkers:       chunkers,
		DefaultChunker: string(def),
		Metrics:        m,
		Closer:         closers{backend, tables},
	})
	if err != nil {
		return nil, err
	}

	report := store.LoadReport()
	if report.Status() != domain.LoadClean {
		if !settings.AllowPartialLoad {
			return nil, report.Err()
		}
		logger.Warn("store opened with %s state: %v", report.Status(), report.Err())
	}

	return &App{Store: store, Metrics: m, Settings: settings}, nil
}

// OpenTables opens the named persistence backend rooted at dir.
func OpenTables(backend, dir string) (driven.TableStore, error) {
	switch backend {
	case "", BackendJSONFile:
		return jsonfile.New(dir)
	case BackendSQLite:
		return sqlite.NewStore(dir)
	case BackendBadger:
		return badger.Open(badger.DefaultConfig(dir))
	case BackendMemory:
		return memory.NewTableStore(), nil
	default:
		return nil, fmt.Errorf("%w: backend %q", domain.ErrUnsupportedType, backend)
	}
}

// NewEmbeddingBackend creates the configured embedding service, or nil
// when no provider is configured.
func NewEmbeddingBackend(s SemanticSettings) (driven.EmbeddingService, error) {
	switch s.Provider {
	case "", ProviderNone:
		return nil, nil
	case ProviderOllama:
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: s.BaseURL,
			Model:   s.Model,
			Timeout: s.Timeout,
		}), nil
	case ProviderOpenAI:
		env := s.APIKeyEnv
		if env == "" {
			env = DefaultAPIKeyEnv
		}
		return openai.NewEmbeddingService(openai.Config{
			APIKey:  os.Getenv(env),
			BaseURL: s.BaseURL,
			Model:   s.Model,
			Timeout: s.Timeout,
		})
	default:
		return nil, fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, s.Provider)
	}
}

// Chunkers builds one chunker per strategy from the shared settings.
func Chunkers(s ChunkerSettings) map[string]driven.Chunker {
	if s.Window > 0 && s.Overlap >= s.Window {
		logger.Warn("chunker overlap %d is not below window %d; windows will advance by their full length",
			s.Overlap, s.Window)
	}
	base := chunker.New(
		chunker.WithWindow(s.Window),
		chunker.WithOverlap(s.Overlap),
		chunker.WithMaxSize(s.MaxSize),
	)
	return map[string]driven.Chunker{
		string(chunker.StrategyFixed):     base,
		string(chunker.StrategyParagraph): base.With(chunker.WithStrategy(chunker.StrategyParagraph)),
	}
}

func semanticOptions(s SemanticSettings) semantic.Options {
	opts := semantic.Options{
		Timeout:   s.Timeout,
		RateLimit: s.RateLimit,
	}
	if s.Enabled != nil {
		opts.Override = &semantic.Settings{Enabled: *s.Enabled, Model: s.Model}
	}
	return opts
}

// checkStoreMeta pins the digest algorithm on first open and rejects a
// different one afterwards: every chunk id and object address depends on it.
func checkStoreMeta(ctx context.Context, tables driven.TableStore, dg driven.Digester) error {
	var m storeMeta
	found, err := snapshot.Load(ctx, tables, TableStoreMeta, &m)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrLoadFailed, TableStoreMeta, err)
	}
	if !found {
		return snapshot.Save(ctx, tables, TableStoreMeta, storeMeta{Version: storeMetaVersion, Digest: dg.Name()})
	}
	if m.Digest != dg.Name() {
		return fmt.Errorf("%w: store uses digest %q, configured %q", domain.ErrInvalidInput, m.Digest, dg.Name())
	}
	return nil
}

// closers closes every non-nil closer in order and joins the errors.
type closers []interface{ Close() error }

func (c closers) Close() error {
	var errs []error
	for _, cl := range c {
		if cl == nil {
			continue
		}
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
