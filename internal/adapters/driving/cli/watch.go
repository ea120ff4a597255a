package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driving"
	"github.com/custodia-labs/lorekeep/internal/logger"
)

var (
	watchInclude  []string
	watchExclude  []string
	watchStrategy string
	watchDebounce time.Duration
	watchInitial  bool
	watchNorm     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]...",
	Short: "Keep the store in sync with directories",
	Long: `Watches directories recursively and re-ingests matching files when they
change. A file that disappears has its document forgotten. Documents use
ids derived from the file path, so edits replace the previous version.

Runs until interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.StringSliceVar(&watchInclude, "include", nil, "glob of files to ingest (repeatable)")
	f.StringSliceVar(&watchExclude, "exclude", nil, "glob of files or directories to skip (repeatable)")
	f.StringVarP(&watchStrategy, "strategy", "s", "", "chunking strategy: fixed or paragraph")
	f.DurationVar(&watchDebounce, "debounce", 250*time.Millisecond, "quiet period before applying changes")
	f.BoolVar(&watchInitial, "initial", true, "ingest existing files before watching")
	f.BoolVar(&watchNorm, "normalise", false, "strip Markdown and HTML markup before chunking")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	filter, err := newPathFilter(watchInclude, watchExclude)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	w := &dirWatcher{store: a.Store, filter: filter, strategy: watchStrategy, normalise: watchNorm, fsw: fsw}
	ctx := cmd.Context()

	for _, dir := range args {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		w.roots = append(w.roots, abs)
		if err := w.addTree(ctx, abs, watchInitial); err != nil {
			return err
		}
	}

	cmd.Printf("Watching %s\n", strings.Join(w.roots, ", "))
	return w.run(ctx, watchDebounce, func(path string, doc *domain.Document, forgotten bool) {
		switch {
		case forgotten:
			cmd.Printf("%s %s\n", style(cmd, warnStyle, "forgot"), path)
		case doc != nil:
			cmd.Printf("%s %s (%d chunks)\n", style(cmd, okStyle, "ingested"), path, doc.ChunkCount)
		}
	})
}

// dirWatcher mirrors watched files into the store. Pending changes are
// keyed by path and applied after a quiet period, so an editor's
// write-rename-create sequence collapses into one update.
type dirWatcher struct {
	store     driving.KnowledgeStore
	filter    *pathFilter
	strategy  string
	normalise bool
	roots     []string
	fsw       *fsnotify.Watcher
}

type reportFunc func(path string, doc *domain.Document, forgotten bool)

func (w *dirWatcher) run(ctx context.Context, debounce time.Duration, report reportFunc) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case <-timer.C:
			for path := range pending {
				doc, forgotten, err := w.apply(ctx, path)
				if err != nil {
					logger.Warn("watch: %s: %v", path, err)
					continue
				}
				report(path, doc, forgotten)
			}
			clear(pending)
		}
	}
}

// apply brings the store in line with the current state of path: an
// existing matching file is ingested, a missing one is forgotten and a new
// directory is watched.
func (w *dirWatcher) apply(ctx context.Context, path string) (*domain.Document, bool, error) {
	rel, ok := w.relative(path)
	if !ok {
		return nil, false, nil
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		if !w.filter.Match(rel) {
			return nil, false, nil
		}
		abs, _ := filepath.Abs(path)
		res, err := w.store.Forget(ctx, docIDForPath(abs), "file removed")
		if err != nil {
			return nil, false, err
		}
		return nil, res.Found(), nil
	}
	if err != nil {
		return nil, false, err
	}

	if info.IsDir() {
		if w.filter.skipDir(rel) {
			return nil, false, nil
		}
		return nil, false, w.addTree(ctx, path, true)
	}
	if !info.Mode().IsRegular() || !w.filter.Match(rel) {
		return nil, false, nil
	}

	doc, err := ingestFile(ctx, w.store, path, w.strategy, w.normalise)
	return doc, false, err
}

// addTree watches dir and its subdirectories, optionally ingesting the
// matching files already present.
func (w *dirWatcher) addTree(ctx context.Context, dir string, ingest bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, ok := w.relative(path)
		if !ok {
			return nil
		}
		if d.IsDir() {
			if w.filter.skipDir(rel) {
				return filepath.SkipDir
			}
			if w.fsw != nil {
				if err := w.fsw.Add(path); err != nil {
					return fmt.Errorf("watching %s: %w", path, err)
				}
			}
			return nil
		}
		if !ingest || !d.Type().IsRegular() || !w.filter.Match(rel) {
			return nil
		}
		if _, err := ingestFile(ctx, w.store, path, w.strategy, w.normalise); err != nil {
			logger.Warn("watch: %s: %v", path, err)
		}
		return nil
	})
}

// relative returns path relative to the watch root containing it.
func (w *dirWatcher) relative(path string) (string, bool) {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return rel, true
		}
	}
	return "", false
}
