package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driving"
	"github.com/custodia-labs/lorekeep/internal/logger"
	"github.com/custodia-labs/lorekeep/internal/normalisers"
)

var (
	ingestID       string
	ingestTitle    string
	ingestSource   string
	ingestKind     string
	ingestStrategy string
	ingestInclude  []string
	ingestExclude  []string
	ingestPathIDs  bool
	ingestNorm     bool
)

// registry extracts plain text from markup when --normalise is set.
var registry = normalisers.Default()

var ingestCmd = &cobra.Command{
	Use:   "ingest [path|-]...",
	Short: "Ingest text files, directories or stdin",
	Long: `Chunks each input, stores every chunk as a content-addressed object and
indexes it for search.

With --normalise, Markdown and HTML are reduced to plain text first and the
title is taken from the first heading or <title>. Citations then point into
the normalised text, not the file.

Directories are walked recursively; files are selected with --include and
--exclude globs. Use "-" to read a single document from stdin.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVar(&ingestID, "id", "", "document id (single input only)")
	f.StringVarP(&ingestTitle, "title", "t", "", "document title (single input only; default file name)")
	f.StringVar(&ingestSource, "source", "", "document source (single input only; default path)")
	f.StringVar(&ingestKind, "kind", "", "document kind (default from extension)")
	f.StringVarP(&ingestStrategy, "strategy", "s", "", "chunking strategy: fixed or paragraph")
	f.StringSliceVar(&ingestInclude, "include", nil, "glob of files to ingest from directories (repeatable)")
	f.StringSliceVar(&ingestExclude, "exclude", nil, "glob of files or directories to skip (repeatable)")
	f.BoolVar(&ingestPathIDs, "path-ids", false, "derive document ids from absolute file paths")
	f.BoolVar(&ingestNorm, "normalise", false, "strip Markdown and HTML markup before chunking")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	filter, err := newPathFilter(ingestInclude, ingestExclude)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	files, err := collectInputs(args, filter)
	if err != nil {
		return err
	}
	single := len(files) == 1
	if !single && (ingestID != "" || ingestTitle != "" || ingestSource != "") {
		return errors.New("--id, --title and --source apply to a single input")
	}

	docs := []domain.Document{}
	for _, path := range files {
		req, err := buildRequest(cmd, path)
		if err != nil {
			if single {
				return err
			}
			logger.Warn("skipping %s: %v", path, err)
			continue
		}
		if single {
			applyOverrides(&req)
		}

		doc, err := a.Store.Ingest(ctx, req)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		docs = append(docs, *doc)
	}

	if ok, err := structured(cmd, docs); ok {
		return err
	}
	for i := range docs {
		cmd.Printf("%s %s (%d chunks, %d bytes)\n",
			style(cmd, okStyle, "ingested"), docs[i].ID, docs[i].ChunkCount, docs[i].TotalBytes)
	}
	return nil
}

// collectInputs expands directories into the files the filter selects.
func collectInputs(args []string, filter *pathFilter) ([]string, error) {
	var files []string
	for _, arg := range args {
		if arg == "-" {
			files = append(files, arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(arg, path)
			if err != nil {
				return err
			}
			if d.IsDir() {
				if filter.skipDir(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() && filter.Match(rel) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return files, nil
}

// buildRequest reads one input into an ingest request.
func buildRequest(cmd *cobra.Command, path string) (domain.IngestRequest, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return domain.IngestRequest{}, err
	}
	if !utf8.Valid(data) {
		return domain.IngestRequest{}, fmt.Errorf("%w: not UTF-8 text", domain.ErrInvalidInput)
	}

	req := domain.IngestRequest{
		Text:     string(data),
		Strategy: ingestStrategy,
		Kind:     ingestKind,
	}
	if path == "-" {
		req.Source = "stdin"
		if req.Kind == "" {
			req.Kind = "text"
		}
	} else {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		req.Title = filepath.Base(path)
		req.Source = abs
		if req.Kind == "" {
			req.Kind = kindFor(path)
		}
		if ingestPathIDs {
			req.DocID = docIDForPath(abs)
		}
	}

	if ingestNorm {
		if err := normalise(&req, path, data); err != nil {
			return domain.IngestRequest{}, err
		}
	}
	return req, nil
}

// normalise replaces req.Text with the normalised text of data. A title
// found in the content replaces the file name.
func normalise(req *domain.IngestRequest, name string, data []byte) error {
	res, err := registry.Normalise(req.Kind, name, data)
	if err != nil {
		return err
	}
	req.Text = res.Text
	if res.Title != "" {
		req.Title = res.Title
	}
	if req.Metadata == nil {
		req.Metadata = map[string]any{}
	}
	req.Metadata["normalised_from"] = res.Format
	return nil
}

func applyOverrides(req *domain.IngestRequest) {
	if ingestID != "" {
		req.DocID = ingestID
	}
	if ingestTitle != "" {
		req.Title = ingestTitle
	}
	if ingestSource != "" {
		req.Source = ingestSource
	}
}

// kindFor classifies a file by extension.
func kindFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "markdown"
	case ".rst":
		return "restructuredtext"
	case ".org":
		return "org"
	case ".html", ".htm", ".xhtml":
		return "html"
	default:
		return "text"
	}
}

// docIDForPath derives a stable document id from an absolute path, so
// re-ingesting a file replaces its document instead of adding another.
func docIDForPath(abs string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(abs))).String()
}

// ingestFile ingests one file under its path-derived id.
func ingestFile(ctx context.Context, store driving.KnowledgeStore, path, strategy string, norm bool) (*domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: not UTF-8 text", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	req := domain.IngestRequest{
		DocID:    docIDForPath(abs),
		Title:    filepath.Base(path),
		Source:   abs,
		Kind:     kindFor(path),
		Text:     string(data),
		Strategy: strategy,
	}
	if norm {
		if err := normalise(&req, path, data); err != nil {
			return nil, err
		}
	}
	return store.Ingest(ctx, req)
}
