// Package objectstore provides a content-addressed, file-backed store of
// immutable records.
//
// Layout: <root>/objects/<hash[0:2]>/<hash>. Each file holds the canonical
// JSON encoding of one record (keys sorted, no whitespace). The hash is the
// digest of exactly those bytes, so integrity is checked by rehashing the
// file. Objects are never rewritten or removed.
package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
	"github.com/custodia-labs/lorekeep/internal/fsutil"
	"github.com/custodia-labs/lorekeep/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ObjectStore = (*Store)(nil)

// Dir is the object directory name under the store root.
const Dir = "objects"

// Store is a content-addressed object store on the local filesystem.
// It is safe for concurrent use: objects are immutable and every write
// is a temp-file rename.
type Store struct {
	root   string
	digest driven.Digester
}

// New creates a store rooted at <root>/objects.
func New(root string, digest driven.Digester) (*Store, error) {
	if digest == nil {
		return nil, fmt.Errorf("objectstore: digester is required: %w", domain.ErrInvalidInput)
	}
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating object directory: %w", err)
	}
	return &Store{root: dir, digest: digest}, nil
}

// Canonical returns the deterministic encoding of record: object keys
// sorted at every level, no insignificant whitespace, no HTML escaping.
func Canonical(record driven.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record); err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Put stores record and returns its hash. Identical content is written once.
func (s *Store) Put(_ context.Context, record driven.Record) (string, error) {
	data, err := Canonical(record)
	if err != nil {
		return "", err
	}
	hash := s.digest.Sum(data)

	path := s.path(hash)
	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}

	if err := fsutil.WriteFileAtomic(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing object %s: %w", hash, err)
	}
	return hash, nil
}

// Get returns the record at hash. Corrupted objects are reported as not found.
func (s *Store) Get(_ context.Context, hash string) (driven.Record, error) {
	if !validHash(hash) {
		return nil, domain.ErrNotFound
	}
	data, err := os.ReadFile(s.path(hash))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading object %s: %w", hash, err)
	}

	if s.digest.Sum(data) != hash {
		logger.Warn("object %s failed integrity check; treating as missing", hash)
		return nil, domain.ErrNotFound
	}

	var record driven.Record
	if err := json.Unmarshal(data, &record); err != nil {
		logger.Warn("object %s could not be decoded: %v", hash, err)
		return nil, domain.ErrNotFound
	}
	return record, nil
}

// Exists reports whether an object file exists at hash.
func (s *Store) Exists(_ context.Context, hash string) bool {
	if !validHash(hash) {
		return false
	}
	_, err := os.Stat(s.path(hash))
	return err == nil
}

// VerifyIntegrity rehashes the stored bytes and checks they still decode.
func (s *Store) VerifyIntegrity(_ context.Context, hash string) bool {
	if !validHash(hash) {
		return false
	}
	data, err := os.ReadFile(s.path(hash))
	if err != nil {
		return false
	}
	if s.digest.Sum(data) != hash {
		return false
	}
	return json.Valid(data)
}

// List returns every stored hash in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var hashes []string
	err := s.walk(ctx, func(hash string, _ fs.FileInfo) {
		hashes = append(hashes, hash)
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(hashes)
	return hashes, nil
}

// Stats returns the object count and total stored bytes.
func (s *Store) Stats(ctx context.Context) (domain.ObjectStats, error) {
	var stats domain.ObjectStats
	err := s.walk(ctx, func(_ string, info fs.FileInfo) {
		stats.Count++
		stats.TotalBytes += info.Size()
	})
	return stats, err
}

// Root returns the object directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the file path for hash. Exposed for integrity tooling and tests.
func (s *Store) Path(hash string) string {
	return s.path(hash)
}

func (s *Store) path(hash string) string {
	return filepath.Join(s.root, hash[:2], hash)
}

// walk visits every object file, skipping temp files and foreign names.
func (s *Store) walk(ctx context.Context, visit func(hash string, info fs.FileInfo)) error {
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if fsutil.IsTemp(name) || !validHash(name) {
			return nil
		}
		if filepath.Base(filepath.Dir(path)) != name[:2] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		visit(name, info)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking objects: %w", err)
	}
	return nil
}

// validHash accepts lowercase hex of at least three characters, which also
// rules out path separators and dot segments.
func validHash(hash string) bool {
	if len(hash) < 3 {
		return false
	}
	for i := 0; i < len(hash); i++ {
		c := hash[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
