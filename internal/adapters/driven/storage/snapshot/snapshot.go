// Package snapshot reads and writes JSON table snapshots through a driven.TableStore.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
)

// Load decodes table into v. It reports found=false, with no error, for a
// table that has never been saved.
func Load(ctx context.Context, store driven.TableStore, table string, v any) (bool, error) {
	data, err := store.Load(ctx, table)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decoding: %w", err)
	}
	return true, nil
}

// Save encodes v and replaces table with it.
func Save(ctx context.Context, store driven.TableStore, table string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding table %s: %w", table, err)
	}
	if err := store.Save(ctx, table, data); err != nil {
		return fmt.Errorf("persisting table %s: %w", table, err)
	}
	return nil
}
