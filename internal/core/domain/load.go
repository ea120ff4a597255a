package domain

import (
	"errors"
	"fmt"
)

// LoadStatus describes how completely persisted state was restored.
type LoadStatus string

// Load outcomes.
const (
	LoadClean   LoadStatus = "clean"
	LoadPartial LoadStatus = "partial"
	LoadFailed  LoadStatus = "failed"
)

// LoadProblem records one table that could not be restored.
type LoadProblem struct {
	Table string
	Err   error
}

// Error implements error.
func (p LoadProblem) Error() string {
	return fmt.Sprintf("%s: %v", p.Table, p.Err)
}

// Unwrap returns the underlying error.
func (p LoadProblem) Unwrap() error {
	return p.Err
}

// LoadReport is the result of restoring a component from disk.
// A component with a non-clean report keeps operating on whatever it
// could restore; the report makes the loss observable.
type LoadReport struct {
	Component string
	Tables    int
	Problems  []LoadProblem
}

// Add records a problem for table.
func (r *LoadReport) Add(table string, err error) {
	r.Problems = append(r.Problems, LoadProblem{Table: table, Err: err})
}

// Status classifies the report.
func (r LoadReport) Status() LoadStatus {
	switch {
	case len(r.Problems) == 0:
		return LoadClean
	case r.Tables > 0 && len(r.Problems) >= r.Tables:
		return LoadFailed
	default:
		return LoadPartial
	}
}

// Err returns nil for a clean load, otherwise an error wrapping
// ErrLoadFailed and every table problem.
func (r LoadReport) Err() error {
	if len(r.Problems) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Problems)+1)
	errs = append(errs, fmt.Errorf("%s %w (%s)", r.Component, ErrLoadFailed, r.Status()))
	for _, p := range r.Problems {
		errs = append(errs, p)
	}
	return errors.Join(errs...)
}

// Merge appends other's problems and table count into r.
func (r *LoadReport) Merge(other LoadReport) {
	r.Tables += other.Tables
	r.Problems = append(r.Problems, other.Problems...)
}
