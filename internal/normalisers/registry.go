package normalisers

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
	"github.com/custodia-labs/lorekeep/internal/normalisers/html"
	"github.com/custodia-labs/lorekeep/internal/normalisers/markdown"
	"github.com/custodia-labs/lorekeep/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches on document kind.
type Registry struct {
	byKind map[string]driven.Normaliser
}

// NewRegistry creates a registry holding the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{byKind: make(map[string]driven.Normaliser)}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Default returns a registry with every built-in normaliser.
func Default() *Registry {
	return NewRegistry(plaintext.New(), markdown.New(), html.New())
}

// Register adds a normaliser for each of its kinds.
func (r *Registry) Register(n driven.Normaliser) {
	for _, kind := range n.Kinds() {
		r.byKind[kind] = n
	}
}

// Normalise runs the normaliser registered for kind.
func (r *Registry) Normalise(kind, name string, data []byte) (*driven.NormaliseResult, error) {
	n, ok := r.byKind[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no normaliser for kind %q", domain.ErrUnsupportedType, kind)
	}
	return n.Normalise(name, data)
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.byKind))
	for k := range r.byKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
