// Package plaintext cleans up text files that carry no markup worth removing.
package plaintext

import (
	"strings"

	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Kinds returns the document kinds this normaliser handles.
func (n *Normaliser) Kinds() []string {
	return []string{"text", "restructuredtext", "org"}
}

// Normalise drops a byte order mark and converts line endings to "\n".
// Lightweight markup such as reStructuredText is left as written.
func (n *Normaliser) Normalise(_ string, data []byte) (*driven.NormaliseResult, error) {
	content := strings.TrimPrefix(string(data), "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return &driven.NormaliseResult{
		Text:   content,
		Format: "text",
	}, nil
}
