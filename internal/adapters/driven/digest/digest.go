// Package digest provides the content hashes used for chunk ids and
// object addresses.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
)

// Algorithm names accepted by New.
const (
	SHA256  = "sha256"
	BLAKE2b = "blake2b"
)

// Default is the algorithm used when none is configured.
const Default = SHA256

var (
	_ driven.Digester = SHA256Digester{}
	_ driven.Digester = BLAKE2bDigester{}
)

// New returns the digester for name. An empty name selects Default.
func New(name string) (driven.Digester, error) {
	switch name {
	case "", SHA256:
		return SHA256Digester{}, nil
	case BLAKE2b:
		return BLAKE2bDigester{}, nil
	default:
		return nil, fmt.Errorf("digest %q: %w", name, domain.ErrUnsupportedType)
	}
}

// SHA256Digester hashes with SHA-256.
type SHA256Digester struct{}

// Name returns "sha256".
func (SHA256Digester) Name() string { return SHA256 }

// Sum returns the hex SHA-256 of data.
func (SHA256Digester) Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// BLAKE2bDigester hashes with BLAKE2b-256.
type BLAKE2bDigester struct{}

// Name returns "blake2b".
func (BLAKE2bDigester) Name() string { return BLAKE2b }

// Sum returns the hex BLAKE2b-256 of data.
func (BLAKE2bDigester) Sum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
