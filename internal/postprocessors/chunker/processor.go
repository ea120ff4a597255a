// Package chunker provides the text chunking strategies used at ingest:
// fixed-size byte windows with overlap, and blank-line paragraph packing.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
	"github.com/custodia-labs/lorekeep/internal/core/ports/driven"
)

// Strategy names a chunking strategy.
type Strategy string

// Supported strategies.
const (
	StrategyFixed     Strategy = "fixed"
	StrategyParagraph Strategy = "paragraph"
)

// ParseStrategy validates a strategy name. The empty string selects fixed.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyFixed:
		return StrategyFixed, nil
	case StrategyParagraph:
		return StrategyParagraph, nil
	default:
		return "", fmt.Errorf("%w: chunk strategy %q", domain.ErrInvalidInput, s)
	}
}

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits text with one configured strategy.
type Processor struct {
	strategy Strategy
	window   int
	overlap  int
	maxSize  int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithStrategy selects the chunking strategy.
func WithStrategy(s Strategy) Option {
	return func(p *Processor) {
		if s != "" {
			p.strategy = s
		}
	}
}

// WithWindow sets the fixed-size window in bytes.
func WithWindow(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.window = size
		}
	}
}

// WithOverlap sets the overlap between fixed-size windows in bytes.
// An overlap at or above the window is allowed; progress is still made.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithMaxSize sets the paragraph chunk size in bytes.
func WithMaxSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.maxSize = size
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		strategy: StrategyFixed,
		window:   DefaultWindow,
		overlap:  DefaultOverlap,
		maxSize:  DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the strategy name.
func (p *Processor) Name() string {
	return string(p.strategy)
}

// With returns a copy of the processor with opts applied.
func (p *Processor) With(opts ...Option) *Processor {
	cp := *p
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// Split splits text with the configured strategy.
func (p *Processor) Split(text string) []domain.Span {
	if p.strategy == StrategyParagraph {
		return Paragraphs(text, p.maxSize)
	}
	return FixedSize(text, p.window, p.overlap)
}

// Verify checks the accounting invariants of spans: each Length equals the
// byte length of its Text and offsets never decrease.
func Verify(spans []domain.Span) error {
	prev := 0
	for i, s := range spans {
		if s.Length != len(s.Text) {
			return fmt.Errorf("%w: span %d has length %d for %d bytes", domain.ErrChunkAccounting, i, s.Length, len(s.Text))
		}
		if s.Offset < prev {
			return fmt.Errorf("%w: span %d offset %d precedes %d", domain.ErrChunkAccounting, i, s.Offset, prev)
		}
		prev = s.Offset
	}
	return nil
}
