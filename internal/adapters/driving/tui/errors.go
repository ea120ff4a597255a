package tui

import "errors"

// ErrMissingRetriever is returned when the retriever is not provided.
var ErrMissingRetriever = errors.New("tui: retriever is required")

// ErrMissingStore is returned when the knowledge store is not provided.
var ErrMissingStore = errors.New("tui: knowledge store is required")
