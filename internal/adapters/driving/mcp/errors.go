// Package mcp serves the knowledge store over the Model Context Protocol.
// An answering agent uses it to search, fetch cited evidence packs and write
// facts and summaries back.
package mcp

import "errors"

// ErrMissingRetriever is returned when the retriever is not provided.
var ErrMissingRetriever = errors.New("mcp: retriever is required")
