// Package normalisers provides the Normaliser implementations that turn
// markup files into the plain text the store chunks. Each normaliser knows
// the document kinds it handles.
//
// Normalisers are registered with a Registry; Default registers them all.
package normalisers
