// Package services implements the driving port interfaces.
//
// Store is the facade over the object store, metadata index, lexical index
// and optional semantic index; Retriever runs keyword, lexical and hybrid
// searches over it and assembles evidence packs. Services reach
// infrastructure only through the driven ports.
package services
