// Package file provides the TOML-backed configuration store.
//
// The file is read once at construction. Nested tables are flattened into
// dot-notation keys ([semantic] model = "x" becomes "semantic.model") and
// expanded back into tables when written.
package file
