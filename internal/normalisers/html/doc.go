// Package html strips HTML markup down to readable text.
package html
