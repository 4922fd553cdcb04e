//go:build !cgo

// Package tsdecl parses TypeScript declaration source (.d.ts) into a
// normalized declaration surface using tree-sitter.
// This stub is used when CGO is not available.
package tsdecl

import (
	"apidelta/internal/surface"
)

// Parser extracts declaration surfaces from TypeScript source.
// This is a stub implementation when CGO is not available.
type Parser struct{}

// NewParser creates a TypeScript declaration parser.
func NewParser() *Parser {
	return &Parser{}
}

// IsAvailable returns whether tree-sitter parsing is available.
func IsAvailable() bool {
	return false
}

// Parse records that parsing is unavailable and returns an empty module.
func (p *Parser) Parse(source, filename string) *surface.Module {
	mod := surface.NewModule(filename)
	mod.AddError("typescript parsing requires a cgo-enabled build")
	return mod
}
