// Package mcp provides an MCP (Model Context Protocol) server adapter for
// wallapocket. It lets AI assistants list, save and manage read-later articles.
package mcp

import "errors"

var (
	// ErrMissingSyncEngine is returned when the sync engine is not provided.
	ErrMissingSyncEngine = errors.New("mcp: sync engine is required")

	// ErrMissingActionService is returned when the action service is not provided.
	ErrMissingActionService = errors.New("mcp: action service is required")
)
