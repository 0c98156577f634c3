package mcp

import (
	"github.com/custodia-labs/wallapocket/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Sync owns the article collection.
	Sync driving.SyncEngine

	// Actions runs per-article mutations.
	Actions driving.ActionService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Sync == nil {
		return ErrMissingSyncEngine
	}
	if p.Actions == nil {
		return ErrMissingActionService
	}
	return nil
}
