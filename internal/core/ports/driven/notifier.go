package driven

import "github.com/custodia-labs/wallapocket/internal/core/domain"

// Notifier delivers core events to the UI collaborator.
// Notify must not block for long; it is called from the sync path.
type Notifier interface {
	Notify(event domain.Event)
}

// NopNotifier discards every event.
type NopNotifier struct{}

// Notify does nothing.
func (NopNotifier) Notify(domain.Event) {}
