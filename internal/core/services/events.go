package services

import (
	"github.com/google/uuid"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driven"
)

// emitter stamps events with an ID and time before handing them to the
// notifier.
type emitter struct {
	notifier driven.Notifier
	clock    driven.Clock
}

func (e emitter) emit(event domain.Event) {
	if e.notifier == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.At.IsZero() {
		event.At = e.clock.Now()
	}
	e.notifier.Notify(event)
}

// failed reports an operation failure. Failures are never filtered.
func (e emitter) failed(kind domain.FailureKind, err error) {
	e.emit(domain.Event{
		Kind:    domain.EventOperationFailed,
		Failure: kind,
		Err:     err,
		Message: kind.Message(),
	})
}
