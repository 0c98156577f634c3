package domain

import "time"

// EventKind identifies what an Event tells the UI.
type EventKind string

// Event kinds emitted by the core.
const (
	// EventArticlesChanged carries the full current collection.
	EventArticlesChanged EventKind = "articles_changed"
	// EventNewArticle carries one article discovered by an incremental pass.
	EventNewArticle EventKind = "new_article"
	// EventOperationFailed carries a FailureKind and the error.
	EventOperationFailed EventKind = "operation_failed"
	// EventInfo carries a short informational message.
	EventInfo EventKind = "info"
)

// FailureKind classifies a failed operation for the user-facing message.
type FailureKind string

// Failure kinds.
const (
	FailureFetch  FailureKind = "fetch"
	FailureSave   FailureKind = "save"
	FailureDelete FailureKind = "delete"
	FailureRename FailureKind = "rename"
	FailureToggle FailureKind = "toggle"
	FailureCopy   FailureKind = "copy"
)

// Message returns the user-facing text for the failure.
func (k FailureKind) Message() string {
	switch k {
	case FailureFetch:
		return "Failed to fetch articles"
	case FailureSave:
		return "Failed to save article"
	case FailureDelete:
		return "Failed to delete article"
	case FailureRename:
		return "Failed to update title"
	case FailureToggle:
		return "Failed to update article"
	case FailureCopy:
		return "Failed to copy URL"
	default:
		return "Operation failed"
	}
}

// Event is a notification from the core to the UI collaborator.
type Event struct {
	// ID uniquely identifies the event so a UI can replace or dismiss it.
	ID   string
	Kind EventKind
	At   time.Time

	// Articles is set for EventArticlesChanged.
	Articles []Article
	// Article is set for EventNewArticle.
	Article *Article

	// Failure and Err are set for EventOperationFailed.
	Failure FailureKind
	Err     error

	// Message is set for EventInfo.
	Message string
}

// SyncResult summarises one sync pass.
type SyncResult struct {
	Forced  bool
	Added   []Article
	Removed []Article
	// Changed is true when the UI should re-render.
	Changed bool
	// Cursor is the cursor committed by the pass.
	Cursor time.Time
}
