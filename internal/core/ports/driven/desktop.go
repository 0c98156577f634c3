package driven

// Desktop hands article links to the user's desktop session.
type Desktop interface {
	// CopyText places text on the system clipboard.
	CopyText(text string) error

	// OpenURL opens url with the default handler, usually a browser.
	OpenURL(url string) error
}
