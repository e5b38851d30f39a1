// Package ui provides the Bubble Tea TUI for hnreader.
package ui

import (
	"time"

	"github.com/abelbrown/hnreader/internal/work"
)

// frameInterval is how often the pending fetch result is reconciled.
const frameInterval = 100 * time.Millisecond

// frameTick drives the per-frame reconcile.
type frameTick time.Time

// workEventMsg carries a work pool event to the status bar.
type workEventMsg work.Event

// linkOpened is sent after an attempt to open a URL in the browser.
type linkOpened struct {
	URL string
	Err error
}

// linkCopied is sent after an attempt to copy a URL to the clipboard.
type linkCopied struct {
	URL string
	Err error
}
