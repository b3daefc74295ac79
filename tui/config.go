package tui

import "time"

type Options struct {
	// Root is scanned as soon as the UI starts; empty opens the root selector.
	Root      string
	Threshold int64

	ReplaceHomeWithTilde bool
	// RefreshInterval debounces table redraws while results stream in.
	RefreshInterval time.Duration
	Theme           string
}

const defaultRefreshInterval = 250 * time.Millisecond
