package browser

import (
	"context"
	"errors"
)

var (
	// ErrNoSuchElement indicates no element matched the locator.
	ErrNoSuchElement = errors.New("no such element")
	// ErrStaleElement indicates the element is no longer attached to the
	// document.
	ErrStaleElement = errors.New("stale element reference")
	// ErrInvalidSelector indicates the locator could not be compiled.
	ErrInvalidSelector = errors.New("invalid selector")
	// ErrTimeout indicates a wait condition was not met in time.
	ErrTimeout = errors.New("condition not met within timeout")
)

// Session is a live browser under automation.
type Session interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	Refresh(ctx context.Context) error

	Find(ctx context.Context, by By) (Element, error)
	FindAll(ctx context.Context, by By) ([]Element, error)

	// ExecuteScript runs JavaScript in the page and returns the script's
	// return value decoded from JSON.
	ExecuteScript(ctx context.Context, script string, args ...any) (any, error)

	// SwitchFrame switches the browsing context to a frame identified by
	// index (int), id/name (string), or an Element. A nil reference
	// selects the top-level context.
	SwitchFrame(ctx context.Context, reference any) error
	SwitchToDefaultContent(ctx context.Context) error

	// Screenshot returns a PNG of the current viewport.
	Screenshot(ctx context.Context) ([]byte, error)

	Close(ctx context.Context) error
}

// Element is a single element within a session.
type Element interface {
	Click(ctx context.Context) error
	Clear(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	Text(ctx context.Context) (string, error)
	TagName(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, error)
	Displayed(ctx context.Context) (bool, error)
	Enabled(ctx context.Context) (bool, error)
	Selected(ctx context.Context) (bool, error)

	Find(ctx context.Context, by By) (Element, error)
	FindAll(ctx context.Context, by By) ([]Element, error)
}
