// Package page layers higher-level interactions over a browser
// session: locator parsing, implicit waits, select handling and
// script-driven actions. Scenario steps execute through a Page rather
// than touching the wire session directly.
package page

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/uispec/uispec/packages/browser"
)

// Page drives one browser session with implicit waits.
type Page struct {
	session  browser.Session
	timeout  time.Duration
	interval time.Duration
	logger   *slog.Logger
}

// Option configures a Page.
type Option func(*Page)

// WithTimeout sets the default wait timeout for element interactions.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Page) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithPollInterval sets the pacing between wait polls.
func WithPollInterval(interval time.Duration) Option {
	return func(p *Page) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Page) {
		p.logger = logger
	}
}

// New wraps a session.
func New(session browser.Session, opts ...Option) *Page {
	p := &Page{
		session:  session,
		timeout:  browser.DefaultWaitTimeout,
		interval: browser.DefaultPollInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Session exposes the underlying session, mainly for screenshots.
func (p *Page) Session() browser.Session {
	return p.session
}

// NavigateTo loads a URL and waits for the document to finish loading.
func (p *Page) NavigateTo(ctx context.Context, url string) error {
	p.logger.Debug("navigate", "url", url)
	if err := p.session.Navigate(ctx, url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return p.WaitForPageLoad(ctx)
}

// Find waits for the element to become visible and returns it.
func (p *Page) Find(ctx context.Context, locator string) (browser.Element, error) {
	by, err := browser.ParseLocator(locator)
	if err != nil {
		return nil, err
	}
	if err := browser.WaitUntil(ctx, browser.Visible(p.session, by), p.timeout, p.interval); err != nil {
		return nil, fmt.Errorf("find %q: %w", locator, err)
	}
	return p.session.Find(ctx, by)
}

// Click waits for the element to be clickable and clicks it.
func (p *Page) Click(ctx context.Context, locator string) error {
	by, err := browser.ParseLocator(locator)
	if err != nil {
		return err
	}
	if err := browser.WaitUntil(ctx, browser.Clickable(p.session, by), p.timeout, p.interval); err != nil {
		return fmt.Errorf("click %q: %w", locator, err)
	}
	el, err := p.session.Find(ctx, by)
	if err != nil {
		return fmt.Errorf("click %q: %w", locator, err)
	}
	return el.Click(ctx)
}

// TypeText clears the element and types text into it.
func (p *Page) TypeText(ctx context.Context, locator, text string) error {
	el, err := p.Find(ctx, locator)
	if err != nil {
		return err
	}
	if err := el.Clear(ctx); err != nil {
		return fmt.Errorf("clear %q: %w", locator, err)
	}
	if err := el.SendKeys(ctx, text); err != nil {
		return fmt.Errorf("type into %q: %w", locator, err)
	}
	return nil
}

// PressKey sends a single key to the element. Friendly names like
// "enter" or "tab" resolve to their W3C codepoints.
func (p *Page) PressKey(ctx context.Context, locator, key string) error {
	el, err := p.Find(ctx, locator)
	if err != nil {
		return err
	}
	if err := el.SendKeys(ctx, browser.Key(key)); err != nil {
		return fmt.Errorf("press %q on %q: %w", key, locator, err)
	}
	return nil
}

// ClearText clears an editable element.
func (p *Page) ClearText(ctx context.Context, locator string) error {
	el, err := p.Find(ctx, locator)
	if err != nil {
		return err
	}
	return el.Clear(ctx)
}

// GetText returns the element's rendered text.
func (p *Page) GetText(ctx context.Context, locator string) (string, error) {
	el, err := p.Find(ctx, locator)
	if err != nil {
		return "", err
	}
	return el.Text(ctx)
}

// IsElementPresent reports presence without waiting.
func (p *Page) IsElementPresent(ctx context.Context, locator string) (bool, error) {
	by, err := browser.ParseLocator(locator)
	if err != nil {
		return false, err
	}
	elements, err := p.session.FindAll(ctx, by)
	if err != nil {
		return false, err
	}
	return len(elements) > 0, nil
}

// WaitForVisible blocks until the element is displayed.
func (p *Page) WaitForVisible(ctx context.Context, locator string, timeout time.Duration) error {
	by, err := browser.ParseLocator(locator)
	if err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = p.timeout
	}
	if err := browser.WaitUntil(ctx, browser.Visible(p.session, by), timeout, p.interval); err != nil {
		return fmt.Errorf("wait for %q visible: %w", locator, err)
	}
	return nil
}

// WaitForClickable blocks until the element is displayed and enabled.
func (p *Page) WaitForClickable(ctx context.Context, locator string, timeout time.Duration) error {
	by, err := browser.ParseLocator(locator)
	if err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = p.timeout
	}
	if err := browser.WaitUntil(ctx, browser.Clickable(p.session, by), timeout, p.interval); err != nil {
		return fmt.Errorf("wait for %q clickable: %w", locator, err)
	}
	return nil
}

// WaitForPageLoad blocks until document.readyState is complete.
func (p *Page) WaitForPageLoad(ctx context.Context) error {
	if err := browser.WaitUntil(ctx, browser.PageLoaded(p.session), p.timeout, p.interval); err != nil {
		return fmt.Errorf("wait for page load: %w", err)
	}
	return nil
}

// WaitForTitle blocks until the title equals or contains the given
// strings.
func (p *Page) WaitForTitle(ctx context.Context, equals, contains string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = p.timeout
	}
	if err := browser.WaitUntil(ctx, browser.TitleMatches(p.session, equals, contains), timeout, p.interval); err != nil {
		return fmt.Errorf("wait for title: %w", err)
	}
	return nil
}

// Title returns the current document title.
func (p *Page) Title(ctx context.Context) (string, error) {
	return p.session.Title(ctx)
}

// CurrentURL returns the current URL.
func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	return p.session.CurrentURL(ctx)
}

// Refresh reloads the page and waits for it to finish loading.
func (p *Page) Refresh(ctx context.Context) error {
	if err := p.session.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	return p.WaitForPageLoad(ctx)
}

// SelectByVisibleText picks the option of a select element whose
// rendered text equals the given text.
func (p *Page) SelectByVisibleText(ctx context.Context, locator, text string) error {
	sel, err := p.Find(ctx, locator)
	if err != nil {
		return err
	}
	options, err := sel.FindAll(ctx, byTag("option"))
	if err != nil {
		return fmt.Errorf("select %q: %w", locator, err)
	}
	for _, option := range options {
		optionText, err := option.Text(ctx)
		if err != nil {
			return err
		}
		if strings.TrimSpace(optionText) == text {
			return option.Click(ctx)
		}
	}
	return fmt.Errorf("select %q: %w: no option with text %q", locator, browser.ErrNoSuchElement, text)
}

// SelectByValue picks the option of a select element whose value
// attribute equals the given value.
func (p *Page) SelectByValue(ctx context.Context, locator, value string) error {
	sel, err := p.Find(ctx, locator)
	if err != nil {
		return err
	}
	options, err := sel.FindAll(ctx, byTag("option"))
	if err != nil {
		return fmt.Errorf("select %q: %w", locator, err)
	}
	for _, option := range options {
		optionValue, err := option.Attribute(ctx, "value")
		if err != nil {
			return err
		}
		if optionValue == value {
			return option.Click(ctx)
		}
	}
	return fmt.Errorf("select %q: %w: no option with value %q", locator, browser.ErrNoSuchElement, value)
}

func byTag(tag string) browser.By {
	return browser.By{Using: browser.ByTagName, Value: tag}
}

// hoverScript dispatches a synthetic mouseover at the element.
const hoverScript = `arguments[0].dispatchEvent(new MouseEvent('mouseover', {bubbles: true, cancelable: true, view: window}));`

// Hover moves pointer focus onto the element via a synthetic event.
func (p *Page) Hover(ctx context.Context, locator string) error {
	el, err := p.Find(ctx, locator)
	if err != nil {
		return err
	}
	if _, err := p.session.ExecuteScript(ctx, hoverScript, el); err != nil {
		return fmt.Errorf("hover %q: %w", locator, err)
	}
	return nil
}

// ExecuteScript runs JavaScript in the current browsing context.
func (p *Page) ExecuteScript(ctx context.Context, script string, args ...any) (any, error) {
	return p.session.ExecuteScript(ctx, script, args...)
}

// SwitchToFrame switches into a frame by index, id/name or element.
func (p *Page) SwitchToFrame(ctx context.Context, reference any) error {
	return p.session.SwitchFrame(ctx, reference)
}

// SwitchToDefaultContent returns to the top-level browsing context.
func (p *Page) SwitchToDefaultContent(ctx context.Context) error {
	return p.session.SwitchToDefaultContent(ctx)
}
