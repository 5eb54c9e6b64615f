// Package browsertest provides an in-memory browser.Session for tests.
package browsertest

import (
	"context"
	"fmt"
	"strings"

	"github.com/uispec/uispec/packages/browser"
)

// FakeElement is a scripted element.
type FakeElement struct {
	TextValue  string
	Tag        string
	Attrs      map[string]string
	IsHidden   bool
	IsDisabled bool
	IsSelected bool
	Children   []*FakeElement

	ClickCount int
	ClearCount int
	Typed      []string
	ClickErr   error
}

var _ browser.Element = (*FakeElement)(nil)

func (e *FakeElement) Click(ctx context.Context) error {
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.ClickCount++
	return nil
}

func (e *FakeElement) Clear(ctx context.Context) error {
	e.ClearCount++
	return nil
}

func (e *FakeElement) SendKeys(ctx context.Context, text string) error {
	e.Typed = append(e.Typed, text)
	return nil
}

func (e *FakeElement) Text(ctx context.Context) (string, error) {
	return e.TextValue, nil
}

func (e *FakeElement) TagName(ctx context.Context) (string, error) {
	return e.Tag, nil
}

func (e *FakeElement) Attribute(ctx context.Context, name string) (string, error) {
	return e.Attrs[name], nil
}

func (e *FakeElement) Displayed(ctx context.Context) (bool, error) {
	return !e.IsHidden, nil
}

func (e *FakeElement) Enabled(ctx context.Context) (bool, error) {
	return !e.IsDisabled, nil
}

func (e *FakeElement) Selected(ctx context.Context) (bool, error) {
	return e.IsSelected, nil
}

func (e *FakeElement) Find(ctx context.Context, by browser.By) (browser.Element, error) {
	for _, child := range e.Children {
		if matches(child, by) {
			return child, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %q", browser.ErrNoSuchElement, by.Using, by.Value)
}

func (e *FakeElement) FindAll(ctx context.Context, by browser.By) ([]browser.Element, error) {
	var out []browser.Element
	for _, child := range e.Children {
		if matches(child, by) {
			out = append(out, child)
		}
	}
	return out, nil
}

func matches(e *FakeElement, by browser.By) bool {
	if by.Using == browser.ByTagName {
		return e.Tag == by.Value
	}
	return true
}

// FakeSession is a scripted browser session. Elements are keyed by the
// locator value used to find them.
type FakeSession struct {
	URL           string
	PageTitle     string
	Elements      map[string]*FakeElement
	ScriptResults map[string]any
	PNG           []byte

	Navigations  []string
	ScriptCalls  []string
	ScriptArgs   [][]any
	RefreshCount int
	Frames       []any
	Closed       bool

	NavigateErr   error
	ScreenshotErr error
}

var _ browser.Session = (*FakeSession)(nil)

// NewFakeSession returns a session with no elements.
func NewFakeSession() *FakeSession {
	return &FakeSession{
		Elements:      make(map[string]*FakeElement),
		ScriptResults: make(map[string]any),
		PNG:           []byte("fake-png"),
	}
}

func (s *FakeSession) Navigate(ctx context.Context, url string) error {
	if s.NavigateErr != nil {
		return s.NavigateErr
	}
	s.Navigations = append(s.Navigations, url)
	s.URL = url
	return nil
}

func (s *FakeSession) CurrentURL(ctx context.Context) (string, error) {
	return s.URL, nil
}

func (s *FakeSession) Title(ctx context.Context) (string, error) {
	return s.PageTitle, nil
}

func (s *FakeSession) Refresh(ctx context.Context) error {
	s.RefreshCount++
	return nil
}

func (s *FakeSession) Find(ctx context.Context, by browser.By) (browser.Element, error) {
	if el, ok := s.Elements[by.Value]; ok {
		return el, nil
	}
	return nil, fmt.Errorf("%w: %s %q", browser.ErrNoSuchElement, by.Using, by.Value)
}

func (s *FakeSession) FindAll(ctx context.Context, by browser.By) ([]browser.Element, error) {
	if el, ok := s.Elements[by.Value]; ok {
		return []browser.Element{el}, nil
	}
	return nil, nil
}

func (s *FakeSession) ExecuteScript(ctx context.Context, script string, args ...any) (any, error) {
	s.ScriptCalls = append(s.ScriptCalls, script)
	s.ScriptArgs = append(s.ScriptArgs, args)
	if result, ok := s.ScriptResults[script]; ok {
		return result, nil
	}
	if strings.Contains(script, "document.readyState") {
		return "complete", nil
	}
	return nil, nil
}

func (s *FakeSession) SwitchFrame(ctx context.Context, reference any) error {
	s.Frames = append(s.Frames, reference)
	return nil
}

func (s *FakeSession) SwitchToDefaultContent(ctx context.Context) error {
	s.Frames = append(s.Frames, nil)
	return nil
}

func (s *FakeSession) Screenshot(ctx context.Context) ([]byte, error) {
	if s.ScreenshotErr != nil {
		return nil, s.ScreenshotErr
	}
	return s.PNG, nil
}

func (s *FakeSession) Close(ctx context.Context) error {
	s.Closed = true
	return nil
}
