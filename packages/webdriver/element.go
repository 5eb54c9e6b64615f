package webdriver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/uispec/uispec/packages/browser"
)

// elementRef is the wire shape of an element reference.
type elementRef map[string]string

// Element is a handle to one element inside a session.
type Element struct {
	session *Session
	id      string
}

var _ browser.Element = (*Element)(nil)

// MarshalJSON serializes the element as a W3C wire reference so it can
// be passed as a script argument.
func (e *Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{webElementID: e.id})
}

func (e *Element) path(suffix string) string {
	return e.session.path("/element/" + e.id + suffix)
}

// Click clicks the element.
func (e *Element) Click(ctx context.Context) error {
	return e.session.client.do(ctx, http.MethodPost, e.path("/click"), map[string]any{}, nil)
}

// Clear resets an editable element's value.
func (e *Element) Clear(ctx context.Context) error {
	return e.session.client.do(ctx, http.MethodPost, e.path("/clear"), map[string]any{}, nil)
}

// SendKeys types text into the element.
func (e *Element) SendKeys(ctx context.Context, text string) error {
	return e.session.client.do(ctx, http.MethodPost, e.path("/value"), map[string]any{"text": text}, nil)
}

// Text returns the element's rendered text.
func (e *Element) Text(ctx context.Context) (string, error) {
	var text string
	err := e.session.client.do(ctx, http.MethodGet, e.path("/text"), nil, &text)
	return text, err
}

// TagName returns the element's tag name.
func (e *Element) TagName(ctx context.Context) (string, error) {
	var tag string
	err := e.session.client.do(ctx, http.MethodGet, e.path("/name"), nil, &tag)
	return tag, err
}

// Attribute returns the named attribute, or "" when absent.
func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	var value *string
	if err := e.session.client.do(ctx, http.MethodGet, e.path("/attribute/"+name), nil, &value); err != nil {
		return "", err
	}
	if value == nil {
		return "", nil
	}
	return *value, nil
}

// Displayed reports whether the element is rendered visible.
func (e *Element) Displayed(ctx context.Context) (bool, error) {
	var displayed bool
	err := e.session.client.do(ctx, http.MethodGet, e.path("/displayed"), nil, &displayed)
	return displayed, err
}

// Enabled reports whether the element accepts interaction.
func (e *Element) Enabled(ctx context.Context) (bool, error) {
	var enabled bool
	err := e.session.client.do(ctx, http.MethodGet, e.path("/enabled"), nil, &enabled)
	return enabled, err
}

// Selected reports whether a checkbox, radio or option is selected.
func (e *Element) Selected(ctx context.Context) (bool, error) {
	var selected bool
	err := e.session.client.do(ctx, http.MethodGet, e.path("/selected"), nil, &selected)
	return selected, err
}

// Find locates the first descendant matching the locator.
func (e *Element) Find(ctx context.Context, by browser.By) (browser.Element, error) {
	var ref elementRef
	payload := map[string]any{"using": by.Using, "value": by.Value}
	if err := e.session.client.do(ctx, http.MethodPost, e.path("/element"), payload, &ref); err != nil {
		return nil, err
	}
	return e.session.element(ref)
}

// FindAll locates every descendant matching the locator.
func (e *Element) FindAll(ctx context.Context, by browser.By) ([]browser.Element, error) {
	var refs []elementRef
	payload := map[string]any{"using": by.Using, "value": by.Value}
	if err := e.session.client.do(ctx, http.MethodPost, e.path("/elements"), payload, &refs); err != nil {
		return nil, err
	}
	elements := make([]browser.Element, 0, len(refs))
	for _, ref := range refs {
		el, err := e.session.element(ref)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	return elements, nil
}
