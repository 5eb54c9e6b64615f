package webdriver

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/uispec/uispec/packages/browser"
)

// webElementID is the W3C key under which element references travel on
// the wire.
const webElementID = "element-6066-11e4-a52e-4f735466cecf"

// Session is one live browser session on a remote end.
type Session struct {
	client *Client
	id     string
}

var _ browser.Session = (*Session)(nil)

// NewSession negotiates a session with the given capabilities.
func NewSession(ctx context.Context, client *Client, capabilities map[string]any) (*Session, error) {
	payload := map[string]any{
		"capabilities": map[string]any{
			"alwaysMatch": capabilities,
		},
	}
	var created struct {
		SessionID    string         `json:"sessionId"`
		Capabilities map[string]any `json:"capabilities"`
	}
	if err := client.do(ctx, http.MethodPost, "/session", payload, &created); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if created.SessionID == "" {
		return nil, fmt.Errorf("create session: remote end returned no session id")
	}
	client.logger.Debug("session created", "session_id", created.SessionID)
	return &Session{client: client, id: created.SessionID}, nil
}

// ID returns the remote-end session identifier.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) path(suffix string) string {
	return "/session/" + s.id + suffix
}

// Navigate loads the given URL.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.client.do(ctx, http.MethodPost, s.path("/url"), map[string]any{"url": url}, nil)
}

// CurrentURL returns the URL of the current top-level browsing context.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var url string
	err := s.client.do(ctx, http.MethodGet, s.path("/url"), nil, &url)
	return url, err
}

// Title returns the current document title.
func (s *Session) Title(ctx context.Context) (string, error) {
	var title string
	err := s.client.do(ctx, http.MethodGet, s.path("/title"), nil, &title)
	return title, err
}

// Refresh reloads the current page.
func (s *Session) Refresh(ctx context.Context) error {
	return s.client.do(ctx, http.MethodPost, s.path("/refresh"), map[string]any{}, nil)
}

// Find locates the first element matching the locator.
func (s *Session) Find(ctx context.Context, by browser.By) (browser.Element, error) {
	var ref elementRef
	payload := map[string]any{"using": by.Using, "value": by.Value}
	if err := s.client.do(ctx, http.MethodPost, s.path("/element"), payload, &ref); err != nil {
		return nil, err
	}
	return s.element(ref)
}

// FindAll locates every element matching the locator. No match is an
// empty slice, not an error.
func (s *Session) FindAll(ctx context.Context, by browser.By) ([]browser.Element, error) {
	var refs []elementRef
	payload := map[string]any{"using": by.Using, "value": by.Value}
	if err := s.client.do(ctx, http.MethodPost, s.path("/elements"), payload, &refs); err != nil {
		return nil, err
	}
	elements := make([]browser.Element, 0, len(refs))
	for _, ref := range refs {
		el, err := s.element(ref)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	return elements, nil
}

func (s *Session) element(ref elementRef) (*Element, error) {
	id := ref[webElementID]
	if id == "" {
		return nil, fmt.Errorf("webdriver: element reference missing %s key", webElementID)
	}
	return &Element{session: s, id: id}, nil
}

// ExecuteScript runs JavaScript synchronously in the current browsing
// context. Element arguments are serialized as wire references.
func (s *Session) ExecuteScript(ctx context.Context, script string, args ...any) (any, error) {
	if args == nil {
		args = []any{}
	}
	payload := map[string]any{"script": script, "args": args}
	var result any
	if err := s.client.do(ctx, http.MethodPost, s.path("/execute/sync"), payload, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SwitchFrame switches the browsing context to a frame. The reference
// may be a zero-based index, a frame id or name string, an Element, or
// nil for the top-level context.
func (s *Session) SwitchFrame(ctx context.Context, reference any) error {
	var id any
	switch ref := reference.(type) {
	case nil:
		id = nil
	case int:
		id = ref
	case *Element:
		id = ref
	case browser.Element:
		el, ok := ref.(*Element)
		if !ok {
			return fmt.Errorf("webdriver: cannot switch to foreign element type %T", ref)
		}
		id = el
	case string:
		// The wire protocol takes only index or element; resolve id/name
		// the way the legacy protocol did.
		el, err := s.Find(ctx, browser.CSS(fmt.Sprintf("iframe[id=%q], iframe[name=%q], frame[id=%q], frame[name=%q]", ref, ref, ref, ref)))
		if err != nil {
			return fmt.Errorf("resolve frame %q: %w", ref, err)
		}
		id = el
	default:
		return fmt.Errorf("webdriver: unsupported frame reference type %T", reference)
	}
	return s.client.do(ctx, http.MethodPost, s.path("/frame"), map[string]any{"id": id}, nil)
}

// SwitchToDefaultContent returns to the top-level browsing context.
func (s *Session) SwitchToDefaultContent(ctx context.Context) error {
	return s.client.do(ctx, http.MethodPost, s.path("/frame"), map[string]any{"id": nil}, nil)
}

// Screenshot captures the viewport and returns decoded PNG bytes.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var encoded string
	if err := s.client.do(ctx, http.MethodGet, s.path("/screenshot"), nil, &encoded); err != nil {
		return nil, err
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("webdriver: decode screenshot: %w", err)
	}
	return decoded, nil
}

// Close ends the session on the remote end.
func (s *Session) Close(ctx context.Context) error {
	return s.client.do(ctx, http.MethodDelete, s.path(""), nil, nil)
}
