package webdriver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/uispec/uispec/packages/browser"
)

// Supported browser types.
const (
	BrowserChrome  = "chrome"
	BrowserFirefox = "firefox"
	BrowserEdge    = "edge"
	BrowserSafari  = "safari"
)

// BrowserOptions selects and tunes the browser a factory launches.
type BrowserOptions struct {
	Type       string
	Headless   bool
	WindowSize string // "WIDTHxHEIGHT", e.g. "1920x1080"
	Args       []string
}

// Factory creates sessions against one remote end with fixed browser
// options.
type Factory struct {
	client  *Client
	options BrowserOptions
	logger  *slog.Logger
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithFactoryLogger attaches a logger to the factory and its sessions.
func WithFactoryLogger(logger *slog.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
		f.client.logger = logger
	}
}

// NewFactory builds a session factory for the given remote end.
func NewFactory(remoteURL string, options BrowserOptions, opts ...FactoryOption) (*Factory, error) {
	if options.Type == "" {
		options.Type = BrowserChrome
	}
	if _, err := Capabilities(options); err != nil {
		return nil, err
	}
	f := &Factory{
		client:  NewClient(remoteURL),
		options: options,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// NewSession opens one browser session with the factory's options.
func (f *Factory) NewSession(ctx context.Context) (browser.Session, error) {
	caps, err := Capabilities(f.options)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("opening session", "browser", f.options.Type, "headless", f.options.Headless)
	return NewSession(ctx, f.client, caps)
}

// Capabilities assembles the W3C alwaysMatch capabilities for the given
// browser options.
func Capabilities(options BrowserOptions) (map[string]any, error) {
	switch strings.ToLower(options.Type) {
	case BrowserChrome:
		return chromiumCapabilities("chrome", "goog:chromeOptions", options), nil
	case BrowserEdge:
		return chromiumCapabilities("MicrosoftEdge", "ms:edgeOptions", options), nil
	case BrowserFirefox:
		args := append([]string{}, options.Args...)
		if options.Headless {
			args = append(args, "-headless")
		}
		if options.WindowSize != "" {
			if w, h, ok := strings.Cut(options.WindowSize, "x"); ok {
				args = append(args, "-width", w, "-height", h)
			}
		}
		return map[string]any{
			"browserName": "firefox",
			"moz:firefoxOptions": map[string]any{
				"args": args,
			},
		}, nil
	case BrowserSafari:
		// safaridriver accepts no headless mode or custom arguments.
		return map[string]any{"browserName": "safari"}, nil
	default:
		return nil, fmt.Errorf("webdriver: unsupported browser type %q", options.Type)
	}
}

func chromiumCapabilities(browserName, optionsKey string, options BrowserOptions) map[string]any {
	args := []string{
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-gpu",
	}
	if options.WindowSize != "" {
		args = append(args, "--window-size="+strings.Replace(options.WindowSize, "x", ",", 1))
	}
	if options.Headless {
		args = append(args, "--headless=new")
	}
	args = append(args, options.Args...)

	return map[string]any{
		"browserName": browserName,
		optionsKey: map[string]any{
			"args":            args,
			"excludeSwitches": []string{"enable-automation"},
		},
	}
}
