// Package screenshot persists session captures to disk.
package screenshot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/uispec/uispec/packages/browser"
)

// Capturer writes PNG screenshots from a session into a directory.
type Capturer struct {
	session browser.Session
	dir     string
	logger  *slog.Logger
}

// NewCapturer builds a capturer writing into dir.
func NewCapturer(session browser.Session, dir string, logger *slog.Logger) *Capturer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capturer{session: session, dir: dir, logger: logger}
}

// Capture takes a screenshot and writes it under the given name. An
// empty name gets a timestamped one; the .png extension is enforced.
// The written path is returned.
func (c *Capturer) Capture(ctx context.Context, name string) (string, error) {
	if name == "" {
		name = fmt.Sprintf("screenshot_%s_%s",
			time.Now().Format("20060102_150405"),
			uuid.NewString()[:8])
	}
	if !strings.HasSuffix(name, ".png") {
		name += ".png"
	}

	png, err := c.session.Screenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("capture screenshot: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot directory: %w", err)
	}
	path := filepath.Join(c.dir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}

	c.logger.Debug("screenshot saved", "path", path, "bytes", len(png))
	return path, nil
}

// CaptureOnFailure names the capture after the failed scenario.
func (c *Capturer) CaptureOnFailure(ctx context.Context, scenarioName string) (string, error) {
	name := fmt.Sprintf("FAIL_%s_%s",
		sanitize(scenarioName),
		time.Now().Format("20060102_150405"))
	return c.Capture(ctx, name)
}

// sanitize keeps file names portable across platforms.
func sanitize(name string) string {
	mapper := func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}
	return strings.Map(mapper, name)
}
