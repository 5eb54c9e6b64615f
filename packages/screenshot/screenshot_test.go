package screenshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uispec/uispec/packages/browser/browsertest"
)

func TestCaptureWritesNamedFile(t *testing.T) {
	session := browsertest.NewFakeSession()
	session.PNG = []byte("png-data")
	dir := t.TempDir()

	c := NewCapturer(session, dir, nil)
	path, err := c.Capture(context.Background(), "login-page")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "login-page.png"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-data"), data)
}

func TestCaptureGeneratesNameWhenEmpty(t *testing.T) {
	session := browsertest.NewFakeSession()
	dir := t.TempDir()

	c := NewCapturer(session, dir, nil)
	path, err := c.Capture(context.Background(), "")
	require.NoError(t, err)

	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "screenshot_"), "got %q", base)
	assert.True(t, strings.HasSuffix(base, ".png"), "got %q", base)
}

func TestCaptureCreatesDirectory(t *testing.T) {
	session := browsertest.NewFakeSession()
	dir := filepath.Join(t.TempDir(), "nested", "shots")

	c := NewCapturer(session, dir, nil)
	_, err := c.Capture(context.Background(), "x")
	require.NoError(t, err)

	_, err = os.Stat(dir)
	require.NoError(t, err)
}

func TestCaptureOnFailureSanitizesName(t *testing.T) {
	session := browsertest.NewFakeSession()
	dir := t.TempDir()

	c := NewCapturer(session, dir, nil)
	path, err := c.CaptureOnFailure(context.Background(), "login: bad / slash")
	require.NoError(t, err)

	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "FAIL_login__bad___slash_"), "got %q", base)
	assert.NotContains(t, base, "/ ")
}

func TestCaptureSurfacesSessionError(t *testing.T) {
	session := browsertest.NewFakeSession()
	session.ScreenshotErr = errors.New("session gone")

	c := NewCapturer(session, t.TempDir(), nil)
	_, err := c.Capture(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session gone")
}
