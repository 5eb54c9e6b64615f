package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaultEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "browser_default.yaml", "type: chrome\nheadless: true\n")

	r := NewResolver(dir)
	cfg, err := r.Load("browser", "default")
	require.NoError(t, err)
	assert.Equal(t, "chrome", cfg.GetString("type"))
	assert.True(t, cfg.GetBool("headless"))
}

func TestDefaultEnvironmentRequiresQualifiedFile(t *testing.T) {
	// The unqualified file is a fallback for named environments only;
	// "default" resolves solely through {name}_default.
	dir := t.TempDir()
	writeFile(t, dir, "browser.yaml", "type: chrome\n")

	r := NewResolver(dir)
	_, err := r.Load("browser", "default")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoadEnvironmentQualifiedWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "browser.yaml", "type: chrome\n")
	writeFile(t, dir, "browser_staging.yaml", "type: firefox\n")

	r := NewResolver(dir)
	cfg, err := r.Load("browser", "staging")
	require.NoError(t, err)
	assert.Equal(t, "firefox", cfg.GetString("type"))
}

func TestLoadFallsBackToUnqualifiedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "browser.yaml", "type: chrome\n")

	r := NewResolver(dir)
	cfg, err := r.Load("browser", "prod")
	require.NoError(t, err)
	assert.Equal(t, "chrome", cfg.GetString("type"))
}

func TestLoadNotFound(t *testing.T) {
	r := NewResolver(t.TempDir())
	_, err := r.Load("browser", "prod")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "browser")
	assert.Contains(t, err.Error(), "prod")
}

func TestLoadEmptyName(t *testing.T) {
	r := NewResolver(t.TempDir())
	_, err := r.Load("", "default")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestExtensionPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name: "yaml over json",
			files: map[string]string{
				"browser.yaml": "source: yaml\n",
				"browser.json": `{"source": "json"}`,
			},
			want: "yaml",
		},
		{
			name: "yml over json",
			files: map[string]string{
				"browser.yml":  "source: yml\n",
				"browser.json": `{"source": "json"}`,
			},
			want: "yml",
		},
		{
			name: "yaml over yml",
			files: map[string]string{
				"browser.yaml": "source: yaml\n",
				"browser.yml":  "source: yml\n",
			},
			want: "yaml",
		},
		{
			name: "json alone",
			files: map[string]string{
				"browser.json": `{"source": "json"}`,
			},
			want: "json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, dir, name, content)
			}

			r := NewResolver(dir)
			cfg, err := r.Load("browser", "prod")
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.GetString("source"))
		})
	}
}

func TestLoadCachesResolvedConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "browser_default.yaml", "type: chrome\n")

	r := NewResolver(dir)
	first, err := r.Load("browser", "default")
	require.NoError(t, err)

	// Remove the file: a second load must not touch the disk.
	require.NoError(t, os.Remove(path))

	second, err := r.Load("browser", "default")
	require.NoError(t, err)
	assert.Equal(t, "chrome", second.GetString("type"))

	// Same underlying object, not a copy.
	first["marker"] = "shared"
	assert.Equal(t, "shared", second.GetString("marker"))
}

func TestCacheKeyedByEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "browser_default.yaml", "type: chrome\n")
	writeFile(t, dir, "browser_dev.yaml", "type: firefox\n")

	r := NewResolver(dir)

	dev, err := r.Load("browser", "dev")
	require.NoError(t, err)
	def, err := r.Load("browser", "default")
	require.NoError(t, err)

	assert.Equal(t, "firefox", dev.GetString("type"))
	assert.Equal(t, "chrome", def.GetString("type"))
}

func TestLoadParseFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "browser_default.yaml", "type: [unclosed\n")

	r := NewResolver(dir)
	_, err := r.Load("browser", "default")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse failure")
	assert.Contains(t, err.Error(), path)
}

func TestLookupNestedPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "browser_default.yaml", "grid:\n  url: http://localhost:4444\n  max_sessions: 4\n")

	r := NewResolver(dir)
	cfg, err := r.Load("browser", "default")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:4444", cfg.GetString("grid.url"))
	assert.Equal(t, int64(4), cfg.GetInt("grid.max_sessions"))

	_, ok := cfg.Lookup("grid.missing")
	assert.False(t, ok)
}

func TestEnvironmentURL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "environment_default.yaml", "base_url: https://example.com\n")
	writeFile(t, dir, "environment_dev.yaml", "timeout: 5\n")

	r := NewResolver(dir)

	url, err := r.EnvironmentURL("default")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", url)

	// base_url absent: empty string, no error.
	url, err = r.EnvironmentURL("dev")
	require.NoError(t, err)
	assert.Equal(t, "", url)
}

func TestConvenienceAccessors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "browser_default.yaml", "type: chrome\n")
	writeFile(t, dir, "test_default.yaml", "timeout: 10s\n")

	r := NewResolver(dir)

	browser, err := r.Browser("default")
	require.NoError(t, err)
	assert.Equal(t, "chrome", browser.GetString("type"))

	test, err := r.Test("default")
	require.NoError(t, err)
	assert.Equal(t, "10s", test.GetString("timeout"))
}

// readCountingHandler counts "loaded configuration" records, one per
// disk read.
type readCountingHandler struct {
	reads atomic.Int64
}

func (h *readCountingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *readCountingHandler) Handle(_ context.Context, rec slog.Record) error {
	if rec.Message == "loaded configuration" {
		h.reads.Add(1)
	}
	return nil
}

func (h *readCountingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *readCountingHandler) WithGroup(string) slog.Handler      { return h }

func TestLoadConcurrentFirstAccessReadsOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "browser_default.yaml", "type: chrome\n")

	handler := &readCountingHandler{}
	r := NewResolver(dir, WithLogger(slog.New(handler)))

	const callers = 16
	start := make(chan struct{})
	errs := make([]error, callers)
	configs := make([]Config, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			configs[i], errs[i] = r.Load("browser", "default")
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "chrome", configs[i].GetString("type"))
	}
	assert.Equal(t, int64(1), handler.reads.Load())
}
