package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// DefaultEnvironment is used when no environment is given.
const DefaultEnvironment = "default"

// extensions in resolution order. YAML wins over JSON when both exist.
var extensions = []string{".yaml", ".yml", ".json"}

var (
	// ErrNotFound indicates that no file exists for the requested
	// configuration name after exhausting the fallback order.
	ErrNotFound = errors.New("configuration not found")

	errNoCandidate = errors.New("no candidate file")
)

// Config is a resolved configuration: an untyped mapping parsed from a
// single YAML or JSON file. Values returned from the resolver cache are
// shared between callers and must not be mutated.
type Config map[string]any

// Lookup resolves a dotted path (e.g. "grid.url") inside the
// configuration. The second return value reports whether the path exists.
func (c Config) Lookup(path string) (gjson.Result, bool) {
	data, err := json.Marshal(map[string]any(c))
	if err != nil {
		return gjson.Result{}, false
	}
	res := gjson.GetBytes(data, path)
	return res, res.Exists()
}

// GetString returns the string value at a dotted path, or the empty
// string when the path is absent.
func (c Config) GetString(path string) string {
	if res, ok := c.Lookup(path); ok {
		return res.String()
	}
	return ""
}

// GetBool returns the boolean value at a dotted path, defaulting to false.
func (c Config) GetBool(path string) bool {
	if res, ok := c.Lookup(path); ok {
		return res.Bool()
	}
	return false
}

// GetInt returns the integer value at a dotted path, defaulting to zero.
func (c Config) GetInt(path string) int64 {
	if res, ok := c.Lookup(path); ok {
		return res.Int()
	}
	return 0
}

// Resolver loads configurations from a directory with per-instance
// caching.
type Resolver struct {
	dir    string
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]Config
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for resolution events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a resolver rooted at the given config directory.
func NewResolver(dir string, opts ...Option) *Resolver {
	r := &Resolver{
		dir:    dir,
		logger: slog.Default(),
		cache:  make(map[string]Config),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load resolves a configuration name for an environment. The
// environment-qualified file is tried first; when it does not exist and
// the environment is not "default", the unqualified file is used.
//
// The mutex is held across the read-through, so concurrent first access
// to the same key still results in exactly one disk read.
func (r *Resolver) Load(name, environment string) (Config, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty configuration name", ErrNotFound)
	}
	if environment == "" {
		environment = DefaultEnvironment
	}

	key := name + "_" + environment

	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg, ok := r.cache[key]; ok {
		return cfg, nil
	}

	cfg, err := r.readFirst(key)
	if errors.Is(err, errNoCandidate) && environment != DefaultEnvironment {
		cfg, err = r.readFirst(name)
	}
	if errors.Is(err, errNoCandidate) {
		return nil, fmt.Errorf("%w: %s (environment %s)", ErrNotFound, name, environment)
	}
	if err != nil {
		return nil, err
	}

	r.cache[key] = cfg
	return cfg, nil
}

// readFirst tries each extension in order and parses the first file that
// exists.
func (r *Resolver) readFirst(base string) (Config, error) {
	for _, ext := range extensions {
		path := filepath.Join(r.dir, base+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return r.readFile(path, ext)
	}
	return nil, errNoCandidate
}

func (r *Resolver) readFile(path, ext string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration %s: %w", path, err)
	}

	cfg := Config{}
	switch ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("configuration parse failure for %s: %w", path, err)
	}

	r.logger.Debug("loaded configuration", "path", path)
	return cfg, nil
}

// Browser loads the "browser" configuration for an environment.
func (r *Resolver) Browser(environment string) (Config, error) {
	return r.Load("browser", environment)
}

// Test loads the "test" configuration for an environment.
func (r *Resolver) Test(environment string) (Config, error) {
	return r.Load("test", environment)
}

// EnvironmentURL returns the base_url of the "environment" configuration,
// or the empty string when the field is absent.
func (r *Resolver) EnvironmentURL(environment string) (string, error) {
	cfg, err := r.Load("environment", environment)
	if err != nil {
		return "", err
	}
	return cfg.GetString("base_url"), nil
}
