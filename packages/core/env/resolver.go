package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is called when a placeholder cannot be resolved.
type WarnFunc func(format string, args ...any)

// Resolver substitutes {{variable}} placeholders with thread-safe access
// to the variable set.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]any
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]any),
	}
}

// SetWarnFunc sets a function to be called when a placeholder stays
// unresolved.
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

// SetVariables merges a variable set into the resolver. Later calls win
// on key collisions.
func (r *Resolver) SetVariables(vars map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

func (r *Resolver) GetVariable(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variables[name]
	return v, ok
}

// Resolve replaces every {{name}} placeholder in the input. {{$NAME}}
// reads from the process environment. Unresolved placeholders are left
// as-is.
func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])

		if strings.HasPrefix(expr, "$") {
			envVar := expr[1:]
			if val := os.Getenv(envVar); val != "" {
				return val
			}
			r.warn("unresolved environment variable: $%s", envVar)
			return match
		}

		r.mu.RLock()
		val, ok := r.variables[expr]
		r.mu.RUnlock()
		if ok {
			return fmt.Sprintf("%v", val)
		}

		r.warn("unresolved variable: %s", expr)
		return match
	})
}

// Clone returns an independent copy of the resolver's variable set.
func (r *Resolver) Clone() *Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewResolver()
	for k, v := range r.variables {
		clone.variables[k] = v
	}
	clone.warnFunc = r.warnFunc
	return clone
}
