// Package config resolves named configurations for an environment.
//
// A logical name like "browser" plus an environment like "staging" is
// resolved to a single file on disk: browser_staging.yaml is tried first,
// then browser_staging.yml and browser_staging.json, and when none of
// those exist the environment-free browser.yaml/.yml/.json is used as a
// fallback. Resolved configurations are cached for the lifetime of the
// Resolver, so each (name, environment) pair is read from disk at most
// once.
package config
