// Package config loads the marionettist configuration from a single
// directory containing config.yaml. Missing files fall back to defaults;
// a malformed file is an error. The metrics section can be hot-reloaded at
// runtime through the Watcher.
package config
