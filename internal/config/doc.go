// Package config holds catalogscan's settings and the layering that
// produces them: built-in defaults, the .catalogscan YAML file,
// environment variables, then command-line flags.
package config
