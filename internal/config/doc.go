// Package config loads, normalizes, and validates karaoke configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DB_HOST, DB_PASSWORD_FILE, and REDIS_ADDR. The Config type centralizes every
// knob the daemon and CLI need, from the queue database driver to the
// notification publishers.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, resolved credentials, and clear validation errors.
package config
