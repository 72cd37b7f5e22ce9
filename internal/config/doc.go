// Package config loads, normalizes, and validates the TOML configuration for
// clipcast. Credentials may also arrive through environment variables so the
// config file can stay free of secrets.
package config
