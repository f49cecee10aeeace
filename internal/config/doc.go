// Package config loads, validates, and defaults the TOML configuration for
// vidx. Secrets fall back to environment variables so credentials can stay
// out of the config file.
package config
