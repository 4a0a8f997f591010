// Package config loads, normalizes, and validates formatrisk configuration.
//
// Configuration is read from TOML (default ~/.config/formatrisk/config.toml or
// ./formatrisk.toml), overlaid on Default(), expanded (tilde and relative
// paths), and validated. Validation never stops at the first problem: every
// missing or malformed setting is listed in a single ValidationError so an
// archivist can fix the file in one pass.
package config
