// Package config loads leoflow configuration from YAML files and
// environment variables.
//
// Precedence: defaults, then the YAML file, then environment overrides.
package config
