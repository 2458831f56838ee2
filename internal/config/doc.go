// Package config loads application configuration from an optional YAML file
// merged with ESG_-prefixed environment variables, validates it, and
// resolves the directories the pipeline reads from and writes to.
package config
