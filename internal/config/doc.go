// Package config provides loading, environment overlay and validation for
// rofka's runtime configuration. Default() gives the baseline, Load reads a
// JSON or YAML file on top of it, FromEnv overlays ROFKA_* variables and
// Validate checks the result against the selected mode.
//
// Example:
//
//	cfg, err := config.Load("/etc/rofka.yaml")
//	if err != nil { /* handle */ }
//	if err := config.FromEnv(&cfg); err != nil { /* handle */ }
//	cfg.Mode = config.ModeIngest
//	if err := cfg.Validate(); err != nil { /* handle */ }
package config
