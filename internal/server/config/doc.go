// Package config defines the petyard-server configuration.
//
//   - spec.go: ServerConfig and its sections
//   - default.go: default values
//   - verify.go: validation (field rules via validator tags, then
//     cross-field checks)
//   - sanitize.go: copy with secrets masked, for logging
//
// Configuration is loaded with internal/infra/confloader from a YAML file
// and PETYARD_ environment variables.
package config
