package config

import (
	"slices"
	"strings"
)

// Sanitize returns a copy of the config with secrets masked, for logging.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Server.TLS.Hosts = slices.Clone(cfg.Server.TLS.Hosts)

	sanitized.Storage.Passphrase = maskSecret(cfg.Storage.Passphrase)
	sanitized.Storage.S3.SecretKey = maskSecret(cfg.Storage.S3.SecretKey)
	sanitized.Messaging.Key = maskSecret(cfg.Messaging.Key)
	sanitized.Messaging.Passphrase = maskSecret(cfg.Messaging.Passphrase)

	return &sanitized
}

// maskSecret keeps the first and last two characters of s.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
