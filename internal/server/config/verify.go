package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Verify validates the configuration and creates the data directory.
func Verify(cfg *ServerConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return describe(err)
	}
	if err := verifyTLS(&cfg.Server.TLS); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyMessaging(&cfg.Messaging); err != nil {
		return err
	}
	if cfg.Auth.RateLimit.Enabled && (cfg.Auth.RateLimit.RPS <= 0 || cfg.Auth.RateLimit.Burst < 1) {
		return errors.New("auth.rate_limit: rps and burst must be positive when enabled")
	}
	return nil
}

// describe turns validator errors into "section.field: rule" messages.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "ServerConfig.")
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, rule))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func verifyTLS(cfg *TLSConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return errors.New("server.tls: cert_file and key_file are required when tls is enabled")
	}
	if cfg.SelfSigned {
		if len(cfg.Hosts) == 0 {
			return errors.New("server.tls.hosts is required for self-signed certificates")
		}
		return nil
	}
	for _, f := range []string{cfg.CertFile, cfg.KeyFile} {
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("server.tls: %w", err)
		}
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("cannot create data directory: %w", err)
	}
	if cfg.Passphrase != "" && len(cfg.Passphrase) < 8 {
		return errors.New("storage.passphrase must be at least 8 characters")
	}
	if cfg.Backend == BackendS3 && cfg.S3.Bucket == "" {
		return errors.New("storage.s3.bucket is required for the s3 backend")
	}
	if (cfg.S3.AccessKey == "") != (cfg.S3.SecretKey == "") {
		return errors.New("storage.s3: access_key and secret_key must be set together")
	}
	return nil
}

func verifyMessaging(cfg *MessagingSection) error {
	if cfg.Key != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.Key)
		if err != nil {
			return fmt.Errorf("messaging.key: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("messaging.key must decode to 32 bytes, got %d", len(key))
		}
	}
	if cfg.Passphrase != "" && len(cfg.Passphrase) < 8 {
		return errors.New("messaging.passphrase must be at least 8 characters")
	}
	return nil
}
