package bootstrap

import (
	"encoding/base64"
	"fmt"
	"path/filepath"

	"github.com/yndnr/petyard-go/internal/infra/keyfile"
	"github.com/yndnr/petyard-go/internal/server/config"
	"github.com/yndnr/petyard-go/internal/storage/snapshot"
	"github.com/yndnr/petyard-go/pkg/crypto/adaptive"
)

// Files below storage.data_dir holding messaging key material.
const (
	MessagingKeyFile  = "messaging.key"
	MessagingSaltFile = "messaging.salt"
)

// messagingKeyInfo separates the message key from the snapshot key when
// both are derived from one passphrase.
const messagingKeyInfo = "petyard/messaging/v1"

// Key sources reported by MessagingCipher.
const (
	KeySourceConfig     = "config"
	KeySourcePassphrase = "passphrase"
	KeySourceFile       = "keyfile"
)

// MessagingCipher builds the direct-message cipher. messaging.key wins over
// messaging.passphrase; with neither, a random key is kept in dataDir.
// The passphrase salt is also kept in dataDir so restarts derive the same
// key. The second result names the key source.
func MessagingCipher(cfg *config.MessagingSection, dataDir string) (adaptive.Cipher, string, error) {
	key, source, err := messagingKey(cfg, dataDir)
	if err != nil {
		return nil, "", err
	}
	defer snapshot.ZeroKey(key)

	// Sealed messages carry no cipher id, so the choice must not depend
	// on the host.
	ct := adaptive.CipherType(cfg.Cipher)
	if ct == "" {
		ct = adaptive.CipherAESGCM
	}
	c, err := adaptive.NewWithType(key, ct)
	if err != nil {
		return nil, "", fmt.Errorf("messaging cipher: %w", err)
	}
	return c, source, nil
}

func messagingKey(cfg *config.MessagingSection, dataDir string) ([]byte, string, error) {
	switch {
	case cfg.Key != "":
		key, err := base64.StdEncoding.DecodeString(cfg.Key)
		if err != nil {
			return nil, "", fmt.Errorf("messaging.key: %w", err)
		}
		if len(key) != adaptive.KeySize {
			return nil, "", fmt.Errorf("messaging.key must decode to %d bytes, got %d", adaptive.KeySize, len(key))
		}
		return key, KeySourceConfig, nil

	case cfg.Passphrase != "":
		if err := snapshot.ValidatePassphrase([]byte(cfg.Passphrase)); err != nil {
			return nil, "", fmt.Errorf("messaging.passphrase: %w", err)
		}
		salt, err := keyfile.LoadOrCreate(filepath.Join(dataDir, MessagingSaltFile), snapshot.SaltLength)
		if err != nil {
			return nil, "", err
		}
		key, err := snapshot.DeriveKey([]byte(cfg.Passphrase), salt, messagingKeyInfo)
		if err != nil {
			return nil, "", err
		}
		return key, KeySourcePassphrase, nil

	default:
		key, err := keyfile.LoadOrCreate(filepath.Join(dataDir, MessagingKeyFile), adaptive.KeySize)
		if err != nil {
			return nil, "", err
		}
		return key, KeySourceFile, nil
	}
}
