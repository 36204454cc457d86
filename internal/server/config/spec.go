package config

import "time"

// ServerConfig is the root configuration for petyard-server and
// petyard-cli.
type ServerConfig struct {
	Server    ServerSection    `koanf:"server"`
	Storage   StorageSection   `koanf:"storage"`
	Auth      AuthSection      `koanf:"auth"`
	Messaging MessagingSection `koanf:"messaging"`
	Sweep     SweepSection     `koanf:"sweep"`
	Log       LogSection       `koanf:"log"`
	Telemetry TelemetrySection `koanf:"telemetry"`
}

// ServerSection configures the HTTP endpoint.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
	TLS  TLSConfig  `koanf:"tls"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr            string        `koanf:"addr" validate:"required,hostname_port"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes" validate:"gt=0"`
}

// TLSConfig configures HTTPS. With SelfSigned set, missing certificate
// files are generated at startup for Hosts.
type TLSConfig struct {
	Enabled    bool     `koanf:"enabled"`
	CertFile   string   `koanf:"cert_file"`
	KeyFile    string   `koanf:"key_file"`
	SelfSigned bool     `koanf:"self_signed"`
	Hosts      []string `koanf:"hosts" validate:"dive,required"`
}

// Snapshot backends.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendS3     = "s3"
)

// StorageSection configures snapshot persistence.
type StorageSection struct {
	DataDir     string `koanf:"data_dir" validate:"required"`
	Backend     string `koanf:"backend" validate:"oneof=file badger s3"`
	Codec       string `koanf:"codec" validate:"omitempty,oneof=json cbor"`
	Compression string `koanf:"compression" validate:"omitempty,oneof=none zstd"`

	// Passphrase enables at-rest encryption of snapshots.
	Passphrase string `koanf:"passphrase"`
	// Cipher selects the AEAD; empty picks by hardware support.
	Cipher string `koanf:"cipher" validate:"omitempty,oneof=aes-gcm chacha20-poly1305"`

	Badger BadgerConfig `koanf:"badger"`
	S3     S3Config     `koanf:"s3"`
}

// BadgerConfig configures the badger backend.
type BadgerConfig struct {
	GCInterval time.Duration `koanf:"gc_interval" validate:"gte=0"`
	SyncWrites bool          `koanf:"sync_writes"`
}

// S3Config configures the S3 backend.
type S3Config struct {
	Bucket       string `koanf:"bucket"`
	Prefix       string `koanf:"prefix"`
	Region       string `koanf:"region"`
	Endpoint     string `koanf:"endpoint" validate:"omitempty,url"`
	AccessKey    string `koanf:"access_key"`
	SecretKey    string `koanf:"secret_key"`
	UsePathStyle bool   `koanf:"use_path_style"`
}

// AuthSection configures session tokens and request throttling.
type AuthSection struct {
	TokenTTL  time.Duration   `koanf:"token_ttl" validate:"gt=0"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps" validate:"gte=0"`
	Burst   int     `koanf:"burst" validate:"gte=0"`
}

// MessagingSection configures direct-message encryption. Key takes
// precedence over Passphrase. With neither set, a random key is created
// in the data directory on first start. Sealed messages do not record
// the cipher, so Cipher must stay fixed for the life of the data.
type MessagingSection struct {
	Cipher     string `koanf:"cipher" validate:"omitempty,oneof=aes-gcm chacha20-poly1305"`
	Key        string `koanf:"key" validate:"omitempty,base64"`
	Passphrase string `koanf:"passphrase"`
}

// SweepSection configures the neglected-pet sweep.
type SweepSection struct {
	Enabled      bool          `koanf:"enabled"`
	Interval     time.Duration `koanf:"interval" validate:"gt=0"`
	NeglectAfter time.Duration `koanf:"neglect_after" validate:"gt=0"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn warning error"`
	Format string `koanf:"format" validate:"oneof=json text console"`
}

// TelemetrySection configures metrics exposure.
type TelemetrySection struct {
	Metrics bool `koanf:"metrics"`
}
