package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:5080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodyBytes    = 1 << 20

	DefaultDataDir     = "/var/lib/petyard"
	DefaultBackend     = BackendFile
	DefaultCodec       = "json"
	DefaultCompression = "zstd"
	DefaultGCInterval  = 10 * time.Minute

	DefaultTokenTTL  = 24 * time.Hour
	DefaultRateRPS   = 20
	DefaultRateBurst = 40

	DefaultMessagingCipher = "aes-gcm"

	DefaultSweepInterval = time.Minute
	DefaultNeglectAfter  = 72 * time.Hour

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				ReadTimeout:     DefaultReadTimeout,
				WriteTimeout:    DefaultWriteTimeout,
				IdleTimeout:     DefaultIdleTimeout,
				ShutdownTimeout: DefaultShutdownTimeout,
				MaxBodyBytes:    DefaultMaxBodyBytes,
			},
			TLS: TLSConfig{
				Hosts: []string{"localhost"},
			},
		},
		Storage: StorageSection{
			DataDir:     DefaultDataDir,
			Backend:     DefaultBackend,
			Codec:       DefaultCodec,
			Compression: DefaultCompression,
			Badger: BadgerConfig{
				GCInterval: DefaultGCInterval,
				SyncWrites: true,
			},
		},
		Auth: AuthSection{
			TokenTTL: DefaultTokenTTL,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateRPS,
				Burst:   DefaultRateBurst,
			},
		},
		Messaging: MessagingSection{
			Cipher: DefaultMessagingCipher,
		},
		Sweep: SweepSection{
			Enabled:      true,
			Interval:     DefaultSweepInterval,
			NeglectAfter: DefaultNeglectAfter,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Telemetry: TelemetrySection{
			Metrics: true,
		},
	}
}
