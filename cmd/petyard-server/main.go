package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"reflect"

	"github.com/yndnr/petyard-go/internal/infra/buildinfo"
	"github.com/yndnr/petyard-go/internal/infra/confloader"
	"github.com/yndnr/petyard-go/internal/infra/shutdown"
	"github.com/yndnr/petyard-go/internal/infra/tlsroots"
	"github.com/yndnr/petyard-go/internal/server/bootstrap"
	"github.com/yndnr/petyard-go/internal/server/config"
	"github.com/yndnr/petyard-go/internal/server/httpserver"
	"github.com/yndnr/petyard-go/internal/telemetry/logger"
	"github.com/yndnr/petyard-go/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("petyard-server " + buildinfo.String())
		return nil
	}

	loader := newLoader(*configFile)
	cfg, err := loadConfig(loader)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  os.Stdout,
		Service: "petyard-server",
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slog.SetDefault(log)

	bi := buildinfo.Get()
	log.Info("starting petyard-server",
		"version", bi.Version,
		"commit", bi.Commit,
		"config", *configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := metric.NewRegistry()
	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout, log)

	// Storage first: its close hook runs last.
	st, err := bootstrap.OpenStorage(ctx, &cfg.Storage, bootstrap.StorageOptions{
		Logger:     log,
		Registerer: registry.Registerer(),
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	shutdownHandler.OnShutdown("snapshot backend", func(context.Context) error {
		return st.Close()
	})

	// abort releases whatever has been registered so far.
	abort := func(err error) error {
		shutdownHandler.Shutdown()
		return err
	}

	engine, err := bootstrap.NewEngine(cfg, st.Store, bootstrap.EngineOptions{
		Logger:  log,
		Metrics: registry,
	})
	if err != nil {
		return abort(fmt.Errorf("init storage engine: %w", err))
	}
	shutdownHandler.OnShutdown("storage engine", engine.Close)

	// A snapshot that cannot be read stops startup; it is never replaced
	// by an empty store.
	if err := engine.Recover(ctx); err != nil {
		return abort(fmt.Errorf("storage recovery: %w", err))
	}
	engine.Start()
	registry.RegisterCounts(engine.Counts)

	cipher, keySource, err := bootstrap.MessagingCipher(&cfg.Messaging, cfg.Storage.DataDir)
	if err != nil {
		return abort(fmt.Errorf("init messaging cipher: %w", err))
	}
	log.Info("messaging cipher ready", "cipher", cipher.Type(), "key_source", keySource)

	routerCfg := &httpserver.RouterConfig{
		Engine:      engine,
		Cipher:      cipher,
		Logger:      log,
		EnableAudit: true,
	}
	if cfg.Telemetry.Metrics {
		routerCfg.Metrics = registry
	}
	if cfg.Auth.RateLimit.Enabled {
		routerCfg.RateLimit = &httpserver.RateLimitConfig{
			RPS:   cfg.Auth.RateLimit.RPS,
			Burst: cfg.Auth.RateLimit.Burst,
		}
	}

	serverCfg := httpserver.Config{
		Addr:         cfg.Server.HTTP.Addr,
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
		MaxBodyBytes: cfg.Server.HTTP.MaxBodyBytes,
		Logger:       log,
	}

	if cfg.Server.TLS.Enabled {
		certWatcher, err := initTLS(&cfg.Server.TLS, log)
		if err != nil {
			return abort(fmt.Errorf("init tls: %w", err))
		}
		certWatcher.StartAsync()
		shutdownHandler.OnShutdown("certificate watcher", func(context.Context) error {
			certWatcher.Stop()
			return nil
		})
		serverCfg.TLSConfig = certWatcher.ServerConfig()
	}

	if loader.FilePath() != "" {
		cfgWatcher, err := watchConfig(loader, cfg, log)
		if err != nil {
			log.Warn("configuration hot reload disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
				return cfgWatcher.Stop()
			})
		}
	}

	server := httpserver.New(serverCfg, httpserver.NewRouter(routerCfg))
	ln, err := server.Listen()
	if err != nil {
		return abort(fmt.Errorf("listen %s: %w", cfg.Server.HTTP.Addr, err))
	}
	shutdownHandler.OnShutdown("http server", server.Shutdown)

	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil {
			log.Error("http server error", "error", err)
			serveErr <- err
			cancel()
		}
	}()

	log.Info("server started", "addr", ln.Addr().String(), "tls", cfg.Server.TLS.Enabled)
	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	default:
	}

	log.Info("server stopped gracefully")
	return nil
}

func newLoader(configFile string) *confloader.Loader {
	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	return confloader.NewLoader(opts...)
}

// loadConfig loads defaults, then the file, then the environment.
func loadConfig(loader *confloader.Loader) (*config.ServerConfig, error) {
	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initTLS generates a self-signed pair when asked to and loads the pair
// into a reloading watcher.
func initTLS(cfg *config.TLSConfig, log *slog.Logger) (*tlsroots.Watcher, error) {
	if cfg.SelfSigned {
		created, err := tlsroots.EnsureSelfSigned(cfg.CertFile, cfg.KeyFile, cfg.Hosts)
		if err != nil {
			return nil, err
		}
		if created {
			log.Warn("generated self-signed certificate",
				"cert_file", cfg.CertFile,
				"hosts", cfg.Hosts)
		}
	}
	return tlsroots.NewWatcher(cfg.CertFile, cfg.KeyFile, tlsroots.WithLogger(log))
}

// watchConfig reloads the file on change. Only the log level is applied
// at runtime; every other setting needs a restart.
func watchConfig(loader *confloader.Loader, current *config.ServerConfig, log *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(loader.FilePath()); err != nil {
		w.Stop()
		return nil, err
	}

	level := current.Log.Level
	w.OnChange(func(path string) {
		next := config.Default()
		err := loader.Reload(next)
		if err == nil {
			err = config.Verify(next)
		}
		if err != nil {
			log.Error("config reload rejected", "path", path, "error", err)
			return
		}
		if next.Log.Level != level {
			if err := logger.SetLevel(next.Log.Level); err != nil {
				log.Error("log level change rejected", "error", err)
				return
			}
			log.Info("log level changed", "from", level, "to", next.Log.Level)
			level = next.Log.Level
		}
		if restartNeeded(current, next) {
			log.Warn("configuration changed; restart to apply settings other than log.level", "path", path)
		}
	})
	w.StartAsync()
	return w, nil
}

// restartNeeded reports whether a and b differ in anything but log.level.
func restartNeeded(a, b *config.ServerConfig) bool {
	x, y := *a, *b
	x.Log.Level, y.Log.Level = "", ""
	return !reflect.DeepEqual(x, y)
}
