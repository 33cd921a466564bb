package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	awsbraket "github.com/aws/aws-sdk-go/service/braket"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	braketadapter "github.com/ericfisherdev/quantumvault/internal/adapter/driven/braket"
	"github.com/ericfisherdev/quantumvault/internal/adapter/driven/memory"
	"github.com/ericfisherdev/quantumvault/internal/adapter/driven/quantum"
	"github.com/ericfisherdev/quantumvault/internal/adapter/driven/s3store"
	sqliteadapter "github.com/ericfisherdev/quantumvault/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/quantumvault/internal/adapter/driven/vaultcipher"
	httphandler "github.com/ericfisherdev/quantumvault/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/quantumvault/internal/adapter/driving/web"
	"github.com/ericfisherdev/quantumvault/internal/application"
	"github.com/ericfisherdev/quantumvault/internal/config"
	"github.com/ericfisherdev/quantumvault/internal/domain/port/driven"
	"github.com/ericfisherdev/quantumvault/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid values).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"store", cfg.Store,
		"cipher", cfg.Cipher,
		"quantum_backend", cfg.QuantumBackend,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Provision the process-wide cipher.
	cipher, err := newCipher(cfg)
	if err != nil {
		return err
	}
	if cfg.Asymmetric {
		if err := demonstrateKeyPair(); err != nil {
			return err
		}
	}

	// 4. AWS session, only when a component needs it.
	var sess *session.Session
	if cfg.Store == config.StoreS3 || cfg.QuantumBackend == config.QuantumBraket {
		sess, err = session.NewSession(&aws.Config{Region: aws.String(cfg.AWSRegion)})
		if err != nil {
			return fmt.Errorf("create aws session: %w", err)
		}
	}

	// 5. Open the credential store.
	store, closeStore, err := newStore(ctx, cfg, sess)
	if err != nil {
		return err
	}
	defer closeStore()

	// 6. Metrics registry.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// 7. Quantum flourish and vault services.
	runner := newRunner(cfg, sess)
	flourishSvc := application.NewFlourishService(runner, cfg.QuantumShots, cfg.QuantumTimeout, m, slog.Default())
	vaultSvc := application.NewVaultService(store, cipher, flourishSvc, m, slog.Default())

	// 8. HTTP API and web GUI.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(vaultSvc, flourishSvc, slog.Default()), reg)
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(vaultSvc, flourishSvc, slog.Default()))
	handler := httphandler.ApplyMiddleware(mux, slog.Default(), m)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("quantumvault started",
		"listen_addr", cfg.ListenAddr,
		"quantum_backend", flourishSvc.Backend(),
	)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout for HTTP drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	// 11. Let in-flight circuit runs finish; they are bounded by QuantumTimeout.
	flourishSvc.Wait()

	slog.Info("shutdown complete")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newCipher(cfg *config.Config) (driven.Cipher, error) {
	if cfg.Cipher == config.CipherPlaintext {
		slog.Warn("cipher is plaintext: passwords are stored in clear")
		return vaultcipher.Plaintext{}, nil
	}

	key, source, err := vaultcipher.ProvisionKey(cfg.SecretKey, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("provision cipher key: %w", err)
	}
	switch source {
	case vaultcipher.KeySourceEphemeral:
		slog.Warn("no QUANTUMVAULT_SECRET_KEY or QUANTUMVAULT_KEY_FILE set; using an ephemeral key, stored passwords become unreadable after restart")
	case vaultcipher.KeySourceGenerated:
		slog.Info("generated new cipher key", "key_file", cfg.KeyFile)
	default:
		slog.Info("cipher key loaded", "source", source)
	}

	return vaultcipher.NewAESGCM(key)
}

// demonstrateKeyPair generates the asymmetric pair and seals a one-shot
// message to it. The request path never uses the pair.
func demonstrateKeyPair() error {
	kp, err := vaultcipher.GenerateKeyPair()
	if err != nil {
		return err
	}
	sealed, err := kp.Seal([]byte("quantumvault startup probe"))
	if err != nil {
		return err
	}
	if _, err := kp.Open(sealed); err != nil {
		return fmt.Errorf("asymmetric self-check: %w", err)
	}
	slog.Info("asymmetric key pair generated", "sealed_bytes", len(sealed))
	return nil
}

func newStore(ctx context.Context, cfg *config.Config, sess *session.Session) (driven.CredentialStore, func(), error) {
	switch cfg.Store {
	case config.StoreSQLite:
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		slog.Info("database opened", "path", cfg.DBPath)
		return sqliteadapter.NewCredentialRepo(db), func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}, nil
	case config.StoreS3:
		slog.Info("using s3 credential store", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
		return s3store.NewCredentialRepo(s3.New(sess), cfg.S3Bucket, cfg.S3Prefix), func() {}, nil
	default:
		slog.Warn("using in-memory credential store: passwords are lost on restart")
		return memory.NewCredentialRepo(), func() {}, nil
	}
}

func newRunner(cfg *config.Config, sess *session.Session) driven.QuantumRunner {
	switch cfg.QuantumBackend {
	case config.QuantumBraket:
		return braketadapter.NewRunner(
			awsbraket.New(sess),
			s3.New(sess),
			cfg.BraketBucket,
			slog.Default(),
			braketadapter.WithDeviceARN(cfg.BraketDeviceARN),
		)
	case config.QuantumLocal:
		return quantum.NewLocalSimulator()
	default:
		return nil
	}
}
