package main

import (
	"context"
	"database/sql"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun/dialect/pgdialect"

	confirm "github.com/goliatone/go-confirm"
	"github.com/goliatone/go-confirm/identity"
	"github.com/goliatone/go-confirm/migrations"
	"github.com/goliatone/go-confirm/security"
	sqlstore "github.com/goliatone/go-confirm/store/sql"
	"github.com/goliatone/go-confirm/transport"
)

type dbConfig struct {
	dsn string
}

func (c dbConfig) GetDebug() bool                { return false }
func (c dbConfig) GetDriver() string             { return "postgres" }
func (c dbConfig) GetServer() string             { return c.dsn }
func (c dbConfig) GetPingTimeout() time.Duration { return 5 * time.Second }
func (c dbConfig) GetOtelIdentifier() string     { return "go-confirm" }

func main() {
	_, logger := glog.Resolve("confirmd", nil, nil)

	cfg := confirm.DefaultConfig()
	cfg.BaseURL = os.Getenv("CONFIRM_BASE_URL")
	cfg.SigningSecret = os.Getenv("CONFIRM_SIGNING_SECRET")
	cfg.Verifier.Endpoint = os.Getenv("CONFIRM_VERIFIER_ENDPOINT")
	cfg.Verifier.APIKey = os.Getenv("CONFIRM_VERIFIER_API_KEY")
	if raw := strings.TrimSpace(os.Getenv("CONFIRM_TOKEN_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			logger.Error("invalid CONFIRM_TOKEN_TTL", "error", err)
			os.Exit(1)
		}
		cfg.TokenTTL = ttl
	}
	if raw := strings.TrimSpace(os.Getenv("CONFIRM_UPLOAD_MAX_BYTES")); raw != "" {
		maxBytes, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			logger.Error("invalid CONFIRM_UPLOAD_MAX_BYTES", "error", err)
			os.Exit(1)
		}
		cfg.Upload.MaxBytes = maxBytes
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	dsn := strings.TrimSpace(os.Getenv("CONFIRM_DATABASE_DSN"))
	if dsn == "" {
		logger.Error("CONFIRM_DATABASE_DSN is required")
		os.Exit(1)
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}

	client, err := persistence.New(dbConfig{dsn: dsn}, sqlDB, pgdialect.New())
	if err != nil {
		logger.Error("persistence client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := migrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != migrations.DialectPostgres {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, migrations.WithDialects(migrations.DialectPostgres)); err != nil {
		logger.Error("register migrations", "error", err)
		os.Exit(1)
	}
	if err := client.Migrate(ctx); err != nil {
		logger.Error("apply migrations", "error", err)
		os.Exit(1)
	}

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		logger.Error("build stores", "error", err)
		os.Exit(1)
	}

	verifier, err := identity.NewVerifier(identity.Config{
		Endpoint:       cfg.Verifier.Endpoint,
		APIKey:         cfg.Verifier.APIKey,
		RequestTimeout: cfg.Verifier.Timeout,
	})
	if err != nil {
		logger.Error("identity verifier", "error", err)
		os.Exit(1)
	}

	opts := []confirm.Option{
		confirm.WithIdentityVerifier(verifier),
		confirm.WithStoreProvider(factory),
	}
	if appKey := strings.TrimSpace(os.Getenv("CONFIRM_APP_KEY")); appKey != "" {
		secretProvider, provErr := security.NewAppKeySecretProviderFromString(appKey)
		if provErr != nil {
			logger.Error("secret provider", "error", provErr)
			os.Exit(1)
		}
		opts = append(opts, confirm.WithSecretProvider(secretProvider))
	}

	service, err := confirm.NewService(cfg, opts...)
	if err != nil {
		logger.Error("build service", "error", err)
		os.Exit(1)
	}

	addr := strings.TrimSpace(os.Getenv("CONFIRM_LISTEN_ADDR"))
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           transport.NewRouter(service).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
			os.Exit(1)
		}
		logger.Info("shutdown complete")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server", "error", err)
			os.Exit(1)
		}
	}
}
