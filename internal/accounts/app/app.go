package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/kodefactor/accounts/internal/accounts/blob"
	httpapi "github.com/kodefactor/accounts/internal/accounts/http"
	"github.com/kodefactor/accounts/internal/accounts/mail"
	"github.com/kodefactor/accounts/internal/accounts/metrics"
	"github.com/kodefactor/accounts/internal/accounts/service"
	"github.com/kodefactor/accounts/internal/accounts/store"
	"github.com/kodefactor/accounts/internal/accounts/store/drivers/postgres"
	"github.com/kodefactor/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/kodefactor/accounts/pkg/cryptox"
	"github.com/kodefactor/accounts/pkg/slogx"
)

// BuildVersion is overridden at build time with -ldflags "-X".
var BuildVersion = "v0.1.0"

// Application owns every long-lived dependency of the accounts service.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	keys    AuthKeys
	metrics *metrics.Metrics

	redis      *redis.Client
	mailQueue  mail.Queue
	dispatcher *mail.Dispatcher
	blobs      blob.Store
	uploads    http.Handler

	authService         *service.AuthService
	directoryService    *service.DirectoryService
	housekeepingService *service.HousekeepingService

	server  *http.Server
	router  *httpapi.Router
	started bool
}

// New creates the Application with all dependencies initialized. Nothing is
// started until Run.
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "accounts",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	keys, err := InitAuthKeys(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.keys = keys

	if err := app.initServices(ctx); err != nil {
		app.closeResources()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler is the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (app *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", app.server.Addr)
	if err != nil {
		return oops.Code("LISTEN_FAILED").With("addr", app.server.Addr).Wrap(err)
	}
	return app.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (app *Application) Serve(ctx context.Context, ln net.Listener) error {
	app.housekeepingService.Start()
	app.dispatcher.Start(context.Background())
	app.started = true

	app.logger.Info("accounts service starting", "addr", ln.Addr().String(), "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
		return app.Shutdown()
	case <-ctx.Done():
		app.logger.Info("shutdown requested")
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// Shutdown drains HTTP traffic, stops the workers and closes the stores.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down accounts service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.started {
		app.housekeepingService.Stop()
		app.dispatcher.Stop()
		app.started = false
	}

	if err := app.closeResources(); err != nil {
		return err
	}

	app.logger.Info("accounts service stopped")
	return nil
}

func (app *Application) closeResources() error {
	if app.mailQueue != nil {
		_ = app.mailQueue.Close()
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// OpenStore connects to the configured database and applies migrations.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	switch cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(sqlite.DSN(cfg.DatabaseFile))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

func (app *Application) initDatabase(ctx context.Context) error {
	db, err := OpenStore(ctx, app.cfg)
	if err != nil {
		return err
	}
	app.db = db
	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

func (app *Application) initServices(ctx context.Context) error {
	if app.cfg.MetricsEnabled {
		app.metrics = metrics.New()
	}

	if err := app.initMail(ctx); err != nil {
		return err
	}
	if err := app.initBlobs(ctx); err != nil {
		return err
	}

	accounts := app.db.Accounts()
	tokens := &service.TokenService{
		Signer:   app.keys.Signer,
		Verifier: app.keys.Verifier,
		Issuer:   app.cfg.Issuer,
		TTL:      app.cfg.TokenTTL,
	}
	codes := &service.CodeService{
		Accounts: accounts,
		Mail:     app.mailQueue,
		TTL:      app.cfg.CodeTTL,
		Metrics:  app.metrics,
	}

	app.authService = &service.AuthService{
		Accounts: accounts,
		Hasher:   cryptox.NewPasswordHasher(app.cfg.PasswordPepper),
		Codes:    codes,
		Tokens:   tokens,
		Gate: &service.Gate{
			Accounts:        accounts,
			Tokens:          tokens,
			RequireVerified: app.cfg.RequireVerifiedSession,
		},
		Metrics: app.metrics,
	}
	app.directoryService = &service.DirectoryService{Accounts: accounts, Blobs: app.blobs}

	app.housekeepingService = service.NewHousekeepingService(
		accounts,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

func (app *Application) initMail(ctx context.Context) error {
	switch app.cfg.MailQueue {
	case QueueRedis:
		client, err := mail.NewRedisClient(ctx, app.cfg.RedisURL)
		if err != nil {
			return oops.Code("REDIS_CONNECT_FAILED").Wrap(err)
		}
		app.redis = client
		app.mailQueue = mail.NewRedisQueue(client, mail.DefaultRedisKey)
	default:
		app.mailQueue = mail.NewMemoryQueue(app.cfg.MailQueueSize)
	}

	var sender mail.Sender = mail.LogSender{Logger: app.logger}
	if app.cfg.SMTPHost != "" {
		smtp, err := mail.NewSMTPSender(mail.SMTPConfig{
			Host:     app.cfg.SMTPHost,
			Port:     app.cfg.SMTPPort,
			Username: app.cfg.SMTPUsername,
			Password: app.cfg.SMTPPassword,
			From:     app.cfg.SMTPFrom,
		})
		if err != nil {
			return oops.Code("SMTP_CONFIG_INVALID").Wrap(err)
		}
		sender = smtp
	} else {
		app.logger.Warn("SMTP_HOST not set, verification mail is logged instead of sent")
	}

	app.dispatcher = mail.NewDispatcher(app.mailQueue, sender, mail.DispatcherConfig{
		Workers:     app.cfg.MailWorkers,
		SendRate:    app.cfg.MailSendRate,
		MaxAttempts: app.cfg.MailMaxAttempts,
	}, app.logger, app.metrics)

	app.logger.Info("mail queue configured", "queue", app.cfg.MailQueue)
	return nil
}

func (app *Application) initBlobs(ctx context.Context) error {
	switch app.cfg.BlobBackend {
	case BlobS3:
		s3, err := blob.NewS3Store(ctx, blob.S3Config{
			Bucket:        app.cfg.S3Bucket,
			Region:        app.cfg.S3Region,
			Endpoint:      app.cfg.S3Endpoint,
			AccessKey:     app.cfg.S3AccessKey,
			SecretKey:     app.cfg.S3SecretKey,
			PublicBaseURL: app.cfg.BlobPublicBaseURL,
		})
		if err != nil {
			return oops.Code("BLOB_INIT_FAILED").With("backend", BlobS3).Wrap(err)
		}
		app.blobs = s3
	default:
		local, err := blob.NewLocalStore(app.cfg.BlobLocalDir, app.cfg.BlobPublicBaseURL)
		if err != nil {
			return oops.Code("BLOB_INIT_FAILED").With("backend", BlobLocal).Wrap(err)
		}
		app.blobs = local
		app.uploads = local.Handler()
	}
	app.logger.Info("blob store configured", "backend", app.cfg.BlobBackend)
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		httpapi.RouterConfig{
			Prefix:         app.cfg.RoutePrefix,
			BuildVersion:   BuildVersion,
			CORSOrigins:    app.cfg.CORSOrigins,
			UploadMaxBytes: app.cfg.UploadMaxBytes,
		},
		app.keys.Signer,
		app.keys.Verifier,
		app.keys.Keys,
		app.db,
		app.metrics,
		app.logger,
	)

	router.AuthService = app.authService
	router.DirectoryService = app.directoryService
	router.Uploads = app.uploads
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
