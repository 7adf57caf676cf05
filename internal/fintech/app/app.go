package app

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

	httpapi "github.com/seulahhh/Fintech-project/internal/fintech/http"
	"github.com/seulahhh/Fintech-project/internal/fintech/kv"
	"github.com/seulahhh/Fintech-project/internal/fintech/mail"
	"github.com/seulahhh/Fintech-project/internal/fintech/service"
	"github.com/seulahhh/Fintech-project/internal/fintech/store"
	"github.com/seulahhh/Fintech-project/internal/fintech/store/drivers/sqlite"
	"github.com/seulahhh/Fintech-project/pkg/cryptox"
	"github.com/seulahhh/Fintech-project/pkg/jwtx"
	"github.com/seulahhh/Fintech-project/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	kv       kv.Store
	keychain *jwtx.HS256Keychain

	// Services
	tokenService   *service.TokenService
	sessionService *service.SessionService
	otpService     *service.OtpService
	authFlow       *service.AuthFlow
	accountService *service.AccountService
	userService    *service.UserService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "fintech",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(cfg.PepperFile)

	// The signing secret comes from durable configuration. Generating one
	// per process would invalidate every outstanding token on restart.
	keychain, err := jwtx.NewHS256([]byte(cfg.JWTSecret), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize signing keychain: %w", err)
	}
	app.keychain = keychain

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initKV(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("fintech service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down fintech service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.kv.Close(); err != nil {
		app.logger.Error("error closing key-value store", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("fintech service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initKV connects to the TTL key-value store backing sessions, token
// blacklisting and OTP attempt counters.
func (app *Application) initKV() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kvStore, err := kv.NewRedis(ctx, app.cfg.RedisAddr, app.cfg.RedisPassword, app.cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("failed to initialize key-value store: %w", err)
	}
	app.kv = kvStore

	app.logger.Info("key-value store connected", "addr", app.cfg.RedisAddr)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Keychain:   app.keychain,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	}
	app.sessionService = &service.SessionService{
		KV:         app.kv,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	}
	app.otpService = &service.OtpService{
		Store:  app.db,
		KV:     app.kv,
		Issuer: app.cfg.Issuer,
	}
	app.authFlow = &service.AuthFlow{
		Store:    app.db,
		Tokens:   app.tokenService,
		Sessions: app.sessionService,
	}
	app.accountService = &service.AccountService{Store: app.db}
	app.userService = &service.UserService{
		Store:         app.db,
		KV:            app.kv,
		Mail:          app.mailSender(),
		Otp:           app.otpService,
		VerifyBaseURL: app.cfg.VerifyBaseURL,
	}
}

// mailSender picks the real provider when configured, otherwise logs.
func (app *Application) mailSender() mail.Sender {
	if app.cfg.MailEndpoint == "" || app.cfg.MailAPIKey == "" {
		app.logger.Warn("mail provider not configured, logging verification mails instead")
		return mail.LogSender{}
	}
	return &mail.HTTPSender{
		Endpoint:   app.cfg.MailEndpoint,
		APIKey:     app.cfg.MailAPIKey,
		SenderName: app.cfg.MailSenderName,
		SenderAddr: app.cfg.MailSenderAddr,
	}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.kv, app.logger)

	// Wire services to router
	router.Auth = app.authFlow
	router.Otp = app.otpService
	router.Accounts = app.accountService
	router.Users = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
