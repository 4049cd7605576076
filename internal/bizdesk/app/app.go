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

	httpapi "github.com/aussiebroadwan/bizdesk/internal/bizdesk/http"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/mail"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/service"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store/drivers/postgres"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store/drivers/sqlite"
	"github.com/aussiebroadwan/bizdesk/pkg/cryptox"
	"github.com/aussiebroadwan/bizdesk/pkg/httpx"
	"github.com/aussiebroadwan/bizdesk/pkg/slogx"
)

// BuildVersion is overridden at build time with -ldflags "-X ...".
var BuildVersion = "v0.1.0"

// Application owns the process: store, services, housekeeping and the HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	hasher *cryptox.Hasher
	mailer service.Mailer

	sessions      *service.SessionService
	registration  *service.RegistrationService
	invitations   *service.InvitationService
	organizations *service.OrganizationService
	subscriptions *service.SubscriptionService
	catalog       *service.CatalogService
	bookings      *service.BookingService
	housekeeping  *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "bizdesk",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewHasher(cryptox.DefaultParams, pepper, cfg.HashConcurrency)

	if err := app.initDatabase(context.Background()); err != nil {
		return nil, err
	}

	app.mailer = mail.New(cfg.SMTP, app.logger)
	if !cfg.SMTP.Configured() {
		app.logger.Warn("SMTP not configured, invitation links will be logged instead of mailed")
	}

	app.initServices()
	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run serves until SIGINT/SIGTERM or a server failure.
func (app *Application) Run() error {
	app.housekeeping.Start()

	app.logger.Info("bizdesk starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"database", app.cfg.DatabaseDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeeping.Stop()
		_ = app.db.Close()
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

func (app *Application) Shutdown() error {
	app.logger.Info("shutting down bizdesk...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", slogx.Err(err))
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", slogx.Err(err))
		}
	}

	app.housekeeping.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", slogx.Err(err))
		return err
	}

	app.logger.Info("bizdesk stopped")
	return nil
}

func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL, postgres.Options{
			MaxOpenConns:    app.cfg.DatabaseMaxConns,
			MaxIdleConns:    app.cfg.DatabaseMaxConns,
			ConnMaxLifetime: 30 * time.Minute,
		})
	default:
		db, err = sqlite.NewStore(app.cfg.DatabaseFile)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

func (app *Application) initServices() {
	app.sessions = &service.SessionService{
		Store:  app.db,
		Hasher: app.hasher,
		TTL:    app.cfg.SessionTTL,
	}
	app.invitations = &service.InvitationService{
		Store:    app.db,
		Hasher:   app.hasher,
		Sessions: app.sessions,
		Mailer:   app.mailer,
		BaseURL:  app.cfg.BaseURL,
		TTL:      app.cfg.InvitationTTL,
	}
	app.registration = &service.RegistrationService{
		Store:       app.db,
		Hasher:      app.hasher,
		Sessions:    app.sessions,
		Invitations: app.invitations,
	}
	app.organizations = &service.OrganizationService{Store: app.db}
	app.subscriptions = &service.SubscriptionService{Store: app.db}
	app.catalog = &service.CatalogService{Store: app.db}
	app.bookings = &service.BookingService{Store: app.db}

	app.housekeeping = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() error {
	limits, err := httpx.LoadProfiles()
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(BuildVersion, app.db, limits, app.logger)
	router.Cookie = httpapi.CookieConfig{Secure: app.cfg.CookieSecure}
	router.ExposeInviteLinks = app.cfg.ExposeInviteLinks

	router.Sessions = app.sessions
	router.Registration = app.registration
	router.Invitations = app.invitations
	router.Organizations = app.organizations
	router.Subscriptions = app.subscriptions
	router.Catalog = app.catalog
	router.Bookings = app.bookings
	router.ApplyRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
