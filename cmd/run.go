package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"minicasino/auth"
	"minicasino/bot"
	"minicasino/config"
	"minicasino/database"
	"minicasino/events"
	"minicasino/games"
	"minicasino/infrastructure"
	"minicasino/repository"
	"minicasino/repository/memory"
	"minicasino/service"
	"minicasino/web"

	"github.com/bwmarrin/discordgo"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies the configured level and format to logrus
func ConfigureLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// storage bundles the unit of work factory with its health check and cleanup
type storage struct {
	uowFactory service.UnitOfWorkFactory
	health     web.HealthChecker
	shutdown   func()
}

func openStorage(ctx context.Context, cfg *config.Config, eventBus *events.Bus) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn("Using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return &storage{
			uowFactory: memory.NewUnitOfWorkFactory(store, eventBus),
			health:     store,
			shutdown:   func() {},
		}, nil
	}

	databaseURL := database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName)

	if cfg.AutoMigrate {
		log.Info("Running database migrations...")
		if err := database.RunMigrationsWithURL(databaseURL); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	return &storage{
		uowFactory: repository.NewUnitOfWorkFactory(db, eventBus),
		health:     db,
		shutdown:   db.Close,
	}, nil
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := ConfigureLogging(cfg); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"storage":     cfg.StorageDriver,
	}).Info("Starting minicasino...")

	eventBus := events.NewBus()

	store, err := openStorage(ctx, cfg, eventBus)
	if err != nil {
		return err
	}
	defer store.shutdown()

	accountService := service.NewAccountService(store.uowFactory, auth.NewPasswordHasher(cfg.BcryptCost))
	gameService := service.NewGameService(store.uowFactory, games.NewRandomGenerator())
	sessions := auth.NewSessionManager(cfg.SessionSecret, cfg.CookieSecure)

	// Side effects only ever log their failures
	var discordSession *discordgo.Session
	if cfg.DiscordEnabled() {
		discordSession, err = bot.Connect(cfg.DiscordToken)
		if err != nil {
			log.WithError(err).Error("Discord announcer disabled")
		} else {
			bot.NewAnnouncer(discordSession, cfg.DiscordChannelID, cfg.BigWinThreshold).Subscribe(eventBus)
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSEnabled() {
		natsConn, err = infrastructure.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.WithError(err).Error("NATS event forwarding disabled")
		} else {
			infrastructure.NewNATSEventPublisher(natsConn, cfg.NATSSubjectPrefix).Subscribe(eventBus)
		}
	}

	handler := web.NewHandler(accountService, gameService, sessions, store.health)
	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: web.NewRouter(handler, web.RouterOptions{
			AllowedOrigins: cfg.AllowedOrigins,
			RequestTimeout: cfg.RequestTimeout,
		}),
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown did not complete")
	}

	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			log.WithError(err).Error("Error draining NATS connection")
		}
	}
	if discordSession != nil {
		if err := discordSession.Close(); err != nil {
			log.WithError(err).Error("Error closing Discord session")
		}
	}

	log.Info("Shutdown completed")
	return nil
}
