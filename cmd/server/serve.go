package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/indigenous-art-atlas/internal/api"
	"github.com/indigenous-art-atlas/internal/auth"
	"github.com/indigenous-art-atlas/internal/config"
	"github.com/indigenous-art-atlas/internal/database"
	"github.com/indigenous-art-atlas/internal/mocks"
	"github.com/indigenous-art-atlas/internal/models"
	"github.com/indigenous-art-atlas/internal/repository"
	"github.com/indigenous-art-atlas/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			return serve(cfg, log)
		},
	}
}

func serve(cfg *config.Config, log zerolog.Logger) error {
	log.Info().Str("store", cfg.Store).Msg("Starting Indigenous Art Atlas server...")

	var (
		repos  *repository.Repositories
		health api.HealthChecker
		db     *database.DB
	)

	if cfg.Store == config.StoreMemory {
		store := mocks.NewStore()
		repos = mocks.NewRepositories(store)
		seedMemoryAdmin(store, repos, cfg, log)
	} else {
		var err error
		db, err = database.New(&cfg.Database, log)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.Database.AutoMigrate {
			if err := db.RunMigrations(); err != nil {
				return err
			}
		}
		repos = repository.New(db)
		health = db
	}

	services := service.NewServices(repos, cfg, log)
	authenticator := auth.NewAuthenticator(cfg.Auth, repos.User)

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(services, authenticator, health, cfg, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	if db != nil {
		stats := db.Stats()
		log.Info().
			Int("open_connections", stats.OpenConnections).
			Int64("wait_count", stats.WaitCount).
			Msg("Database pool at shutdown")
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}

// seedMemoryAdmin creates the administrator account of an in-memory store and
// logs a session token for it, since tokens cannot be issued from another process
func seedMemoryAdmin(store *mocks.Store, repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) {
	admin := store.AddUser("admin", models.RoleAdmin, true)
	token, err := auth.NewAuthenticator(cfg.Auth, repos.User).Issue(admin, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue development token")
		return
	}
	log.Warn().
		Int64("user_id", admin.ID).
		Str("token", token).
		Msg("In-memory store seeded with administrator, data is lost on exit")
}
