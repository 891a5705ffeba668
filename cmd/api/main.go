package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/flavourfinder/flavourfinder-go/internal/config"
	"github.com/flavourfinder/flavourfinder-go/internal/handler"
	"github.com/flavourfinder/flavourfinder-go/internal/logger"
	"github.com/flavourfinder/flavourfinder-go/internal/repository"
	"github.com/flavourfinder/flavourfinder-go/internal/service"
)

type stores struct {
	users   service.UserStore
	prefs   service.PreferencesStore
	saved   service.SavedRecipeStore
	revoked service.RevocationStore
	closers []func() error
}

func (s *stores) Close() {
	for _, c := range s.closers {
		_ = c()
	}
}

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if envErr != nil {
		log.Warn("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := openStores(ctx, cfg, log)
	defer st.Close()

	router := handler.NewRouter(handler.Services{
		Auth:        service.NewAuthService(st.users, st.revoked, cfg.JWTSecret, cfg.JWTExpiry, log),
		Recipes:     service.NewRecipeService(st.saved, service.NewCatalogGenerator(), log),
		Preferences: service.NewPreferencesService(st.prefs, log),
		AuthRPS:     cfg.AuthRPS,
		AuthBurst:   cfg.AuthBurst,
	}, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", "error", err)
		}
	}()

	<-ctx.Done()

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced shutdown", "error", err)
		return
	}

	log.Info("server stopped")
}

// openStores picks the persistence backend. MySQL is used unless
// STORAGE=memory or the database is unreachable; Redis takes over the token
// denylist when REDIS_ADDR is set.
func openStores(ctx context.Context, cfg config.Config, log *logger.Logger) *stores {
	st := memoryStores()

	if cfg.Storage == "mysql" {
		db, err := repository.NewDB(ctx, cfg.DatabaseDSN)
		if err != nil {
			log.Warn("database unavailable, falling back to in-memory storage", "error", err)
		} else if err := repository.Migrate(ctx, db); err != nil {
			log.Warn("database migration failed, falling back to in-memory storage", "error", err)
			db.Close()
		} else {
			st = sqlStores(db)
			go purgeRevoked(ctx, repository.NewRevocationRepository(db), log)
		}
	}

	if cfg.RedisAddr != "" {
		rs, err := repository.NewRedisRevocationStore(ctx, cfg.RedisAddr, log)
		if err != nil {
			log.Warn("redis unavailable, keeping default revocation store", "error", err)
		} else {
			st.revoked = rs
			st.closers = append(st.closers, rs.Close)
		}
	}

	return st
}

func memoryStores() *stores {
	return &stores{
		users:   repository.NewMemoryUserRepository(),
		prefs:   repository.NewMemoryPreferencesRepository(),
		saved:   repository.NewMemorySavedRecipeRepository(),
		revoked: repository.NewMemoryRevocationStore(),
	}
}

func sqlStores(db *sql.DB) *stores {
	return &stores{
		users:   repository.NewUserRepository(db),
		prefs:   repository.NewPreferencesRepository(db),
		saved:   repository.NewSavedRecipeRepository(db),
		revoked: repository.NewRevocationRepository(db),
		closers: []func() error{db.Close},
	}
}

func purgeRevoked(ctx context.Context, repo *repository.RevocationRepository, log *logger.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.PurgeExpired(ctx)
			if err != nil {
				log.Warn("purging revoked tokens failed", "error", err)
				continue
			}
			log.Debug("purged revoked tokens", "count", n)
		}
	}
}
