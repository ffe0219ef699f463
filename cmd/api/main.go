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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"pet-adoption/internal/adapters/auth/jwtauth"
	"pet-adoption/internal/adapters/notify/email"
	"pet-adoption/internal/adapters/notify/logonly"
	pg "pet-adoption/internal/adapters/storage/postgres"
	"pet-adoption/internal/platform/config"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/metrics"
	"pet-adoption/internal/platform/ratelimit"
	"pet-adoption/internal/platform/redis"
	"pet-adoption/internal/ports/auth"
	"pet-adoption/internal/ports/notify"
	"pet-adoption/internal/router"
)

// @title Pet Adoption API
// @version 1.0
// @description Publicación de mascotas, solicitudes de adopción y verificación de salud post-adopción.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env es opcional (dev)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", map[string]any{"error": err})
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.DBDSN != "" {
		opened, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer opened.Close()

		if cfg.DBAutoMigrate {
			if err := pg.Migrate(ctx, opened); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		db = opened
		log.Info("storage: postgres", nil)
	} else {
		log.Warn("storage: in-memory (DB_DSN not set), data is lost on restart", nil)
	}

	checks := map[string]func(context.Context) error{}
	var limiter ratelimit.Limiter = ratelimit.NewMemory(cfg.RateRPS, cfg.RateBurst)
	rdb, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		limiter = ratelimit.NewRedis(rdb.Client, cfg.RateRPS, cfg.RateBurst)
		checks["redis"] = rdb.Health
		log.Info("rate limit: redis", nil)
	}

	jwtSvc, err := jwtauth.New(jwtauth.Config{
		SigningKey: cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		TTL:        cfg.TokenTTL,
	})
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}

	// En development sin JWT_SECRET propio se aceptan los headers de debug.
	var verifier auth.AuthVerifier = jwtSvc
	if cfg.IsDevelopment() && os.Getenv("JWT_SECRET") == "" {
		verifier = nil
		log.Warn("auth: debug headers enabled (X-Debug-User-ID / X-Debug-User-Email)", nil)
	}

	var notifier notify.Notifier = logonly.New(log)
	if cfg.Email.Enabled() {
		n, err := email.New(email.Config{
			APIURL:  cfg.Email.APIURL,
			APIKey:  cfg.Email.APIKey,
			From:    cfg.Email.From,
			Timeout: cfg.Email.Timeout,
		}, log)
		if err != nil {
			return err
		}
		notifier = n
	}

	app := router.New(router.Options{
		Config:       cfg,
		AuthVerifier: verifier,
		DB:           db,
		Logger:       log,
		Notifier:     notifier,
		Metrics:      metrics.New(),
		Limiter:      limiter,
		TokenIssuer:  jwtSvc,
		HealthChecks: checks,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      app.Handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down", nil)
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.ReconcileInterval > 0 {
		g.Go(func() error {
			log.Info("reconciler started", map[string]any{"interval": cfg.ReconcileInterval.String()})
			return app.Adoptions.RunReconciler(gctx, cfg.ReconcileInterval)
		})
	}

	return g.Wait()
}
