// Command coffeeshop serves the drink catalog API.
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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	authgin "github.com/open-rails/coffeeshop/adapters/gin"
	"github.com/open-rails/coffeeshop/adapters/ginutil"
	"github.com/open-rails/coffeeshop/auth"
	"github.com/open-rails/coffeeshop/config"
	"github.com/open-rails/coffeeshop/drinks"
	migrations "github.com/open-rails/coffeeshop/migrations/postgres"
	"github.com/open-rails/coffeeshop/ratelimit"
	memorylimiter "github.com/open-rails/coffeeshop/ratelimit/memory"
	redislimiter "github.com/open-rails/coffeeshop/ratelimit/redis"
	memorystore "github.com/open-rails/coffeeshop/storage/memory"
	pgstore "github.com/open-rails/coffeeshop/storage/postgres"
	redisstore "github.com/open-rails/coffeeshop/storage/redis"
)

func main() {
	log := logrus.New()
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	configureLogger(log, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("coffeeshop stopped")
	}
}

func configureLogger(log *logrus.Logger, cfg config.Config) {
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if cfg.LogFormat == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	authCfg, err := cfg.AuthConfig()
	if err != nil {
		return err
	}
	keys := auth.NewKeySet(authCfg, auth.WithLogger(log))
	warm, cancel := context.WithTimeout(ctx, authCfg.FetchTimeout)
	if err := keys.Refresh(warm); err != nil {
		// Not fatal: the key set refreshes on the first request that needs it.
		log.WithError(err).Warn("initial jwks fetch failed")
	}
	cancel()
	authz, err := auth.NewAuthorizer(authCfg, keys, auth.WithAuthorizerLogger(log))
	if err != nil {
		return err
	}

	var store drinks.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		sqldb := stdlib.OpenDBFromPool(pool)
		defer sqldb.Close()
		if err := migrations.Migrate(ctx, sqldb); err != nil {
			return err
		}
		store = pgstore.NewDrinkStore(pool, "")
	} else {
		log.Warn("DATABASE_URL not set; using in-memory drink store")
		store = memorystore.NewDrinkStore()
	}

	var limiter ratelimit.Limiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		store = redisstore.NewListCache(store, rdb, "", cfg.ListCacheTTL, log)
		if lim := cfg.Limits(); lim != nil {
			limiter = redislimiter.New(rdb, "", lim)
		}
	} else if lim := cfg.Limits(); lim != nil {
		limiter = memorylimiter.New(lim)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(ginutil.RequestLogger(log), ginutil.Recovery())
	authgin.Register(r, authgin.Deps{
		Drinks:  drinks.NewService(store),
		Auth:    authz,
		Limiter: limiter,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
