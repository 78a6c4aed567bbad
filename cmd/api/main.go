package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/oklog/run"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Siddarth2230/shortlink/internal/clicks"
	"github.com/Siddarth2230/shortlink/internal/config"
	"github.com/Siddarth2230/shortlink/internal/handler"
	"github.com/Siddarth2230/shortlink/internal/ratelimit"
	"github.com/Siddarth2230/shortlink/internal/repository"
	"github.com/Siddarth2230/shortlink/internal/service"
	"github.com/Siddarth2230/shortlink/pkg/cache"
	"github.com/Siddarth2230/shortlink/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.LogLevel)

	if err := serve(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func serve(cfg *config.Config, log *logrus.Logger) error {
	if cfg.MigrateOnStart {
		if err := repository.Migrate(cfg.DatabaseURL, log); err != nil {
			return errors.Wrap(err, "migrate")
		}
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "open db")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "db ping")
	}

	// Redis backs the rate limiter, and the cache unless CACHE_BACKEND=memory
	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	defer func() {
		_ = redisClient.Close()
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "redis ping")
	}

	var urlCache cache.Cache
	switch cfg.CacheBackend {
	case config.CacheBackendMemory:
		urlCache = cache.NewLRUCache(cfg.CacheCapacity)
	default:
		urlCache = cache.NewRedisCache(redisClient, "url:")
	}

	repo := repository.NewURLRepository(db, log)
	recorder := clicks.NewRecorder(repo, clicks.Options{
		Workers:   cfg.ClickWorkers,
		QueueSize: cfg.ClickQueue,
		Timeout:   cfg.ClickTimeout,
	}, log)
	limiter := ratelimit.NewLimiter(redisClient, cfg.RateLimit, cfg.RateWindow, log)
	store := service.NewStore(repo, urlCache, service.StoreOptions{
		CacheTimeout: cfg.CacheTimeout,
		DBTimeout:    cfg.DBTimeout,
		DefaultTTL:   cfg.DefaultCacheTTL,
	}, log)
	svc := service.NewURLService(store, limiter, recorder, cfg.BaseURL, log)
	router := handler.NewRouter(handler.NewURLHandler(svc, log, cfg.TrustProxy), log)

	g := new(run.Group)
	{
		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Add(func() error {
			log.WithField("addr", srv.Addr).Info("server starting")
			if err := srv.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		}, func(error) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.WithError(err).Warn("http shutdown")
			}
		})
	}
	{
		ctx, cancel := context.WithCancel(context.Background())
		g.Add(func() error {
			return recorder.Run(ctx)
		}, func(error) {
			cancel()
		})
	}
	{
		sig := make(chan os.Signal, 1)
		done := make(chan struct{})
		g.Add(func() error {
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			select {
			case s := <-sig:
				log.WithField("signal", s.String()).Info("shutting down")
			case <-done:
			}
			return nil
		}, func(error) {
			signal.Stop(sig)
			close(done)
		})
	}
	return g.Run()
}
