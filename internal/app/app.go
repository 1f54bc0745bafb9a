package app

import (
	"context"
	"fmt"
	"time"

	"Todo/internal/config"
	"Todo/internal/middleware"
	"Todo/internal/repo"
	"Todo/migrations"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
)

type App struct {
	cfg    config.Config
	log    *log.Logger
	store  repo.Store
	redis  *redis.Client
	router *gin.Engine
}

func New(cfg config.Config, logger *log.Logger) (*App, error) {
	a := &App{cfg: cfg, log: logger}

	store, err := newStore(cfg.Store, logger)
	if err != nil {
		return nil, err
	}
	a.store = store

	if cfg.Redis.Enabled() {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		a.redis = rdb
	} else {
		logger.Info("redis not configured, list cache disabled")
	}

	a.router = newRouter(cfg, a.store, a.redis, logger)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Close releases the Redis client and the store.
func (a *App) Close() error {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("redis close", "err", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			return fmt.Errorf("store close: %w", err)
		}
	}
	return nil
}

func newStore(cfg config.StoreConfig, logger *log.Logger) (repo.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		store, err := repo.OpenSQLite(context.Background(), cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if cfg.MigrateOnStart {
			if err := migrations.Up(store.DB(), migrations.SQLite, logger); err != nil {
				_ = store.Close()
				return nil, err
			}
		}
		logger.Info("store ready", "driver", cfg.Driver, "path", cfg.SQLitePath)
		return store, nil

	case config.DriverPostgres:
		pool, err := newPostgres(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.MigrateOnStart {
			if err := runMigrations(cfg.DSN, logger); err != nil {
				pool.Close()
				return nil, err
			}
		}
		logger.Info("store ready", "driver", cfg.Driver)
		return repo.NewPGStore(pool), nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
}

func newPostgres(cfg config.StoreConfig) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	pcfg.MaxConns = cfg.MaxConns
	pcfg.MinConns = cfg.MinConns
	pcfg.MaxConnIdleTime = 5 * time.Minute
	pcfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func runMigrations(dsn string, logger goose.Logger) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	return migrations.Up(db, migrations.Postgres, logger)
}

func newRouter(cfg config.Config, store repo.Store, rdb *redis.Client, logger *log.Logger) *gin.Engine {
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, store, rdb, logger)
	return r
}
