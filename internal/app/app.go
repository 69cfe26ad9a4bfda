package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"todoapi/internal/cache"
	"todoapi/internal/config"
	"todoapi/internal/middleware"
	"todoapi/internal/repo"
	"todoapi/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type App struct {
	cfg    config.Config
	log    *logrus.Logger
	sqlite *sql.DB
	pg     *pgxpool.Pool
	redis  *redis.Client
	router *gin.Engine
}

// New opens the store named by cfg.DB.Location, connects Redis when
// configured, and builds the router.
func New(ctx context.Context, cfg config.Config, log *logrus.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	var todoRepo repo.TodoRepo
	if repo.IsPostgresDSN(cfg.DB.Location) {
		pool, err := repo.OpenPostgres(ctx, cfg.DB.Location)
		if err != nil {
			return nil, err
		}
		a.pg = pool
		todoRepo = repo.NewPGTodoRepo(pool)
		log.Info("using postgres store")
	} else {
		db, err := repo.OpenSQLite(ctx, cfg.DB.Location)
		if err != nil {
			return nil, err
		}
		a.sqlite = db
		todoRepo = repo.NewSQLiteTodoRepo(db)
		log.WithField("path", cfg.DB.Location).Info("using sqlite store")
	}

	var listCache service.ListCache
	if cfg.Redis.Enabled() {
		rdb, err := newRedis(ctx, cfg.Redis)
		if err != nil {
			if cerr := a.Close(); cerr != nil {
				log.WithError(cerr).Warn("closing store after redis failure")
			}
			return nil, err
		}
		a.redis = rdb
		listCache = cache.NewTodoCache(rdb, cfg.Redis.DefaultTTL.Duration())
		log.WithField("addr", cfg.Redis.Addr).Info("todo list cache enabled")
	}

	svc := service.NewTodoService(todoRepo, listCache, log)
	a.router = newRouter(cfg, log, svc)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Close releases the cache client and the store. Every resource is closed
// even if an earlier one fails; the errors are joined.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if a.pg != nil {
		a.pg.Close()
	}
	if a.sqlite != nil {
		if err := a.sqlite.Close(); err != nil {
			errs = append(errs, fmt.Errorf("sqlite close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func newRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func newRouter(cfg config.Config, log *logrus.Logger, svc *service.TodoService) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logging(log),
		middleware.Metrics(),
	)

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, svc, log)
	return r
}
