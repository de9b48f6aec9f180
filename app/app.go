package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"Gin_postgres_redis_peer_lending/config"
	"Gin_postgres_redis_peer_lending/db"
	"Gin_postgres_redis_peer_lending/services"
	"Gin_postgres_redis_peer_lending/session"
	"Gin_postgres_redis_peer_lending/throttle"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Config config.Config
	Log    *slog.Logger

	Repo   *db.Repo
	Engine *services.Engine

	appSess *session.AppSessionStore
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

// MustNew 连接 Postgres 与 Redis，失败直接退出
func MustNew(cfg config.Config) *App {
	log := NewLogger(cfg)

	dbConn, err := db.Open(cfg.DSN(), log)
	if err != nil {
		log.Error("database", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("redis", "error", err)
		os.Exit(1)
	}

	return New(cfg, dbConn, rdb, log)
}

// New wires an App from already opened handles.
func New(cfg config.Config, dbConn *gorm.DB, rdb *redis.Client, log *slog.Logger) *App {
	repo := db.NewRepo(dbConn)
	engine := services.New(repo,
		services.WithLogger(log),
		services.WithCodeTTL(cfg.HandoverCodeTTL),
		services.WithDefaultMaxBorrowDays(cfg.DefaultMaxBorrowDays),
		services.WithAttemptLimiter(throttle.NewAttempts(rdb, cfg.VerifyMaxAttempts, cfg.VerifyAttemptWindow)),
	)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router: r, DB: dbConn, RDB: rdb, Config: cfg, Log: log,
		Repo: repo, Engine: engine,
		appSess: session.NewAppSessionStore(rdb, cfg.SessionTTL),
	}
}

func (a *App) Close() {
	_ = a.RDB.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (a *App) Addr() string { return fmt.Sprintf(":%s", a.Config.Port) }
