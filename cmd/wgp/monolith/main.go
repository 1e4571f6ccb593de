package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/stuagano/wolf-goat-pig/internal/config"
	gatewayHttp "github.com/stuagano/wolf-goat-pig/internal/modules/gateway/adapter/http"
	gatewayLocal "github.com/stuagano/wolf-goat-pig/internal/modules/gateway/adapter/local"
	"github.com/stuagano/wolf-goat-pig/internal/modules/gateway/token"
	gatewayUseCase "github.com/stuagano/wolf-goat-pig/internal/modules/gateway/usecase"
	"github.com/stuagano/wolf-goat-pig/internal/modules/gateway/ws"
	wgpHttp "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/adapter/http"
	wgpLocal "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/adapter/local"
	wgpDomain "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
	wgpDB "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/repository/db"
	wgpMemory "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/repository/memory"
	wgpRedis "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/repository/redis"
	wgpUseCase "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/usecase"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
)

func main() {
	pprofPort := flag.String("pprof-port", "", "Port to run pprof server on (e.g., 6060)")
	flag.Parse()

	cfg := config.LoadMonolithConfig()
	gameCfg := cfg.Game

	logger.Init(logger.Config{
		Level:  gameCfg.Log.Level,
		Format: gameCfg.Log.Format,
		File:   gameCfg.Log.File,
	})
	defer logger.Close()

	logger.InfoGlobal().Msg("⛳ Starting Wolf Goat Pig Monolith...")

	if *pprofPort != "" {
		go func() {
			addr := "localhost:" + *pprofPort
			logger.InfoGlobal().Str("addr", addr).Msg("📈 Starting pprof server")
			if err := http.ListenAndServe(addr, nil); err != nil {
				logger.ErrorGlobal().Err(err).Msg("Failed to start pprof server")
			}
		}()
	}

	course, err := config.LoadCourse(gameCfg.CourseFile)
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to load course")
	}
	logger.InfoGlobal().Str("course", course.Name).Msg("✅ Course loaded")

	// History database is optional; without it settled holes live only in the snapshot
	var history wgpDomain.HistoryRepository
	if gameCfg.Database.Enabled {
		db, err := gorm.Open(postgres.Open(gameCfg.Database.DSN()), &gorm.Config{
			Logger: logger.NewGormLogger(),
		})
		if err != nil {
			logger.FatalGlobal().Err(err).Msg("Failed to connect to database")
		}
		sqlDB, err := db.DB()
		if err != nil {
			logger.FatalGlobal().Err(err).Msg("Failed to get database instance")
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
		defer sqlDB.Close()

		if err := wgpDB.AutoMigrate(db); err != nil {
			logger.FatalGlobal().Err(err).Msg("Failed to migrate history tables")
		}
		history = wgpDB.NewHistoryRepository(db)
		logger.InfoGlobal().Msg("✅ Database connected")
	}

	var games wgpDomain.GameRepository
	if gameCfg.RepoType == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     gameCfg.Redis.Addr(),
			Password: gameCfg.Redis.Password,
			DB:       gameCfg.Redis.DB,
		})
		defer rdb.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.FatalGlobal().Err(err).Msg("Failed to connect to Redis")
		}
		games = wgpRedis.NewGameRepository(rdb, gameCfg.Redis.SnapshotTTL)
		logger.InfoGlobal().Msg("✅ Snapshot repository: Redis")
	} else {
		games = wgpMemory.NewGameRepository()
		logger.InfoGlobal().Msg("✅ Snapshot repository: Memory")
	}

	gameUC := wgpUseCase.NewGameUseCase(games, history, course)
	gameSvc := wgpLocal.NewHandler(gameUC)

	wsManager := ws.NewManager()
	go wsManager.Run()
	gameUC.SetBroadcaster(gatewayLocal.NewBroadcaster(wsManager))

	seats := token.NewSeatIssuer(cfg.Gateway.JWT.Secret, cfg.Gateway.JWT.Duration)
	gatewayUC := gatewayUseCase.NewGatewayUseCase(gameSvc)
	gatewayHandler := gatewayHttp.NewHandler(gatewayUC, wsManager, seats)
	restHandler := wgpHttp.NewHandler(gameSvc, seats)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware())
	restHandler.RegisterRoutes(router.Group("/api"))
	gatewayHandler.RegisterRoutes(router)

	port := cfg.Gateway.Server.HTTPPort
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	logger.InfoGlobal().
		Str("port", port).
		Str("api_url", fmt.Sprintf("http://localhost:%s/api/games", port)).
		Str("ws_url", fmt.Sprintf("ws://localhost:%s/ws?token=SEAT_TOKEN", port)).
		Msg("🚀 Wolf Goat Pig Monolith running")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalGlobal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoGlobal().Msg("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorGlobal().Err(err).Msg("HTTP server forced to shutdown")
	}

	logger.InfoGlobal().Msg("🔌 Closing all WebSocket connections...")
	wsManager.Shutdown()

	logger.InfoGlobal().Msg("👋 Server exited properly")
}
