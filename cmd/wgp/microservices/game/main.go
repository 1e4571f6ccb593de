package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/stuagano/wolf-goat-pig/internal/config"
	wgpGrpc "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/adapter/grpc"
	wgpDomain "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
	wgpDB "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/repository/db"
	wgpMemory "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/repository/memory"
	wgpRedis "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/repository/redis"
	wgpUseCase "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/usecase"
	"github.com/stuagano/wolf-goat-pig/pkg/admin"
	"github.com/stuagano/wolf-goat-pig/pkg/discovery"
	"github.com/stuagano/wolf-goat-pig/pkg/grpc_client/base"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
	"github.com/stuagano/wolf-goat-pig/pkg/netutil"
)

func main() {
	cfg := config.LoadGameConfig()
	logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	defer logger.Close()

	logger.InfoGlobal().Msg("⛳ Starting Wolf Goat Pig Game Service...")
	wgpDomain.SetNodeID(cfg.NodeID)

	course, err := config.LoadCourse(cfg.CourseFile)
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to load course")
	}

	var history wgpDomain.HistoryRepository
	if cfg.Database.Enabled {
		db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
			Logger: logger.NewGormLogger(),
		})
		if err != nil {
			logger.FatalGlobal().Err(err).Msg("Failed to connect to database")
		}
		if err := wgpDB.AutoMigrate(db); err != nil {
			logger.FatalGlobal().Err(err).Msg("Failed to migrate history tables")
		}
		history = wgpDB.NewHistoryRepository(db)
		logger.InfoGlobal().Msg("✅ Database connected")
	}

	var games wgpDomain.GameRepository
	if cfg.RepoType == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.FatalGlobal().Err(err).Msg("Failed to connect to Redis")
		}
		games = wgpRedis.NewGameRepository(rdb, cfg.Redis.SnapshotTTL)
		logger.InfoGlobal().Msg("✅ Snapshot repository: Redis")
	} else {
		// a memory repository pins every game to this instance; run a single replica
		games = wgpMemory.NewGameRepository()
		logger.WarnGlobal().Msg("⚠️ Snapshot repository: Memory")
	}

	registry, err := cfg.Nacos.NewRegistry(map[string][]string{discovery.GatewayService: cfg.GatewayAddrs})
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to create registry")
	}
	defer registry.Close()

	// Gateways receive events through their Broadcast RPC
	baseClient := base.NewBaseClient(registry)
	defer baseClient.Close()

	gameUC := wgpUseCase.NewGameUseCase(games, history, course)
	gameUC.SetBroadcaster(baseClient)

	lis, port, err := netutil.ListenWithFallback(cfg.Server.Port)
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to listen on port")
	}
	grpcServer := wgpGrpc.NewServer(gameUC)
	admin.Register(grpcServer, admin.NewServer(cfg.Server.Name))

	go func() {
		logger.InfoGlobal().Int("port", port).Msg("🚀 Game gRPC Service listening")
		if err := grpcServer.Serve(lis); err != nil {
			logger.FatalGlobal().Err(err).Msg("Failed to serve gRPC")
		}
	}()

	ip := netutil.GetOutboundIP()
	if err := discovery.RegisterWithRetry(registry, discovery.GameService, ip, uint64(port), 10, 2*time.Second); err != nil {
		logger.ErrorGlobal().Err(err).Msg("Failed to register game service after retries")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoGlobal().Msg("🛑 Shutting down Game Service...")

	// Deregister first so gateways stop routing new commands here
	if err := registry.DeregisterService(discovery.GameService, ip, uint64(port)); err != nil {
		logger.WarnGlobal().Err(err).Msg("Failed to deregister")
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		logger.InfoGlobal().Msg("✅ gRPC Server stopped gracefully")
	case <-time.After(10 * time.Second):
		logger.WarnGlobal().Msg("⚠️ gRPC Server stop timed out, forcing Stop")
		grpcServer.Stop()
	}

	logger.InfoGlobal().Msg("👋 Game Service shutdown complete")
}
