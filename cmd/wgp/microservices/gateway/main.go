package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"

	"github.com/stuagano/wolf-goat-pig/internal/config"
	gatewayGrpc "github.com/stuagano/wolf-goat-pig/internal/modules/gateway/adapter/grpc"
	gatewayHttp "github.com/stuagano/wolf-goat-pig/internal/modules/gateway/adapter/http"
	"github.com/stuagano/wolf-goat-pig/internal/modules/gateway/token"
	gatewayUseCase "github.com/stuagano/wolf-goat-pig/internal/modules/gateway/usecase"
	"github.com/stuagano/wolf-goat-pig/internal/modules/gateway/ws"
	wgpHttp "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/adapter/http"
	"github.com/stuagano/wolf-goat-pig/pkg/discovery"
	"github.com/stuagano/wolf-goat-pig/pkg/grpc_client/base"
	"github.com/stuagano/wolf-goat-pig/pkg/grpc_client/wgp"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
	"github.com/stuagano/wolf-goat-pig/pkg/netutil"
)

func main() {
	cfg := config.LoadGatewayConfig()
	logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	defer logger.Close()

	logger.InfoGlobal().Msg("🌐 Starting Wolf Goat Pig Gateway (Microservices Mode)...")

	registry, err := cfg.Nacos.NewRegistry(map[string][]string{discovery.GameService: cfg.GameAddrs})
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to create registry")
	}
	defer registry.Close()

	baseClient := base.NewBaseClient(registry)
	defer baseClient.Close()
	gameSvc := wgp.NewClient(baseClient)
	logger.InfoGlobal().Msg("✅ Game service client initialized")

	wsManager := ws.NewManager()
	go wsManager.Run()

	// The gateway is a proxy: commands go to the game service over gRPC and
	// events come back through the Broadcast RPC below.
	seats := token.NewSeatIssuer(cfg.JWT.Secret, cfg.JWT.Duration)
	gatewayUC := gatewayUseCase.NewGatewayUseCase(gameSvc)
	wsHandler := gatewayHttp.NewHandler(gatewayUC, wsManager, seats)
	restHandler := wgpHttp.NewHandler(gameSvc, seats)

	grpcLis, grpcPort, err := netutil.ListenWithFallback(cfg.Server.Port)
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to listen on gRPC port")
	}
	grpcServer := grpc.NewServer()
	gatewayGrpc.Register(grpcServer, gatewayGrpc.NewHandler(wsManager))

	go func() {
		logger.InfoGlobal().Int("grpc_port", grpcPort).Msg("🚀 Gateway gRPC Service listening")
		if err := grpcServer.Serve(grpcLis); err != nil {
			logger.FatalGlobal().Err(err).Msg("Failed to serve gRPC")
		}
	}()

	ip := netutil.GetOutboundIP()
	if err := discovery.RegisterWithRetry(registry, discovery.GatewayService, ip, uint64(grpcPort), 10, 2*time.Second); err != nil {
		logger.ErrorGlobal().Err(err).Msg("Failed to register gateway after retries")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware())
	restHandler.RegisterRoutes(r.Group("/api"))
	wsHandler.RegisterRoutes(r)

	port := cfg.Server.HTTPPort
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	logger.InfoGlobal().
		Str("port", port).
		Str("ws_url", fmt.Sprintf("ws://localhost:%s/ws?token=SEAT_TOKEN", port)).
		Msg("🚀 Gateway HTTP/WebSocket running")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalGlobal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoGlobal().Msg("🛑 Shutting down Gateway...")

	if err := registry.DeregisterService(discovery.GatewayService, ip, uint64(grpcPort)); err != nil {
		logger.WarnGlobal().Err(err).Msg("Failed to deregister gateway")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorGlobal().Err(err).Msg("HTTP Server forced to shutdown")
	}

	grpcStopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(grpcStopped)
	}()
	select {
	case <-grpcStopped:
		logger.InfoGlobal().Msg("✅ gRPC Server stopped gracefully")
	case <-time.After(5 * time.Second):
		logger.WarnGlobal().Msg("⚠️ gRPC Server stop timed out, forcing Stop")
		grpcServer.Stop()
	}

	wsManager.Shutdown()
	logger.InfoGlobal().Msg("👋 Gateway shutdown complete")
}
