// Command ops is the operations backend: it lists registered instances, inspects
// games and records profiles from running game services.
package main

import (
	"github.com/gin-gonic/gin"

	"github.com/stuagano/wolf-goat-pig/internal/config"
	"github.com/stuagano/wolf-goat-pig/pkg/discovery"
	"github.com/stuagano/wolf-goat-pig/pkg/grpc_client/base"
	"github.com/stuagano/wolf-goat-pig/pkg/grpc_client/wgp"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
)

func main() {
	cfg := config.LoadGatewayConfig()
	logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	defer logger.Close()
	logger.InfoGlobal().Msg("🚀 Starting OPS Center Backend...")

	registry, err := cfg.Nacos.NewRegistry(map[string][]string{discovery.GameService: cfg.GameAddrs})
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to create registry")
	}
	defer registry.Close()

	client := base.NewBaseClient(registry)
	defer client.Close()

	ops := &opsServer{
		registry:   registry,
		client:     client,
		games:      wgp.NewClient(client),
		storageDir: getEnv("OPS_STORAGE_DIR", "./storage/pprof"),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware())
	ops.RegisterRoutes(r.Group("/api"))

	port := getEnv("OPS_PORT", "8080")
	logger.InfoGlobal().Msgf("🚀 OPS Server running at :%s", port)
	if err := r.Run(":" + port); err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to start server")
	}
}
