package config

// GameConfig configures the game service
type GameConfig struct {
	Server     ServerConfig
	Log        LogConfig
	Redis      RedisConfig
	Database   DatabaseConfig
	Nacos      NacosConfig
	RepoType   string // memory or redis
	CourseFile string // YAML course table; empty uses the built-in course
	NodeID     int64  // snowflake node, unique per game service instance
	// GatewayAddrs lists gateway instances when Nacos is disabled
	GatewayAddrs []string
}

// LoadGameConfig loads configuration for the game service
func LoadGameConfig() *GameConfig {
	return &GameConfig{
		Server: ServerConfig{
			Port: getEnv("GAME_SERVER_PORT", "50052"),
			Name: "wgp-game-service",
		},
		Log:        loadLogConfig(),
		Redis:      loadRedisConfig(),
		Database:   loadDatabaseConfig(),
		Nacos:      loadNacosConfig(),
		RepoType:   getEnv("WGP_REPO_TYPE", "memory"),
		CourseFile: getEnv("WGP_COURSE_FILE", ""),
		NodeID:     int64(getEnvInt("WGP_NODE_ID", 1)),

		GatewayAddrs: splitList(getEnv("WGP_GATEWAY_ADDRS", "")),
	}
}
