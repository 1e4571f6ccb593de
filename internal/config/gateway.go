package config

import "strings"

type GatewayConfig struct {
	Server ServerConfig
	Log    LogConfig
	Nacos  NacosConfig
	JWT    JWTConfig
	// GameAddrs lists game service instances when Nacos is disabled
	GameAddrs []string
}

// LoadGatewayConfig loads configuration for the gateway
func LoadGatewayConfig() *GatewayConfig {
	return &GatewayConfig{
		Server: ServerConfig{
			Port:     getEnv("GATEWAY_GRPC_PORT", "0"),
			HTTPPort: getEnv("GATEWAY_SERVER_PORT", "8081"),
			Name:     "wgp-gateway-service",
		},
		Log:       loadLogConfig(),
		Nacos:     loadNacosConfig(),
		JWT:       loadJWTConfig(),
		GameAddrs: splitList(getEnv("WGP_GAME_ADDRS", "")),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
