package config

import (
	"fmt"
	"time"
)

// --- Shared Configs ---

type ServerConfig struct {
	Port     string // gRPC port
	HTTPPort string // REST / websocket port
	Name     string // Service name registered in Nacos
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	File   string // rotated log file; empty logs to stdout only
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// URL returns the connection string in URL form for database/sql
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host        string
	Port        string
	Password    string
	DB          int
	SnapshotTTL time.Duration
}

// Addr returns host:port
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type NacosConfig struct {
	Enabled     bool
	Host        string
	Port        string
	NamespaceID string
	Group       string
}

type JWTConfig struct {
	Secret   string
	Duration time.Duration
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
		File:   getEnv("LOG_FILE", ""),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Enabled:  getEnvBool("DB_ENABLED", true),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "wgp_user"),
		Password: getEnv("DB_PASSWORD", "wgp_pass"),
		Name:     getEnv("DB_NAME", "wgp_db"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Host:        getEnv("REDIS_HOST", "localhost"),
		Port:        getEnv("REDIS_PORT", "6379"),
		Password:    getEnv("REDIS_PASSWORD", ""),
		DB:          getEnvInt("REDIS_DB", 0),
		SnapshotTTL: getEnvDuration("WGP_SNAPSHOT_TTL", 48*time.Hour),
	}
}

func loadNacosConfig() NacosConfig {
	return NacosConfig{
		Enabled:     getEnvBool("NACOS_ENABLED", true),
		Host:        getEnv("NACOS_HOST", "localhost"),
		Port:        getEnv("NACOS_PORT", "8848"),
		NamespaceID: getEnv("NACOS_NAMESPACE", "public"),
		Group:       getEnv("NACOS_GROUP", "DEFAULT_GROUP"),
	}
}

func loadJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:   getEnv("WGP_JWT_SECRET", "change-me"),
		Duration: getEnvDuration("WGP_SEAT_TTL", 24*time.Hour),
	}
}
