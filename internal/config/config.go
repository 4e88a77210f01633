package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	ServerAddr          string `mapstructure:"SERVER_ADDR"`
	DatabaseURL         string `mapstructure:"DATABASE_URL"`
	DatabaseReplicaURLs string `mapstructure:"DATABASE_REPLICA_URLS"`
	JWTSecret           string `mapstructure:"JWT_SECRET"`
	RedisAddr           string `mapstructure:"REDIS_ADDR"`
	RedisPassword       string `mapstructure:"REDIS_PASSWORD"`
}

var AppConfig *Config

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.SetDefault("SERVER_ADDR", ":8080")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}

// ReplicaURLs returns the configured read-replica DSNs, if any.
func (c *Config) ReplicaURLs() []string {
	if c.DatabaseReplicaURLs == "" {
		return nil
	}
	parts := strings.Split(c.DatabaseReplicaURLs, ",")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			urls = append(urls, p)
		}
	}
	return urls
}
