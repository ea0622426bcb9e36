package config

import "github.com/spf13/viper"

type Config struct {
	ServerPort        string `mapstructure:"SERVER_PORT"`
	BackendURL        string `mapstructure:"BACKEND_URL"`
	BackendTimeoutSec int    `mapstructure:"BACKEND_TIMEOUT_SEC"`
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	DataDir           string `mapstructure:"DATA_DIR"`
}

func Load() Config {
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_PORT", ":8080")
	viper.SetDefault("BACKEND_URL", "http://localhost:9000")
	viper.SetDefault("BACKEND_TIMEOUT_SEC", 10)
	viper.SetDefault("DATA_DIR", "./data")

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
