package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Storage  StorageConfig `yaml:"storage"`
	Auth     AuthConfig    `yaml:"auth"`
	LogLevel string        `yaml:"log_level"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type StorageConfig struct {
	// Backend: "jsonfile" или "memory".
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

func defaults() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":4000"},
		Storage:  StorageConfig{Backend: "jsonfile", Dir: "data"},
		Auth:     AuthConfig{JWTSecret: os.Getenv("JWT_SECRET"), TokenTTL: 72 * time.Hour},
		LogLevel: "info",
	}
}

// Load читает yaml-конфиг с подстановкой переменных окружения.
// Отсутствующий файл - не ошибка: берутся значения по умолчанию.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret (or JWT_SECRET) is not set")
	}

	return cfg, nil
}
