package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	LLM      LLMConfig      `json:"llm"`
	Engine   EngineConfig   `json:"engine"`
	Admin    AdminConfig    `json:"admin"`
}

type ServerConfig struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	CORSOrigins string `json:"cors_origins"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

type LLMConfig struct {
	Provider            string  `json:"provider"` // "openai" or "scripted"
	Model               string  `json:"model"`
	APIKey              string  `json:"api_key,omitempty"`
	BaseURL             string  `json:"base_url,omitempty"`
	TimeoutSeconds      int     `json:"timeout_seconds"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	HistoryWindow       int     `json:"history_window"` // turns included in the prompt
}

type EngineConfig struct {
	InactivityTimeoutMinutes int    `json:"inactivity_timeout_minutes"`
	SweepIntervalSeconds     int    `json:"sweep_interval_seconds"`
	BookingLink              string `json:"booking_link"`
}

type AdminConfig struct {
	JWTSecret string `json:"jwt_secret"`
}

func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

func (e EngineConfig) InactivityTimeout() time.Duration {
	return time.Duration(e.InactivityTimeoutMinutes) * time.Minute
}

func (e EngineConfig) SweepInterval() time.Duration {
	return time.Duration(e.SweepIntervalSeconds) * time.Second
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	// Add config paths
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Check for user config directory
	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".leadchat"))
	}

	// Set defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "leadchat")
	viper.SetDefault("database.database", "leadchat")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.timeout_seconds", 15)
	viper.SetDefault("llm.confidence_threshold", 0.5)
	viper.SetDefault("llm.history_window", 12)
	viper.SetDefault("engine.inactivity_timeout_minutes", 30)
	viper.SetDefault("engine.sweep_interval_seconds", 60)
	viper.SetDefault("engine.booking_link", "https://daveenci.ai/book-a-call")

	// Read config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			cfg := defaultConfig()
			loadEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvOverrides(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "leadchat",
			Password: "",
			Database: "leadchat",
			SSLMode:  "disable",
		},
		LLM: LLMConfig{
			Provider:            "openai",
			Model:               "gpt-4o-mini",
			TimeoutSeconds:      15,
			ConfidenceThreshold: 0.5,
			HistoryWindow:       12,
		},
		Engine: EngineConfig{
			InactivityTimeoutMinutes: 30,
			SweepIntervalSeconds:     60,
			BookingLink:              "https://daveenci.ai/book-a-call",
		},
	}
}

func loadEnvOverrides(cfg *Config) {
	if port := os.Getenv("LEADCHAT_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if host := os.Getenv("LEADCHAT_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if origins := os.Getenv("LEADCHAT_CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = origins
	}

	// Database overrides
	if dbHost := os.Getenv("POSTGRES_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("POSTGRES_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Database.Port = port
		}
	}
	if dbUser := os.Getenv("POSTGRES_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPass := os.Getenv("POSTGRES_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("POSTGRES_DB"); dbName != "" {
		cfg.Database.Database = dbName
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if secret := os.Getenv("LEADCHAT_JWT_SECRET"); secret != "" {
		cfg.Admin.JWTSecret = secret
	}
}
