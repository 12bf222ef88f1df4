package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Config is the full application configuration. Every service loads the
// same structure from its own JSON file; unused sections stay at defaults.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Consul    ConsulConfig    `json:"consul"`
	Jaeger    JaegerConfig    `json:"jaeger"`
	Auth      AuthConfig      `json:"auth"`
	Clients   ClientsConfig   `json:"clients"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Log       LogConfig       `json:"log"`
}

type ServerConfig struct {
	Name     string `json:"name"`      // service name (also the Consul registration name)
	Host     string `json:"host"`      // bind address
	HTTPPort int    `json:"http_port"` // REST port
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	MaxIdle  int    `json:"max_idle"`
	MaxOpen  int    `json:"max_open"`
}

type ConsulConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // sampling rate 0.0-1.0
}

// AuthConfig holds JWT settings. All services validate tokens; only the
// auth service issues them.
type AuthConfig struct {
	JWTSecret   string `json:"jwt_secret"`
	Issuer      string `json:"issuer"`
	Audience    string `json:"audience"`
	TokenTTLHrs int    `json:"token_ttl_hours"`
}

// ClientsConfig holds addresses of sibling services reached over HTTP.
type ClientsConfig struct {
	VehicleServiceURL  string `json:"vehicle_service_url"`
	AuthServiceURL     string `json:"auth_service_url"`
	OrderServiceURL    string `json:"order_service_url"`
	RequestTimeoutSecs int    `json:"request_timeout_seconds"`
}

type RateLimitConfig struct {
	Capacity   int64 `json:"capacity"`    // bucket size
	RefillRate int64 `json:"refill_rate"` // tokens per second
	// Login gets its own tighter sliding window on the auth service.
	LoginMaxAttempts int   `json:"login_max_attempts"`
	LoginWindowSecs  int64 `json:"login_window_seconds"`
}

type LogConfig struct {
	Backend string `json:"backend"` // logrus, zap
	Level   string `json:"level"`   // debug, info, warn, error
	Format  string `json:"format"`  // json, text
	Output  string `json:"output"`  // stdout, file
	Path    string `json:"path"`    // log file path when output=file
}

// LoadConfig reads a JSON config file. A missing file falls back to the
// development defaults rather than failing, so services run out of the box.
func LoadConfig(configPath string) (*Config, error) {
	cfg := defaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		logrus.Warnf("config file not found: %s, using default config", configPath)
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// defaultConfig is the development-environment configuration.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "default-service",
			Host:     "0.0.0.0",
			HTTPPort: 8080,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "automercado",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Consul: ConsulConfig{
			Host: "localhost",
			Port: 8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-secret-change-me",
			Issuer:      "automercado-auth",
			Audience:    "automercado",
			TokenTTLHrs: 24,
		},
		Clients: ClientsConfig{
			VehicleServiceURL:  "http://localhost:8082",
			AuthServiceURL:     "http://localhost:8081",
			OrderServiceURL:    "http://localhost:8083",
			RequestTimeoutSecs: 10,
		},
		RateLimit: RateLimitConfig{
			Capacity:         100,
			RefillRate:       50,
			LoginMaxAttempts: 5,
			LoginWindowSecs:  60,
		},
		Log: LogConfig{
			Backend: "logrus",
			Level:   "debug",
			Format:  "text",
			Output:  "stdout",
			Path:    "logs/app.log",
		},
	}
}
