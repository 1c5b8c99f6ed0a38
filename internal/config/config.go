package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Session stores
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port        string `yaml:"port" env:"SERVER_PORT"`
		Mode        string `yaml:"mode" env:"SERVER_MODE"`
		CORSOrigins string `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS"`
	} `yaml:"server"`

	Backend struct {
		BaseURL   string        `yaml:"base_url" env:"FORM_API_BASE_URL"`
		Timeout   time.Duration `yaml:"timeout" env:"FORM_API_TIMEOUT"`
		Policy    string        `yaml:"policy" env:"FORM_API_POLICY"`
		RateLimit float64       `yaml:"rate_limit" env:"FORM_API_RATE_LIMIT"`
		RateBurst int           `yaml:"rate_burst" env:"FORM_API_RATE_BURST"`
	} `yaml:"backend"`

	Wizard struct {
		Debounce            time.Duration `yaml:"debounce" env:"WIZARD_DEBOUNCE"`
		NextValidationScope string        `yaml:"next_validation_scope" env:"WIZARD_NEXT_VALIDATION_SCOPE"`
		SessionTTL          time.Duration `yaml:"session_ttl" env:"WIZARD_SESSION_TTL"`
		SweepSchedule       string        `yaml:"sweep_schedule" env:"WIZARD_SWEEP_SCHEDULE"`
		LoadTimeout         time.Duration `yaml:"load_timeout" env:"WIZARD_LOAD_TIMEOUT"`
	} `yaml:"wizard"`

	Session struct {
		Secret string `yaml:"secret" env:"SESSION_SECRET"`
		Issuer string `yaml:"issuer" env:"SESSION_ISSUER"`
		Store  string `yaml:"store" env:"SESSION_STORE"`
	} `yaml:"session"`

	Database struct {
		Host            string        `yaml:"host" env:"DB_HOST"`
		Port            string        `yaml:"port" env:"DB_PORT"`
		User            string        `yaml:"user" env:"DB_USER"`
		Password        string        `yaml:"password" env:"DB_PASSWORD"`
		DBName          string        `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file, an optional .env file and
// environment variables, in increasing order of precedence
func LoadConfig(configPath string) (*Config, error) {
	// Load default config with sane defaults
	config := &Config{}
	setDefaults(config)

	// Try to read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	// Validate config
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.CORSOrigins = "*"

	// Backend defaults
	config.Backend.Timeout = 10 * time.Second
	config.Backend.Policy = "demo-fallback"
	config.Backend.RateBurst = 5

	// Wizard defaults
	config.Wizard.Debounce = 150 * time.Millisecond
	config.Wizard.NextValidationScope = "step"
	config.Wizard.SessionTTL = time.Hour
	config.Wizard.SweepSchedule = "@every 1m"
	config.Wizard.LoadTimeout = 15 * time.Second

	// Session defaults
	config.Session.Issuer = "applicant-wizard"
	config.Session.Store = StoreMemory

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "applicant_wizard"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = time.Hour

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	// Recursively process the config structure and look for env tags
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Session.Secret == "" {
		return fmt.Errorf("session secret is required")
	}

	switch config.Session.Store {
	case StoreMemory:
	case StorePostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required for the postgres session store")
		}
	default:
		return fmt.Errorf("unknown session store %q", config.Session.Store)
	}

	switch config.Backend.Policy {
	case "strict":
		if strings.TrimSpace(config.Backend.BaseURL) == "" {
			return fmt.Errorf("backend base URL is required with the strict policy")
		}
	case "demo-fallback":
	default:
		return fmt.Errorf("unknown backend policy %q", config.Backend.Policy)
	}

	switch config.Wizard.NextValidationScope {
	case "step", "record":
	default:
		return fmt.Errorf("next validation scope must be step or record, got %q", config.Wizard.NextValidationScope)
	}

	if config.Wizard.Debounce < 0 {
		return fmt.Errorf("wizard debounce must not be negative")
	}
	positive := map[string]time.Duration{
		"backend timeout":     config.Backend.Timeout,
		"wizard session ttl":  config.Wizard.SessionTTL,
		"wizard load timeout": config.Wizard.LoadTimeout,
	}
	for name, value := range positive {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, value)
		}
	}

	if _, err := cron.ParseStandard(config.Wizard.SweepSchedule); err != nil {
		return fmt.Errorf("invalid sweep schedule: %w", err)
	}

	return nil
}

// AllowedOrigins splits the comma separated CORS origin list
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
