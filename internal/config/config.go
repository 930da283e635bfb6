package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the storefront
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Redis    RedisConfig    `yaml:"redis"`
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RabbitMQConfig holds RabbitMQ connection configuration.
// An empty host disables the broker and keeps change events in process.
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// RedisConfig holds the session revocation store address.
// An empty addr keeps revocations in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CartIdleTTL     time.Duration `yaml:"cart_idle_ttl"`
}

// AuthConfig holds the admin allow-list and session signing settings
type AuthConfig struct {
	JWTSecret  string         `yaml:"jwt_secret"`
	SessionTTL time.Duration  `yaml:"session_ttl"`
	Admins     []AdminAccount `yaml:"admins"`
}

// AdminAccount is one allow-list entry. PasswordHash is a bcrypt hash.
type AdminAccount struct {
	Username     string `yaml:"username"`
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"`
}

// Default returns the configuration used when a key is missing from the file
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "foodstall", Database: "foodstall", MaxConns: 10, MinConns: 1},
		RabbitMQ: RabbitMQConfig{Port: 5672, User: "guest", Password: "guest"},
		Server: ServerConfig{
			Port:            3000,
			ShutdownTimeout: 10 * time.Second,
			CartIdleTTL:     2 * time.Hour,
		},
		Auth: AuthConfig{SessionTTL: 12 * time.Hour},
	}
}

// Load reads configuration from a YAML file and applies environment overrides
func Load(filename string) (*Config, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	cfg, err := Parse(content)
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes YAML content on top of the defaults
func Parse(content []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields every command needs
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port <= 0 {
		return fmt.Errorf("database.port must be positive")
	}
	if c.Database.MaxConns <= 0 || c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns must be between 0 and database.max_conns")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}
	for i, admin := range c.Auth.Admins {
		if admin.Username == "" || admin.Email == "" {
			return fmt.Errorf("auth.admins[%d]: username and email are required", i)
		}
		if admin.PasswordHash == "" {
			return fmt.Errorf("auth.admins[%d]: password_hash is required", i)
		}
	}
	return nil
}

// applyEnv overrides scalar values with FOODSTALL_<SECTION>_<KEY> variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("FOODSTALL_DATABASE_HOST", &c.Database.Host)
	str("FOODSTALL_DATABASE_USER", &c.Database.User)
	str("FOODSTALL_DATABASE_PASSWORD", &c.Database.Password)
	str("FOODSTALL_DATABASE_NAME", &c.Database.Database)
	str("FOODSTALL_RABBITMQ_HOST", &c.RabbitMQ.Host)
	str("FOODSTALL_RABBITMQ_USER", &c.RabbitMQ.User)
	str("FOODSTALL_RABBITMQ_PASSWORD", &c.RabbitMQ.Password)
	str("FOODSTALL_REDIS_ADDR", &c.Redis.Addr)
	str("FOODSTALL_REDIS_PASSWORD", &c.Redis.Password)
	str("FOODSTALL_AUTH_JWT_SECRET", &c.Auth.JWTSecret)

	for key, dst := range map[string]*int{
		"FOODSTALL_DATABASE_PORT": &c.Database.Port,
		"FOODSTALL_RABBITMQ_PORT": &c.RabbitMQ.Port,
		"FOODSTALL_SERVER_PORT":   &c.Server.Port,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}

// BrokerEnabled reports whether change events go through RabbitMQ
func (c *Config) BrokerEnabled() bool {
	return c.RabbitMQ.Host != ""
}
