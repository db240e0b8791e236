// Package config provides YAML-based configuration loading for Process Map.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// JWTSecretEnv is consulted when auth.jwt_secret is empty.
const JWTSecretEnv = "PROCESSMAP_JWT_SECRET"

// Config is the top-level Process Map configuration, loaded from processmap.yaml.
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Database DatabaseConfig  `yaml:"database"`
	Auth     AuthConfig      `yaml:"auth"`
	Log      LogConfig       `yaml:"log"`
	Digest   DigestConfig    `yaml:"digest"`
	Users    []UserConfig    `yaml:"users"`
	Sections []SectionConfig `yaml:"sections"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// DatabaseConfig selects and addresses the relational store.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // sqlite, mysql, postgres
	Path     string `yaml:"path"`   // sqlite only
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"` // postgres only
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type LogConfig struct {
	Mode string `yaml:"mode"` // dev or prod
}

// DigestConfig controls the scheduled health digest.
type DigestConfig struct {
	Schedule          string `yaml:"schedule"`
	SlackWebhookURL   string `yaml:"slack_webhook_url"`
	DiscordWebhookURL string `yaml:"discord_webhook_url"`
}

// UserConfig seeds a team member.
type UserConfig struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
	Role  string `yaml:"role"`
}

// SectionConfig seeds a section of the process map.
type SectionConfig struct {
	Name        string `yaml:"name"`
	Order       int    `yaml:"order"`
	Color       string `yaml:"color"`
	Description string `yaml:"description"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost:3000"}
	}

	c.Database.Driver = strings.ToLower(c.Database.Driver)
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			c.Database.Path = "processmap.db"
		}
	case "mysql":
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
	case "postgres":
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	}
	if c.Database.Driver != "sqlite" && c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}

	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = os.Getenv(JWTSecretEnv)
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Log.Mode == "" {
		c.Log.Mode = "dev"
	}
	if c.Digest.Schedule == "" {
		c.Digest.Schedule = "0 9 * * 1-5"
	}
	for i := range c.Users {
		c.Users[i].Role = strings.ToUpper(c.Users[i].Role)
		if c.Users[i].Role == "" {
			c.Users[i].Role = "VIEWER"
		}
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	switch c.Database.Driver {
	case "sqlite":
	case "mysql", "postgres":
		if c.Database.Name == "" {
			errs = append(errs, fmt.Sprintf("database.name is required for %s", c.Database.Driver))
		}
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not one of sqlite, mysql, postgres", c.Database.Driver))
	}
	if c.Auth.TokenTTL < 0 {
		errs = append(errs, "auth.token_ttl must be positive")
	}

	emails := make(map[string]bool)
	for i, u := range c.Users {
		if u.Email == "" {
			errs = append(errs, fmt.Sprintf("users[%d].email is required", i))
		} else if emails[strings.ToLower(u.Email)] {
			errs = append(errs, fmt.Sprintf("users[%d].email %q is duplicated", i, u.Email))
		}
		emails[strings.ToLower(u.Email)] = true
		switch u.Role {
		case "ADMIN", "MANAGER", "VIEWER":
		default:
			errs = append(errs, fmt.Sprintf("users[%d].role %q is not one of ADMIN, MANAGER, VIEWER", i, u.Role))
		}
	}

	orders := make(map[int]bool)
	for i, s := range c.Sections {
		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("sections[%d].name is required", i))
		}
		if s.Order < 0 {
			errs = append(errs, fmt.Sprintf("sections[%d].order must be non-negative", i))
		}
		if orders[s.Order] {
			errs = append(errs, fmt.Sprintf("sections[%d].order %d is duplicated", i, s.Order))
		}
		orders[s.Order] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// FirstAdmin returns the email of the first configured ADMIN, or "".
func (c *Config) FirstAdmin() string {
	for _, u := range c.Users {
		if u.Role == "ADMIN" {
			return u.Email
		}
	}
	return ""
}
