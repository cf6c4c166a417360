package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTIssuer    = "JWT_ISSUER"
	EnvJWTAudience  = "JWT_AUDIENCE"
	EnvJWTExpiry    = "JWT_EXPIRY"
	EnvUploadDir    = "UPLOAD_DIR"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// JWTConfig holds token signing secret, issuer/audience, and expiry settings.
type JWTConfig struct {
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	Audience string        `yaml:"audience"`
	Expiry   time.Duration `yaml:"expiry"`
}

// LoadDatabaseDSN reads the database DSN from the YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	// fileConfig maps the YAML fields needed for DSN resolution.
	type fileConfig struct {
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// Token lifetime defaults when config omits or invalidates them.
const (
	defaultJWTExpiry   = 8 * time.Hour
	defaultJWTIssuer   = "TopconBlog"
	defaultJWTAudience = "TopconBlogApp"
)

// LoadJWTConfig loads JWT settings from the YAML config file.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	// fileConfig maps the YAML fields needed for JWT settings.
	type fileConfig struct {
		JWT JWTConfig `yaml:"jwt"`
	}

	result := JWTConfig{Expiry: defaultJWTExpiry}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.JWT
		}
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.Secret = secret
	}
	if issuer := strings.TrimSpace(os.Getenv(EnvJWTIssuer)); issuer != "" {
		result.Issuer = issuer
	}
	if audience := strings.TrimSpace(os.Getenv(EnvJWTAudience)); audience != "" {
		result.Audience = audience
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}

	if result.Issuer == "" {
		result.Issuer = defaultJWTIssuer
	}
	if result.Audience == "" {
		result.Audience = defaultJWTAudience
	}
	if result.Expiry <= 0 {
		result.Expiry = defaultJWTExpiry
	}
	return result, nil
}

// defaultUploadDir is used when the config omits the upload directory.
const defaultUploadDir = "./uploads"

// LoadUploadDir reads the image upload directory from the YAML config file.
func LoadUploadDir(configPath string) string {
	if dir := strings.TrimSpace(os.Getenv(EnvUploadDir)); dir != "" {
		return dir
	}

	// fileConfig maps the YAML fields needed for upload settings.
	type fileConfig struct {
		UploadDir string `yaml:"upload-dir"`
		Uploads   struct {
			Dir string `yaml:"dir"`
		} `yaml:"uploads"`
	}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			if dir := strings.TrimSpace(cfg.UploadDir); dir != "" {
				return dir
			}
			if dir := strings.TrimSpace(cfg.Uploads.Dir); dir != "" {
				return dir
			}
		}
	}
	return defaultUploadDir
}
