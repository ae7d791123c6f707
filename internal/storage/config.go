package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core/csp"
	"github.com/Lin-Jiong-HDU/guardrail/internal/core/security"
	"github.com/spf13/viper"
)

const (
	ConfigFileName = "config"
	ConfigFileType = "yaml"
	AppDirName     = ".guardrail"
	EnvPrefix      = "GUARDRAIL"
	AuditFileName  = "audit.jsonl"
)

var config *Config

// Config holds the application configuration
type Config struct {
	Security SecurityConfig    `mapstructure:"security"`
	Executor ExecutorConfig    `mapstructure:"executor"`
	CSP      csp.RequestConfig `mapstructure:"csp"`
	Server   ServerConfig      `mapstructure:"server"`
	Audit    AuditConfig       `mapstructure:"audit"`
	Log      LogConfig         `mapstructure:"log"`
}

// SecurityConfig holds the command allow-list
type SecurityConfig struct {
	AllowedCommands []string `mapstructure:"allowed_commands"`
}

// ExecutorConfig holds command execution limits
type ExecutorConfig struct {
	// Timeout is in seconds.
	Timeout int `mapstructure:"timeout"`
}

// ServerConfig holds the content server settings
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// Exec enables POST /api/exec, which runs validated operations.
	Exec bool `mapstructure:"exec"`
}

// AuditConfig holds audit log settings
type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	File    string `mapstructure:"file"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AllowedCommandSet freezes the configured allow-list. Invalid entries
// are an error rather than being skipped.
func (c *Config) AllowedCommandSet() (*security.AllowedCommandSet, error) {
	set, err := security.NewAllowedCommandSet(c.Security.AllowedCommands)
	if err != nil {
		return nil, fmt.Errorf("security.allowed_commands: %w", err)
	}
	return set, nil
}

// ExecutorTimeout returns the per-command timeout.
func (c *Config) ExecutorTimeout() time.Duration {
	return time.Duration(c.Executor.Timeout) * time.Second
}

// AuditPath returns the audit log file, defaulting to the app directory.
func (c *Config) AuditPath() (string, error) {
	if c.Audit.File != "" {
		return c.Audit.File, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AuditFileName), nil
}

// GetConfigDir returns the guardrail config directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, AppDirName), nil
}

// InitConfig loads ~/.guardrail/config.yaml, falling back to defaults,
// with GUARDRAIL_* environment overrides.
func InitConfig() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(configDir)
	if err != nil {
		return nil, err
	}

	config = cfg
	return config, nil
}

// LoadConfig reads the config file from dir without touching the
// package-level config.
func LoadConfig(dir string) (*Config, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	v := newViper(dir)
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not exists)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func newViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileType)
	v.AddConfigPath(dir)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("security.allowed_commands", security.DefaultAllowedCommands())

	v.SetDefault("executor.timeout", 300)

	v.SetDefault("csp.development", false)
	v.SetDefault("csp.dev_server_url", "")

	v.SetDefault("server.addr", "127.0.0.1:8787")
	v.SetDefault("server.exec", false)

	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// GetConfig returns the loaded config
func GetConfig() *Config {
	return config
}

// SaveConfig saves cfg to ~/.guardrail/config.yaml
func SaveConfig(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := newViper(configDir)

	v.Set("security.allowed_commands", cfg.Security.AllowedCommands)
	v.Set("executor.timeout", cfg.Executor.Timeout)
	v.Set("csp.development", cfg.CSP.IsDevelopment)
	v.Set("csp.dev_server_url", cfg.CSP.DevServerURL)
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("server.exec", cfg.Server.Exec)
	v.Set("audit.enabled", cfg.Audit.Enabled)
	v.Set("audit.file", cfg.Audit.File)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)

	configPath := filepath.Join(configDir, ConfigFileName+"."+ConfigFileType)
	return v.WriteConfigAs(configPath)
}
