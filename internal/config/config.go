// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for labwiz.
type Config struct {
	DataDir        string `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level"`
	LogFile        string `mapstructure:"log_file" yaml:"log_file"`
	SchemaDir      string `mapstructure:"schema_dir" yaml:"schema_dir"`
	SubmitTimeout  int    `mapstructure:"submit_timeout" yaml:"submit_timeout"` // seconds
	ToastOnInvalid bool   `mapstructure:"toast_on_invalid" yaml:"toast_on_invalid"`
	ReviewTemplate string `mapstructure:"review_template" yaml:"review_template"`
	MCPPort        int    `mapstructure:"mcp_port" yaml:"mcp_port"`
}

// keys lists every setting with its default. Each is also bound to
// LABWIZ_<KEY> and, when present, to the flag of the same name with
// underscores turned into dashes.
var keys = map[string]any{
	"data_dir":         ".labwiz",
	"log_level":        "info",
	"log_file":         "",
	"schema_dir":       "",
	"submit_timeout":   10,
	"toast_on_invalid": false,
	"review_template":  "",
	"mcp_port":         0,
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults.
// flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("labwiz")

	v.SetEnvPrefix("LABWIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, def := range keys {
		v.SetDefault(key, def)
		if err := v.BindEnv(key, "LABWIZ_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
		if flags == nil {
			continue
		}
		if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding %s flag: %w", key, err)
			}
		}
	}

	if globalPath := GlobalPath(); fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	if projectPath := ProjectPath(); fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// SubmitDeadline returns the submit timeout as a duration, falling back to
// the default when unset or negative.
func (c *Config) SubmitDeadline() time.Duration {
	if c.SubmitTimeout <= 0 {
		return time.Duration(keys["submit_timeout"].(int)) * time.Second
	}
	return time.Duration(c.SubmitTimeout) * time.Second
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns $XDG_CONFIG_HOME/labwiz/labwiz.yml, or
// ~/.config/labwiz/labwiz.yml when XDG_CONFIG_HOME is unset.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "labwiz", "labwiz.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "labwiz", "labwiz.yml")
}

// ProjectPath returns ./labwiz.yml in the current working directory.
func ProjectPath() string {
	return "labwiz.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
