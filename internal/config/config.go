package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/snapit/lambdapack/internal/rules"
)

// Config represents the application configuration.
type Config struct {
	Roots    []Root         `yaml:"roots"`
	Function FunctionConfig `yaml:"function"`
	Archive  ArchiveConfig  `yaml:"archive"`
	History  HistoryConfig  `yaml:"history,omitempty"`
}

// Root is one named source directory packaged by the bulk packager.
// Roots are explicit configuration passed into the packaging entry points,
// never process-wide state, so callers can run different root sets in one
// process.
type Root struct {
	Name string `yaml:"name"`
	Path string `yaml:"path,omitempty"` // Defaults to Name
}

// FunctionConfig describes the selective packager's deployable unit.
type FunctionConfig struct {
	Dir           string       `yaml:"dir"`
	Output        string       `yaml:"output,omitempty"`         // Defaults to function.zip
	Files         []string     `yaml:"files,omitempty"`          // Top-level files, defaults to index.js + package.json
	DependencyDir string       `yaml:"dependency_dir,omitempty"` // Defaults to node_modules
	ExtraExcludes []rules.Rule `yaml:"extra_excludes,omitempty"`
}

// ArchiveConfig controls bulk archive naming.
type ArchiveConfig struct {
	NamePrefix string `yaml:"name_prefix,omitempty"` // Prepended to the root name
}

// HistoryConfig controls run-history persistence. An empty path disables it.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist, just log it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParseFailed, err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in defaulted fields and validates root entries.
func (c *Config) applyDefaults() error {
	for i := range c.Roots {
		if c.Roots[i].Name == "" {
			return fmt.Errorf("%w: index %d", ErrRootUnnamed, i)
		}
		if c.Roots[i].Path == "" {
			c.Roots[i].Path = c.Roots[i].Name
		}
	}

	if c.Function.Output == "" {
		c.Function.Output = "function.zip"
	}
	if len(c.Function.Files) == 0 {
		c.Function.Files = []string{"index.js", "package.json"}
	}
	if c.Function.DependencyDir == "" {
		c.Function.DependencyDir = "node_modules"
	}
	return nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, configPath)
	}

	example := Config{
		Roots: []Root{
			{Name: "qr-operations"},
			{Name: "url-operations"},
			{Name: "auth-operations"},
		},
		Function: FunctionConfig{
			Dir:           "stripe-operations",
			Output:        "function.zip",
			Files:         []string{"index.js", "package.json"},
			DependencyDir: "node_modules",
		},
		Archive: ArchiveConfig{
			NamePrefix: "snapit-",
		},
		History: HistoryConfig{
			Path: ".lambdapack/history.db",
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
