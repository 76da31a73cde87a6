// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/d34dman/drupal-recipe-manager/internal/cueutil"
	"github.com/d34dman/drupal-recipe-manager/internal/issue"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application name.
	AppName = "drupal-recipe-manager"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "drupal-recipe-manager"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "yaml"
	// EnvPrefix prefixes environment overrides (DRM_LOGSDIR, DRM_RUNTIME, ...).
	EnvPrefix = "DRM"

	// DefaultLogsDir is used when logsDir is not configured.
	DefaultLogsDir = "logs"

	// maxConfigFileSize guards against accidentally pointing at a huge file.
	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific file when set.
		ConfigFilePath string
		// BaseDir is searched for drupal-recipe-manager.yaml when ConfigFilePath
		// is empty. Defaults to the process working directory.
		BaseDir string
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	fileProvider struct{}
)

// NewProvider creates a configuration provider backed by the filesystem.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return Load(ctx, opts)
}

// Load resolves, validates and decodes the configuration file, then creates
// the logs directory. All failures are returned as ActionableErrors wrapping
// a *ConfigurationError.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	path, err := resolvePath(opts)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("logsDir", DefaultLogsDir)
	v.SetDefault("runtime", string(RuntimeNative))
	v.SetDefault("tty", false)
	v.SetDefault("verbose", false)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetConfigFile(path)
	v.SetConfigType(ConfigFileExt)

	if err := v.ReadInConfig(); err != nil {
		return nil, invalidConfig(path, &ConfigurationError{Err: err})
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, invalidConfig(path, &ConfigurationError{Err: err})
	}
	if err := validateSchema(path, data); err != nil {
		return nil, invalidConfig(path, &ConfigurationError{Err: err})
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, invalidConfig(path, &ConfigurationError{Err: err})
	}

	// Scalars go through viper so that DRM_* overrides apply.
	cfg.ScanDirs = v.GetStringSlice("scanDirs")
	cfg.LogsDir = v.GetString("logsDir")
	cfg.DefaultCommand = v.GetString("defaultCommand")
	cfg.Runtime = RuntimeMode(v.GetString("runtime"))
	cfg.Shell = v.GetString("shell")
	cfg.TTY = v.GetBool("tty")
	cfg.Verbose = v.GetBool("verbose")
	cfg.Path = path
	cfg.BaseDir = filepath.Dir(path)

	if err := cfg.Validate(); err != nil {
		return nil, invalidConfig(path, err)
	}

	if err := EnsureLogsDir(&cfg); err != nil {
		return nil, issue.For("create logs directory").
			File(cfg.LogsPath()).
			Hint("Check the permissions of the parent directory").
			Wrap(&ConfigurationError{Field: "logsDir", Err: err}).
			Err()
	}

	return &cfg, nil
}

// Validate checks constraints that the schema does not express.
func (c *Config) Validate() error {
	if len(c.ScanDirs) == 0 {
		return &ConfigurationError{Field: "scanDirs", Err: errors.New("at least one directory is required")}
	}
	if len(c.Commands) == 0 {
		return &ConfigurationError{Field: "commands", Err: errors.New("at least one command is required")}
	}
	seen := make(map[string]bool, len(c.Commands))
	for _, cmd := range c.Commands {
		if seen[cmd.Name] {
			return &ConfigurationError{Field: "commands", Err: fmt.Errorf("duplicate command %q", cmd.Name)}
		}
		seen[cmd.Name] = true
		if strings.TrimSpace(cmd.Command) == "" {
			return &ConfigurationError{Field: "commands." + cmd.Name, Err: errors.New("command must not be empty")}
		}
	}
	if c.DefaultCommand != "" && !seen[c.DefaultCommand] {
		return &ConfigurationError{Field: "defaultCommand", Err: fmt.Errorf("unknown command %q", c.DefaultCommand)}
	}
	if !c.Runtime.IsValid() {
		return &ConfigurationError{Field: "runtime", Err: fmt.Errorf("invalid runtime %q (want native or virtual)", c.Runtime)}
	}
	for i, tr := range c.Variables {
		if tr.Name == "" {
			return &ConfigurationError{Field: fmt.Sprintf("variables[%d]", i), Err: errors.New("name is required")}
		}
	}
	return nil
}

// LogsPath returns the logs directory resolved against BaseDir.
func (c *Config) LogsPath() string {
	return c.Resolve(c.LogsDir)
}

// ResolvedScanDirs returns the scan directories resolved against BaseDir,
// in configured order.
func (c *Config) ResolvedScanDirs() []string {
	dirs := make([]string, len(c.ScanDirs))
	for i, dir := range c.ScanDirs {
		dirs[i] = c.Resolve(dir)
	}
	return dirs
}

// Resolve makes a relative path absolute against BaseDir.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// ApplyOverrides replaces scan directories and/or commands with CLI values.
// commandsJSON is a JSON object of name → {command, requiresFolder}; decoding
// goes through yaml.v3 (JSON is valid YAML) so the object order is kept.
func (c *Config) ApplyOverrides(scanDirs []string, commandsJSON string) error {
	if len(scanDirs) > 0 {
		c.ScanDirs = scanDirs
	}
	if strings.TrimSpace(commandsJSON) == "" {
		return nil
	}
	var set CommandSet
	if err := yaml.Unmarshal([]byte(commandsJSON), &set); err != nil {
		return &ConfigurationError{Field: "commands", Err: fmt.Errorf("invalid JSON format for commands option: %w", err)}
	}
	if len(set) == 0 {
		return &ConfigurationError{Field: "commands", Err: errors.New("commands option must define at least one command")}
	}
	c.Commands = set
	if _, ok := set.Lookup(c.DefaultCommand); !ok {
		c.DefaultCommand = ""
	}
	return c.Validate()
}

// EnsureLogsDir creates the logs directory if it doesn't exist.
func EnsureLogsDir(c *Config) error {
	return os.MkdirAll(c.LogsPath(), 0o755)
}

// GenerateYAML renders the configuration in its file format.
func GenerateYAML(c *Config) (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// GenerateTOML renders the configuration as TOML. The commands mapping is
// emitted as a table keyed by command name.
func GenerateTOML(c *Config) (string, error) {
	type tomlView struct {
		Config
		Commands map[string]Command `toml:"commands"`
	}
	view := tomlView{Config: *c, Commands: make(map[string]Command, len(c.Commands))}
	for _, cmd := range c.Commands {
		view.Commands[cmd.Name] = cmd
	}
	out, err := toml.Marshal(view)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func resolvePath(opts LoadOptions) (string, error) {
	path := opts.ConfigFilePath
	if path == "" {
		base := opts.BaseDir
		if base == "" {
			wd, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("failed to get working directory: %w", err)
			}
			base = wd
		}
		path = filepath.Join(base, ConfigFileName+"."+ConfigFileExt)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path %q: %w", path, err)
	}

	if !fileExists(abs) {
		return "", issue.For("load configuration").
			File(abs).
			Hint("Run the command from your project root").
			Hint("Pass the file explicitly with --config").
			Wrap(&ConfigurationError{Err: ErrConfigNotFound}).
			Err()
	}
	return abs, nil
}

// validateSchema unifies the YAML document with the #Config definition.
func validateSchema(path string, data []byte) error {
	return cueutil.ValidateYAML(configSchema, data, "#Config",
		cueutil.WithFilename(filepath.Base(path)),
		cueutil.WithMaxFileSize(maxConfigFileSize))
}

func invalidConfig(path string, err error) error {
	return issue.For("load configuration").
		File(path).
		Hint("Check that the file contains valid YAML").
		Hint("Verify scanDirs, commands and variables match the expected shape").
		Wrap(err).
		Err()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
