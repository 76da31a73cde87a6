// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	// RuntimeNative runs commands through the host shell.
	RuntimeNative RuntimeMode = "native"
	// RuntimeVirtual runs commands in the embedded mvdan/sh interpreter.
	RuntimeVirtual RuntimeMode = "virtual"
)

var (
	// ErrConfiguration is the sentinel wrapped by ConfigurationError.
	ErrConfiguration = errors.New("configuration error")
	// ErrConfigNotFound is returned when no configuration file exists.
	ErrConfigNotFound = errors.New("configuration file not found")
)

type (
	// RuntimeMode selects how commands are executed.
	RuntimeMode string

	// ConfigurationError reports a missing or invalid configuration value.
	// It is fatal at startup. It wraps ErrConfiguration for errors.Is().
	ConfigurationError struct {
		// Field is the offending configuration key (may be empty for file-level errors).
		Field string
		Err   error
	}

	// Command is a named, templated shell command. It always runs in the
	// recipe directory; RequiresFolder is kept for configuration
	// compatibility and does not change where it runs.
	Command struct {
		Name           string `yaml:"-" toml:"-"`
		Command        string `yaml:"command" toml:"command"`
		RequiresFolder bool   `yaml:"requiresFolder" toml:"requiresFolder"`
	}

	// CommandSet is the ordered commands mapping. Order follows the
	// configuration file, and the first entry is the fallback default.
	CommandSet []Command

	// VariableTransform derives a template variable from an existing one
	// (or from a literal) with a regular expression substitution.
	VariableTransform struct {
		Name    string `yaml:"name" toml:"name"`
		Input   string `yaml:"input" toml:"input"`
		Search  string `yaml:"search" toml:"search"`
		Replace string `yaml:"replace" toml:"replace"`
	}

	// Config is the value object consumed by the core.
	Config struct {
		ScanDirs       []string            `yaml:"scanDirs" toml:"scanDirs"`
		Commands       CommandSet          `yaml:"commands" toml:"-"`
		Variables      []VariableTransform `yaml:"variables,omitempty" toml:"variables,omitempty"`
		LogsDir        string              `yaml:"logsDir" toml:"logsDir"`
		DefaultCommand string              `yaml:"defaultCommand,omitempty" toml:"defaultCommand,omitempty"`
		Runtime        RuntimeMode         `yaml:"runtime" toml:"runtime"`
		Shell          string              `yaml:"shell,omitempty" toml:"shell,omitempty"`
		TTY            bool                `yaml:"tty" toml:"tty"`
		Verbose        bool                `yaml:"verbose" toml:"verbose"`

		// BaseDir is the directory relative paths are resolved against
		// (the directory holding the configuration file).
		BaseDir string `yaml:"-" toml:"-"`
		// Path is the configuration file that was loaded.
		Path string `yaml:"-" toml:"-"`
	}
)

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

// Unwrap returns both the sentinel and the cause.
func (e *ConfigurationError) Unwrap() []error {
	return []error{ErrConfiguration, e.Err}
}

// IsValid reports whether the runtime mode is known.
func (m RuntimeMode) IsValid() bool {
	return m == RuntimeNative || m == RuntimeVirtual
}

// UnmarshalYAML decodes a mapping of name → command, keeping its order.
func (s *CommandSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: commands must be a mapping of name to command", node.Line)
	}
	set := make(CommandSet, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		var cmd Command
		if err := value.Decode(&cmd); err != nil {
			return fmt.Errorf("command %q: %w", key.Value, err)
		}
		cmd.Name = key.Value
		set = append(set, cmd)
	}
	*s = set
	return nil
}

// MarshalYAML encodes the set back into an ordered mapping.
func (s CommandSet) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, cmd := range s {
		var value yaml.Node
		if err := value.Encode(cmd); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: cmd.Name},
			&value,
		)
	}
	return node, nil
}

// Lookup returns the command with the given name.
func (s CommandSet) Lookup(name string) (Command, bool) {
	for _, cmd := range s {
		if cmd.Name == name {
			return cmd, true
		}
	}
	return Command{}, false
}

// Names returns command names in declaration order.
func (s CommandSet) Names() []string {
	names := make([]string, len(s))
	for i, cmd := range s {
		names[i] = cmd.Name
	}
	return names
}

// DefaultCommandName returns the configured default command, falling back to
// the first declared command. Returns "" when no command is configured.
func (c *Config) DefaultCommandName() string {
	if c.DefaultCommand != "" {
		return c.DefaultCommand
	}
	if len(c.Commands) == 0 {
		return ""
	}
	return c.Commands[0].Name
}
