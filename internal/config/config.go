// Package config loads and hot-reloads the client's YAML
// configuration: the MPD server address, optional authentication and
// partition selection, per-mode key bindings, resolver disambiguation
// timeouts, and the dispatcher's reconnect policy.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/famish99/mpdc/internal/keys"
)

// Config is the full, validated application configuration.
type Config struct {
	Address  string          `yaml:"address"`
	Password string          `yaml:"password,omitempty"`
	Partition PartitionConfig `yaml:"partition,omitempty"`

	Keybinds KeymapConfig `yaml:"keybinds"`

	NormalTimeoutMs int `yaml:"normal_timeout_ms"`
	InsertTimeoutMs int `yaml:"insert_timeout_ms"`

	Reconnect ReconnectConfig `yaml:"reconnect"`
}

// PartitionConfig selects (and optionally creates) an MPD partition on
// connect.
type PartitionConfig struct {
	Name       string `yaml:"name,omitempty"`
	Autocreate bool   `yaml:"autocreate,omitempty"`
}

// KeymapConfig holds the raw, serialised key bindings for each input
// mode. Keys are key sequences encoded per the grammar
// `internal/keys.ParseKeySequence` accepts; values are ordered lists of
// action names.
type KeymapConfig struct {
	Normal map[string][]string `yaml:"normal"`
	Insert map[string][]string `yaml:"insert"`
}

// ReconnectConfig bounds the Query Dispatcher's reconnect policy.
type ReconnectConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BackoffMs   int `yaml:"backoff_ms"`
}

// DefaultConfig returns a usable configuration pointing at a
// localhost MPD instance with a minimal navigation keymap.
func DefaultConfig() *Config {
	return &Config{
		Address: "127.0.0.1:6600",
		Keybinds: KeymapConfig{
			Normal: map[string][]string{
				"j":     {"Down"},
				"k":     {"Up"},
				"g":     {"Top"},
				"G":     {"Bottom"},
				"<C-d>": {"DownHalf"},
				"<C-u>": {"UpHalf"},
				"<CR>":  {"Confirm"},
				"q":     {"Quit"},
				"<Space>": {"PlayPause"},
				">":     {"Next"},
				"<":     {"Previous"},
				"/":     {"EnterSearch"},
			},
			Insert: map[string][]string{
				"<Esc>": {"Close"},
				"<CR>":  {"Confirm"},
			},
		},
		NormalTimeoutMs: 500,
		InsertTimeoutMs: 500,
		Reconnect: ReconnectConfig{
			MaxAttempts: 5,
			BackoffMs:   1000,
		},
	}
}

// LoadConfig loads configuration from path, falling back to
// DefaultConfig when the file does not exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as YAML.
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// NormalBindings parses the normal-mode keymap into trie bindings.
func (c *Config) NormalBindings() ([]keys.Binding, error) {
	return toBindings(c.Keybinds.Normal)
}

// InsertBindings parses the insert-mode keymap into trie bindings.
func (c *Config) InsertBindings() ([]keys.Binding, error) {
	return toBindings(c.Keybinds.Insert)
}

func toBindings(raw map[string][]string) ([]keys.Binding, error) {
	bindings := make([]keys.Binding, 0, len(raw))
	for seqStr, actionNames := range raw {
		seq, err := keys.ParseKeySequence(seqStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid key sequence %q: %w", seqStr, err)
		}
		actions := make([]keys.Action, len(actionNames))
		for i, name := range actionNames {
			actions[i] = keys.Action(name)
		}
		bindings = append(bindings, keys.Binding{Sequence: seq, Actions: actions})
	}
	return bindings, nil
}
