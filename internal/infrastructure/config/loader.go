// Package config loads YAML configuration from disk.
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/omnichat/omnichat/assets"
	"github.com/omnichat/omnichat/internal/domain"
	"github.com/omnichat/omnichat/internal/pkg/filesystem"
	"github.com/omnichat/omnichat/internal/ports"
)

// FileLoader loads YAML configuration from ~/.omnichat/config.yaml
// (overridable via OMNICHAT_CONFIG or an explicit path).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. path may be empty.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is not an error: the
// embedded default config is written out and returned.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := os.WriteFile(path, assets.DefaultConfigYAML, 0o600); err != nil {
				return domain.Config{}, err
			}
			data = assets.DefaultConfigYAML
		} else {
			return domain.Config{}, err
		}
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.Config{}, err
	}
	return hydrateDefaults(raw), nil
}

// rawConfig shadows domain.Config with pointer booleans so an absent key can
// be told apart from an explicit false.
type rawConfig struct {
	ConfigFormatVersion string                  `yaml:"config_format_version"`
	AIProvider          domain.AIProviderConfig `yaml:"ai_provider"`
	Interface           rawInterface            `yaml:"interface"`
	Providers           []domain.ProviderRecord `yaml:"providers"`
}

type rawInterface struct {
	ShowTimestamp *bool `yaml:"show_timestamp"`
	AutoSave      *bool `yaml:"auto_save"`
	MaxHistory    int   `yaml:"max_history"`
}

// Path reports where the configuration is read from.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return expandPath(l.overridePath)
	}
	if custom := os.Getenv("OMNICHAT_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".omnichat", "config.yaml")
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// hydrateDefaults fills in the documented fallbacks for absent keys:
// provider gemini, temperature 0.7, max_tokens 1000, max_history 20,
// auto_save and show_timestamp on.
func hydrateDefaults(raw rawConfig) domain.Config {
	cfg := domain.Config{
		ConfigFormatVersion: raw.ConfigFormatVersion,
		AIProvider:          raw.AIProvider,
		Providers:           raw.Providers,
		Interface: domain.InterfaceConfig{
			ShowTimestamp: boolOr(raw.Interface.ShowTimestamp, true),
			AutoSave:      boolOr(raw.Interface.AutoSave, true),
			MaxHistory:    raw.Interface.MaxHistory,
		},
	}
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.AIProvider.Provider == "" {
		cfg.AIProvider.Provider = "gemini"
	}
	if cfg.AIProvider.Temperature == 0 {
		cfg.AIProvider.Temperature = 0.7
	}
	if cfg.AIProvider.MaxTokens == 0 {
		cfg.AIProvider.MaxTokens = 1000
	}
	if cfg.Interface.MaxHistory == 0 {
		cfg.Interface.MaxHistory = 20
	}
	return cfg
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(filesystem.UserHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
