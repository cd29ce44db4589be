package domain

// Config mirrors ~/.omnichat/config.yaml.
type Config struct {
	ConfigFormatVersion string           `yaml:"config_format_version"`
	AIProvider          AIProviderConfig `yaml:"ai_provider"`
	Interface           InterfaceConfig  `yaml:"interface"`
	Providers           []ProviderRecord `yaml:"providers,omitempty"`
}

// AIProviderConfig selects the active backend and its generation tunables.
type AIProviderConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model,omitempty"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// InterfaceConfig captures chat-loop level toggles.
type InterfaceConfig struct {
	ShowTimestamp bool `yaml:"show_timestamp"`
	AutoSave      bool `yaml:"auto_save"`
	MaxHistory    int  `yaml:"max_history"`
}

// ProviderRecord lets a config file override per-provider endpoints
// (local Ollama hosts, OpenAI-compatible gateways).
type ProviderRecord struct {
	ID       string `yaml:"id"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

// Generation extracts the tunables for adapter construction.
func (c Config) Generation() GenerationSettings {
	settings := DefaultGenerationSettings()
	if c.AIProvider.Temperature > 0 {
		settings.Temperature = c.AIProvider.Temperature
	}
	if c.AIProvider.MaxTokens > 0 {
		settings.MaxTokens = c.AIProvider.MaxTokens
	}
	return settings
}

// ProviderOverride returns the config record for a provider id, if present.
func (c Config) ProviderOverride(id string) (ProviderRecord, bool) {
	for _, rec := range c.Providers {
		if rec.ID == id {
			return rec, true
		}
	}
	return ProviderRecord{}, false
}
