package domain

// ModelInfo is one static catalog entry for a provider. Informational only;
// producing it never touches the network.
type ModelInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	BestFor     string `json:"best_for"`
}

// FreeTier describes a provider's free-tier allowance, when one exists.
// Display metadata only.
type FreeTier struct {
	RequestsPerDay  int
	TokensPerMinute int
	Notes           string
}

// ProviderDescriptor is the static metadata for one backend. Defined at
// startup, never mutated during a session.
type ProviderDescriptor struct {
	ID             string
	DisplayName    string
	RequiresSecret bool
	SecretEnvVar   string
	DefaultModel   string
	Models         []ModelInfo
	FreeTier       *FreeTier
}

// Model looks up a catalog entry by name.
func (d ProviderDescriptor) Model(name string) (ModelInfo, bool) {
	for _, m := range d.Models {
		if m.Name == name {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// GenerationSettings carries the tunables handed to an adapter at
// construction time.
type GenerationSettings struct {
	Temperature float64
	MaxTokens   int
}

// DefaultGenerationSettings mirrors the documented configuration defaults.
func DefaultGenerationSettings() GenerationSettings {
	return GenerationSettings{Temperature: 0.7, MaxTokens: 1000}
}
