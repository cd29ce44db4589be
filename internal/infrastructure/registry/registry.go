// Package registry maps provider identifiers to adapter constructors.
//
// The registry is an explicit value owned by the application container, not a
// package global: tests construct a fresh one and register stubs freely.
package registry

import (
	"fmt"

	"github.com/omnichat/omnichat/internal/domain"
	"github.com/omnichat/omnichat/internal/infrastructure/ai"
	"github.com/omnichat/omnichat/internal/ports"
)

// Builder constructs one adapter. The secret argument is empty for providers
// that do not require one.
type Builder func(model string, settings domain.GenerationSettings, secret string) (ports.Provider, error)

type entry struct {
	descriptor domain.ProviderDescriptor
	build      Builder
	available  func() bool
}

// Registry holds the provider table in registration order. Registration order
// is display order; failover priority is the policy's concern, not ours.
type Registry struct {
	order   []string
	entries map[string]entry
	secrets ports.SecretResolver
}

// New builds a registry seeded with the built-in backends.
func New(secrets ports.SecretResolver) *Registry {
	r := &Registry{
		entries: make(map[string]entry),
		secrets: secrets,
	}

	r.Register(ai.GeminiDescriptor(), func(model string, settings domain.GenerationSettings, secret string) (ports.Provider, error) {
		return ai.NewGeminiProvider(model, settings, secret)
	}, nil)
	r.Register(ai.OpenAIDescriptor(), func(model string, settings domain.GenerationSettings, secret string) (ports.Provider, error) {
		return ai.NewOpenAIProvider(model, settings, secret)
	}, nil)
	r.Register(ai.ClaudeDescriptor(), func(model string, settings domain.GenerationSettings, secret string) (ports.Provider, error) {
		return ai.NewClaudeProvider(model, settings, secret)
	}, nil)
	r.Register(ai.GroqDescriptor(), func(model string, settings domain.GenerationSettings, secret string) (ports.Provider, error) {
		return ai.NewGroqProvider(model, settings, secret)
	}, nil)
	r.Register(ai.OllamaDescriptor(), func(model string, settings domain.GenerationSettings, _ string) (ports.Provider, error) {
		return ai.NewOllamaProvider(model, settings)
	}, func() bool {
		return ai.OllamaReachable(ai.OllamaHost())
	})

	return r
}

// Register adds (or replaces) a backend. available may be nil for backends
// whose client dependency is always compiled in.
func (r *Registry) Register(descriptor domain.ProviderDescriptor, build Builder, available func() bool) {
	if _, exists := r.entries[descriptor.ID]; !exists {
		r.order = append(r.order, descriptor.ID)
	}
	r.entries[descriptor.ID] = entry{descriptor: descriptor, build: build, available: available}
}

// Create constructs a ready adapter for the given provider id. An empty model
// selects the registered default. Secret validity is deliberately not checked
// here; a wrong secret surfaces on the first real Invoke.
func (r *Registry) Create(id, model string, settings domain.GenerationSettings) (ports.Provider, error) {
	ent, ok := r.entries[id]
	if !ok {
		return nil, &domain.UnsupportedProviderError{ID: id, Available: r.List()}
	}
	if ent.available != nil && !ent.available() {
		return nil, &domain.DependencyMissingError{ID: id, Reason: "backend client unavailable"}
	}

	var secret string
	if ent.descriptor.RequiresSecret {
		resolved, err := r.secrets.Resolve(ent.descriptor)
		if err != nil {
			return nil, &domain.ConstructionError{ID: id, Err: fmt.Errorf("resolve secret: %w", err)}
		}
		secret = resolved
	}

	if model == "" {
		model = ent.descriptor.DefaultModel
	}

	provider, err := ent.build(model, settings, secret)
	if err != nil {
		switch err.(type) {
		case *domain.ConstructionError, *domain.DependencyMissingError:
			return nil, err
		default:
			return nil, &domain.ConstructionError{ID: id, Err: err}
		}
	}
	return provider, nil
}

// List returns registered ids in registration order.
func (r *Registry) List() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// IsAvailable reports whether the backend's client dependency is usable,
// independent of secret validity.
func (r *Registry) IsAvailable(id string) bool {
	ent, ok := r.entries[id]
	if !ok {
		return false
	}
	if ent.available == nil {
		return true
	}
	return ent.available()
}

// Models returns the static catalog for a provider. Unknown ids yield an
// empty list, not an error.
func (r *Registry) Models(id string) []domain.ModelInfo {
	ent, ok := r.entries[id]
	if !ok {
		return nil
	}
	return ent.descriptor.Models
}

// Describe returns the static descriptor for a provider id.
func (r *Registry) Describe(id string) (domain.ProviderDescriptor, bool) {
	ent, ok := r.entries[id]
	if !ok {
		return domain.ProviderDescriptor{}, false
	}
	return ent.descriptor, true
}

var _ ports.ProviderFactory = (*Registry)(nil)
