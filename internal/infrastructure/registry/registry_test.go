package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/omnichat/omnichat/internal/domain"
	"github.com/omnichat/omnichat/internal/ports"
)

type staticSecrets map[string]string

func (s staticSecrets) Resolve(descriptor domain.ProviderDescriptor) (string, error) {
	if !descriptor.RequiresSecret {
		return "", nil
	}
	value, ok := s[descriptor.SecretEnvVar]
	if !ok {
		return "", errors.New("no secret configured")
	}
	return value, nil
}

type fakeProvider struct {
	descriptor domain.ProviderDescriptor
	model      string
	secret     string
}

func (f *fakeProvider) Descriptor() domain.ProviderDescriptor { return f.descriptor }
func (f *fakeProvider) ActiveModel() string                   { return f.model }
func (f *fakeProvider) Invoke(ctx context.Context, history []domain.Message) (domain.Message, error) {
	return domain.NewAIMessage("fake"), nil
}
func (f *fakeProvider) Stream(ctx context.Context, history []domain.Message) (<-chan ports.StreamChunk, error) {
	ch := make(chan ports.StreamChunk)
	close(ch)
	return ch, nil
}
func (f *fakeProvider) AvailableModels() []domain.ModelInfo { return f.descriptor.Models }
func (f *fakeProvider) ValidateSecret(ctx context.Context) bool {
	return f.secret != ""
}

func fakeDescriptor(id string, requiresSecret bool) domain.ProviderDescriptor {
	return domain.ProviderDescriptor{
		ID:             id,
		DisplayName:    id,
		RequiresSecret: requiresSecret,
		SecretEnvVar:   "FAKE_" + id + "_KEY",
		DefaultModel:   id + "-default",
		Models:         []domain.ModelInfo{{Name: id + "-default"}},
	}
}

func fakeBuilder(record *fakeProvider) Builder {
	return func(model string, settings domain.GenerationSettings, secret string) (ports.Provider, error) {
		record.model = model
		record.secret = secret
		return record, nil
	}
}

func TestNewSeedsBuiltInProviders(t *testing.T) {
	reg := New(staticSecrets{})

	want := []string{"gemini", "openai", "claude", "groq", "ollama"}
	got := reg.List()
	if len(got) != len(want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List = %v, want %v", got, want)
		}
	}
	for _, id := range want {
		if _, ok := reg.Describe(id); !ok {
			t.Fatalf("Describe(%s) missing", id)
		}
	}
}

func TestCreateUnknownProviderNamesAlternatives(t *testing.T) {
	reg := New(staticSecrets{})

	_, err := reg.Create("nope", "", domain.DefaultGenerationSettings())
	var unsupported *domain.UnsupportedProviderError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedProviderError, got %v", err)
	}
	if unsupported.ID != "nope" || len(unsupported.Available) == 0 {
		t.Fatalf("error detail = %+v", unsupported)
	}
}

func TestCreateUsesDefaultModelWhenEmpty(t *testing.T) {
	reg := &Registry{entries: map[string]entry{}, secrets: staticSecrets{}}
	built := &fakeProvider{descriptor: fakeDescriptor("stub", false)}
	reg.Register(built.descriptor, fakeBuilder(built), nil)

	provider, err := reg.Create("stub", "", domain.DefaultGenerationSettings())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if provider.ActiveModel() != "stub-default" {
		t.Fatalf("model = %s, want the registered default", provider.ActiveModel())
	}
}

func TestCreateResolvesSecretForSecretProviders(t *testing.T) {
	built := &fakeProvider{descriptor: fakeDescriptor("sec", true)}
	reg := &Registry{entries: map[string]entry{}, secrets: staticSecrets{"FAKE_sec_KEY": "sk-test"}}
	reg.Register(built.descriptor, fakeBuilder(built), nil)

	if _, err := reg.Create("sec", "custom-model", domain.DefaultGenerationSettings()); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if built.secret != "sk-test" {
		t.Fatalf("secret = %q, want resolved value", built.secret)
	}
	if built.model != "custom-model" {
		t.Fatalf("model = %q, want the explicit override", built.model)
	}
}

func TestCreateWrapsSecretFailure(t *testing.T) {
	built := &fakeProvider{descriptor: fakeDescriptor("sec", true)}
	reg := &Registry{entries: map[string]entry{}, secrets: staticSecrets{}}
	reg.Register(built.descriptor, fakeBuilder(built), nil)

	_, err := reg.Create("sec", "", domain.DefaultGenerationSettings())
	var construction *domain.ConstructionError
	if !errors.As(err, &construction) {
		t.Fatalf("expected ConstructionError, got %v", err)
	}
}

func TestCreateUnavailableBackend(t *testing.T) {
	built := &fakeProvider{descriptor: fakeDescriptor("local", false)}
	reg := &Registry{entries: map[string]entry{}, secrets: staticSecrets{}}
	reg.Register(built.descriptor, fakeBuilder(built), func() bool { return false })

	_, err := reg.Create("local", "", domain.DefaultGenerationSettings())
	var missing *domain.DependencyMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected DependencyMissingError, got %v", err)
	}
	if reg.IsAvailable("local") {
		t.Fatal("IsAvailable = true for an unavailable backend")
	}
}

func TestModelsUnknownIDIsEmptyNotError(t *testing.T) {
	reg := New(staticSecrets{})
	if models := reg.Models("nope"); models != nil {
		t.Fatalf("Models for unknown id = %v", models)
	}
	if models := reg.Models("gemini"); len(models) == 0 {
		t.Fatal("gemini catalog is empty")
	}
}
