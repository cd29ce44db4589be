package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/omnichat/omnichat/internal/domain"
	"github.com/omnichat/omnichat/internal/ports"
)

// stubProvider scripts a sequence of invoke results. Each call consumes the
// next result; the last one repeats.
type stubProvider struct {
	id      string
	model   string
	results []invokeResult
	calls   int
}

type invokeResult struct {
	reply string
	err   error
}

func (s *stubProvider) Descriptor() domain.ProviderDescriptor {
	return domain.ProviderDescriptor{ID: s.id, DisplayName: s.id, DefaultModel: s.model}
}

func (s *stubProvider) ActiveModel() string { return s.model }

func (s *stubProvider) Invoke(ctx context.Context, history []domain.Message) (domain.Message, error) {
	idx := s.calls
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	s.calls++
	res := s.results[idx]
	if res.err != nil {
		return domain.Message{}, res.err
	}
	return domain.NewAIMessage(res.reply), nil
}

func (s *stubProvider) Stream(ctx context.Context, history []domain.Message) (<-chan ports.StreamChunk, error) {
	reply, err := s.Invoke(ctx, history)
	if err != nil {
		return nil, err
	}
	ch := make(chan ports.StreamChunk, 1)
	ch <- ports.StreamChunk{Content: reply.Content}
	close(ch)
	return ch, nil
}

func (s *stubProvider) AvailableModels() []domain.ModelInfo { return nil }

func (s *stubProvider) ValidateSecret(ctx context.Context) bool { return true }

func ok(reply string) invokeResult { return invokeResult{reply: reply} }

func quotaFail() invokeResult {
	return invokeResult{err: errors.New("429 Resource has been exhausted (e.g. check quota)")}
}

// stubFactory hands out pre-built providers by id and records constructions.
type stubFactory struct {
	order       []string
	providers   map[string]*stubProvider
	unavailable map[string]bool
	createErrs  map[string]error
	created     []string
}

func (f *stubFactory) Create(id, model string, settings domain.GenerationSettings) (ports.Provider, error) {
	f.created = append(f.created, id)
	if err, bad := f.createErrs[id]; bad {
		return nil, err
	}
	p, known := f.providers[id]
	if !known {
		return nil, &domain.UnsupportedProviderError{ID: id, Available: f.order}
	}
	return p, nil
}

func (f *stubFactory) List() []string { return f.order }

func (f *stubFactory) IsAvailable(id string) bool { return !f.unavailable[id] }

func (f *stubFactory) Models(id string) []domain.ModelInfo { return nil }

func (f *stubFactory) Describe(id string) (domain.ProviderDescriptor, bool) {
	p, known := f.providers[id]
	if !known {
		return domain.ProviderDescriptor{}, false
	}
	return p.Descriptor(), true
}

func history(texts ...string) []domain.Message {
	out := make([]domain.Message, 0, len(texts))
	for _, t := range texts {
		out = append(out, domain.NewHumanMessage(t))
	}
	return out
}

func TestInvokeSuccessNoSwitch(t *testing.T) {
	active := &stubProvider{id: "gemini", model: "gemini-1.5-flash", results: []invokeResult{ok("hi there")}}
	factory := &stubFactory{order: []string{"gemini"}, providers: map[string]*stubProvider{"gemini": active}}
	policy := &Policy{Factory: factory, Settings: domain.DefaultGenerationSettings()}

	provider, reply, switches, err := policy.Invoke(context.Background(), active, history("hello"))
	if err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	if provider != active {
		t.Fatal("provider changed on a successful invoke")
	}
	if reply.Content != "hi there" || reply.Role != domain.RoleAI {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if switches != 0 {
		t.Fatalf("switches = %d, want 0", switches)
	}
	if len(factory.created) != 0 {
		t.Fatalf("factory consulted on success: %v", factory.created)
	}
}

func TestInvokeFailsOverOnQuota(t *testing.T) {
	gemini := &stubProvider{id: "gemini", model: "gemini-1.5-flash", results: []invokeResult{quotaFail()}}
	openai := &stubProvider{id: "openai", model: "gpt-3.5-turbo", results: []invokeResult{ok("fallback reply")}}
	factory := &stubFactory{
		order:     []string{"gemini", "openai"},
		providers: map[string]*stubProvider{"gemini": gemini, "openai": openai},
	}
	policy := &Policy{Factory: factory}

	provider, reply, switches, err := policy.Invoke(context.Background(), gemini, history("hello"))
	if err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	if provider.Descriptor().ID != "openai" {
		t.Fatalf("expected openai after failover, got %s", provider.Descriptor().ID)
	}
	if reply.Content != "fallback reply" {
		t.Fatalf("unexpected reply %q", reply.Content)
	}
	if switches != 1 {
		t.Fatalf("switches = %d, want 1", switches)
	}
	if openai.calls != 1 {
		t.Fatalf("fallback invoked %d times, want 1", openai.calls)
	}
}

func TestInvokeNonQuotaErrorPropagatesWithoutSwitch(t *testing.T) {
	cause := errors.New("401 invalid api key")
	gemini := &stubProvider{id: "gemini", results: []invokeResult{{err: cause}}}
	openai := &stubProvider{id: "openai", results: []invokeResult{ok("never")}}
	factory := &stubFactory{
		order:     []string{"gemini", "openai"},
		providers: map[string]*stubProvider{"gemini": gemini, "openai": openai},
	}
	policy := &Policy{Factory: factory}

	provider, _, _, err := policy.Invoke(context.Background(), gemini, history("hello"))
	if !errors.Is(err, cause) {
		t.Fatalf("expected original error, got %v", err)
	}
	if provider != gemini {
		t.Fatal("active provider must not change on a non-quota error")
	}
	if openai.calls != 0 {
		t.Fatal("fallback invoked despite non-quota error")
	}
	if len(factory.created) != 0 {
		t.Fatalf("construction attempted: %v", factory.created)
	}
}

func TestInvokeExhaustionReturnsQuotaError(t *testing.T) {
	gemini := &stubProvider{id: "gemini", results: []invokeResult{quotaFail()}}
	openai := &stubProvider{id: "openai", results: []invokeResult{quotaFail()}}
	claude := &stubProvider{id: "claude", results: []invokeResult{quotaFail()}}
	factory := &stubFactory{
		order:     []string{"gemini", "openai", "claude"},
		providers: map[string]*stubProvider{"gemini": gemini, "openai": openai, "claude": claude},
	}
	policy := &Policy{Factory: factory}

	provider, _, _, err := policy.Invoke(context.Background(), gemini, history("hello"))
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	var quotaErr *domain.QuotaError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("expected QuotaError, got %T: %v", err, err)
	}
	if provider != gemini {
		t.Fatal("active provider must revert to the original on exhaustion")
	}
	for _, p := range []*stubProvider{gemini, openai, claude} {
		if p.calls != 1 {
			t.Fatalf("%s invoked %d times, want exactly 1", p.id, p.calls)
		}
	}
}

func TestInvokeBudgetBoundsTotalAttempts(t *testing.T) {
	providers := map[string]*stubProvider{}
	order := []string{"a", "b", "c", "d", "e"}
	for _, id := range order {
		providers[id] = &stubProvider{id: id, results: []invokeResult{quotaFail()}}
	}
	factory := &stubFactory{order: order, providers: providers}
	policy := &Policy{Factory: factory, Priority: order, Budget: 2}

	_, _, _, err := policy.Invoke(context.Background(), providers["a"], history("hello"))
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	attempts := 0
	for _, p := range providers {
		attempts += p.calls
	}
	if attempts > 2 {
		t.Fatalf("budget 2 allowed %d attempts", attempts)
	}
	// The initial attempt spends one unit, leaving one construction.
	if len(factory.created) != 1 {
		t.Fatalf("constructions = %v, want one", factory.created)
	}
}

func TestInvokeDefaultBudgetCapsDistinctProviders(t *testing.T) {
	order := []string{"openai", "claude", "gemini", "groq", "ollama"}
	providers := map[string]*stubProvider{}
	for _, id := range order {
		providers[id] = &stubProvider{id: id, results: []invokeResult{quotaFail()}}
	}
	factory := &stubFactory{order: order, providers: providers}
	policy := &Policy{Factory: factory}

	_, _, _, err := policy.Invoke(context.Background(), providers["gemini"], history("hello"))
	var quotaErr *domain.QuotaError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("expected QuotaError, got %v", err)
	}

	attempts := 0
	distinct := 0
	for _, p := range providers {
		attempts += p.calls
		if p.calls > 0 {
			distinct++
		}
	}
	if attempts > DefaultAttemptBudget {
		t.Fatalf("total attempts = %d, want at most %d", attempts, DefaultAttemptBudget)
	}
	if distinct > DefaultAttemptBudget {
		t.Fatalf("distinct providers = %d, want at most %d", distinct, DefaultAttemptBudget)
	}
	if len(factory.created) != DefaultAttemptBudget-1 {
		t.Fatalf("constructions = %v, want %d", factory.created, DefaultAttemptBudget-1)
	}
}

func TestInvokeSkipsUnconstructibleCandidate(t *testing.T) {
	gemini := &stubProvider{id: "gemini", results: []invokeResult{quotaFail()}}
	claude := &stubProvider{id: "claude", results: []invokeResult{ok("claude reply")}}
	factory := &stubFactory{
		order:      []string{"gemini", "openai", "claude"},
		providers:  map[string]*stubProvider{"gemini": gemini, "claude": claude},
		createErrs: map[string]error{"openai": fmt.Errorf("no api key")},
	}
	policy := &Policy{Factory: factory, Priority: []string{"openai", "claude", "gemini"}}

	provider, reply, _, err := policy.Invoke(context.Background(), gemini, history("hello"))
	if err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	if provider.Descriptor().ID != "claude" {
		t.Fatalf("expected claude, got %s", provider.Descriptor().ID)
	}
	if reply.Content != "claude reply" {
		t.Fatalf("unexpected reply %q", reply.Content)
	}
}

func TestInvokeSkipsUnavailableProvider(t *testing.T) {
	gemini := &stubProvider{id: "gemini", results: []invokeResult{quotaFail()}}
	ollama := &stubProvider{id: "ollama", results: []invokeResult{ok("local")}}
	groq := &stubProvider{id: "groq", results: []invokeResult{ok("groq reply")}}
	factory := &stubFactory{
		order:       []string{"gemini", "ollama", "groq"},
		providers:   map[string]*stubProvider{"gemini": gemini, "ollama": ollama, "groq": groq},
		unavailable: map[string]bool{"ollama": true},
	}
	policy := &Policy{Factory: factory, Priority: []string{"ollama", "groq"}}

	provider, _, _, err := policy.Invoke(context.Background(), gemini, history("hello"))
	if err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	if provider.Descriptor().ID != "groq" {
		t.Fatalf("expected groq, got %s", provider.Descriptor().ID)
	}
	if ollama.calls != 0 {
		t.Fatal("unavailable provider was invoked")
	}
}

func TestCandidateOrderPriorityThenRegistration(t *testing.T) {
	factory := &stubFactory{
		order: []string{"gemini", "openai", "ollama"},
		providers: map[string]*stubProvider{
			"gemini": {id: "gemini"}, "openai": {id: "openai"}, "ollama": {id: "ollama"},
		},
	}
	policy := &Policy{Factory: factory, Priority: []string{"openai", "claude", "gemini"}}

	got := policy.candidateOrder()
	want := []string{"openai", "gemini", "ollama"}
	if len(got) != len(want) {
		t.Fatalf("candidateOrder = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidateOrder = %v, want %v", got, want)
		}
	}
}
