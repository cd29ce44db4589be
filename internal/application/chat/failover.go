package chat

import (
	"context"

	"github.com/omnichat/omnichat/internal/domain"
	"github.com/omnichat/omnichat/internal/ports"
)

// DefaultAttemptBudget bounds total provider attempts within one turn,
// counting the initial attempt on the active adapter.
const DefaultAttemptBudget = 3

// DefaultPriority is the fixed preference order for automatic failover.
// Overridable via the Priority field; registration order in the registry is
// display order and plays no part here.
var DefaultPriority = []string{"openai", "claude", "gemini", "groq", "ollama"}

// Policy wraps a single invoke attempt with quota classification and bounded
// automatic provider replacement. Dependencies are plain exported fields,
// populated by the container (stubbed in tests).
type Policy struct {
	Factory  ports.ProviderFactory
	Logger   ports.Logger
	Settings domain.GenerationSettings

	// Priority overrides DefaultPriority when non-empty.
	Priority []string

	// Budget is the maximum number of provider attempts per turn, the
	// initial one included. Zero means DefaultAttemptBudget.
	Budget int
}

// Invoke attempts active.Invoke(history), failing over to alternate providers
// on quota-classified errors. It returns the provider that produced the reply
// (the caller swaps it in atomically), the reply, and how many provider
// switches the turn took.
//
// Non-quota errors propagate immediately with the original text intact and no
// provider switch. When every candidate is exhausted the last error comes
// back wrapped in domain.QuotaError so the interface layer can show
// quota-specific guidance instead of a generic failure.
func (p *Policy) Invoke(ctx context.Context, active ports.Provider, history []domain.Message) (ports.Provider, domain.Message, int, error) {
	budget := p.Budget
	if budget <= 0 {
		budget = DefaultAttemptBudget
	}

	current := active
	tried := map[string]bool{active.Descriptor().ID: true}
	switches := 0
	var lastErr error

	// The initial attempt spends budget like any other, so a budget of K
	// means at most K distinct providers are tried.
	budget--

	for {
		reply, err := current.Invoke(ctx, history)
		if err == nil {
			return current, reply, switches, nil
		}
		if !IsQuotaError(err) {
			// Not eligible for failover. The caller's active adapter stays
			// exactly as it was.
			return active, domain.Message{}, 0, err
		}

		lastErr = err
		failedID := current.Descriptor().ID
		p.logWarn("quota exhausted, attempting failover", failedID, err)

		replacement := p.nextProvider(tried, &budget)
		if replacement == nil {
			return active, domain.Message{}, 0, &domain.QuotaError{Provider: failedID, Err: lastErr}
		}
		// Same pending history is retried: the turn's human message exists
		// exactly once regardless of how many switches happen.
		switches++
		current = replacement
	}
}

// nextProvider walks the priority order for a constructible candidate,
// spending budget on each construction attempt. Candidates that fail to
// construct are skipped rather than aborting the failover, so one broken
// fallback cannot wedge the turn.
func (p *Policy) nextProvider(tried map[string]bool, budget *int) ports.Provider {
	for _, id := range p.candidateOrder() {
		if *budget <= 0 {
			return nil
		}
		if tried[id] || !p.Factory.IsAvailable(id) {
			continue
		}

		*budget--
		tried[id] = true
		candidate, err := p.Factory.Create(id, "", p.Settings)
		if err != nil {
			p.logWarn("failover candidate failed to construct", id, err)
			continue
		}
		p.logInfo("switched provider", id)
		return candidate
	}
	return nil
}

// candidateOrder is the priority list followed by any registered providers
// the list does not mention, in registration order.
func (p *Policy) candidateOrder() []string {
	priority := p.Priority
	if len(priority) == 0 {
		priority = DefaultPriority
	}

	registered := make(map[string]bool)
	for _, id := range p.Factory.List() {
		registered[id] = true
	}

	var out []string
	seen := make(map[string]bool)
	for _, id := range priority {
		if registered[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	for _, id := range p.Factory.List() {
		if !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	return out
}

func (p *Policy) logWarn(msg, provider string, err error) {
	if p.Logger == nil {
		return
	}
	p.Logger.Warn(msg, map[string]interface{}{"provider": provider, "error": err.Error()})
}

func (p *Policy) logInfo(msg, provider string) {
	if p.Logger == nil {
		return
	}
	p.Logger.Info(msg, map[string]interface{}{"provider": provider})
}
