package persona

import (
	"context"
	"sync"

	"github.com/omnichat/omnichat/internal/domain"
	"github.com/omnichat/omnichat/internal/ports"
)

// defaultWorkers bounds the fan-out pool.
const defaultWorkers = 4

// Opinion is one persona's answer, or its individual failure. A failed
// persona never aborts the batch.
type Opinion struct {
	Persona Persona
	Reply   string
	Err     error
}

// Service collects independent opinions from every persona concurrently.
// This is peripheral demo machinery: it sits outside the session/failover
// core and makes plain Invoke calls.
type Service struct {
	Factory  ports.ProviderFactory
	Logger   ports.Logger
	Settings domain.GenerationSettings

	// Workers caps concurrent backend calls. Zero means defaultWorkers.
	Workers int
}

// Gather asks each persona the same question through a freshly constructed
// adapter for providerID. Results come back in persona order; ordering of
// completion does not matter because everything is collected before display.
func (s *Service) Gather(ctx context.Context, providerID, question string, personas []Persona) []Opinion {
	if len(personas) == 0 {
		personas = Defaults()
	}
	workers := s.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	opinions := make([]Opinion, len(personas))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, p := range personas {
		wg.Add(1)
		go func(i int, p Persona) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			opinions[i] = s.ask(ctx, providerID, question, p)
		}(i, p)
	}
	wg.Wait()

	return opinions
}

func (s *Service) ask(ctx context.Context, providerID, question string, p Persona) Opinion {
	provider, err := s.Factory.Create(providerID, "", s.Settings)
	if err != nil {
		s.logFailure(p.Name, err)
		return Opinion{Persona: p, Err: err}
	}

	// The persona framing travels as a leading human message: adapters own
	// system-level framing, so the demo keeps to the plain message contract.
	history := []domain.Message{
		domain.NewHumanMessage(p.Framing),
		domain.NewHumanMessage(question),
	}
	reply, err := provider.Invoke(ctx, history)
	if err != nil {
		s.logFailure(p.Name, err)
		return Opinion{Persona: p, Err: err}
	}
	return Opinion{Persona: p, Reply: reply.Content}
}

func (s *Service) logFailure(name string, err error) {
	if s.Logger == nil {
		return
	}
	s.Logger.Warn("persona failed", map[string]interface{}{"persona": name, "error": err.Error()})
}
