// Package secret resolves provider API keys from the environment, falling
// back to a single interactive prompt per provider family.
package secret

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/omnichat/omnichat/internal/domain"
	"github.com/omnichat/omnichat/internal/ports"
)

// PromptFunc reads one secret from the operator. The default implementation
// reads from the terminal without echo.
type PromptFunc func(descriptor domain.ProviderDescriptor) (string, error)

// Resolver caches resolved secrets per provider family. A hit in the cache
// or the environment skips the prompt, so the operator types a key at most
// once per process lifetime. Resolved values are written back into the
// process environment for any code that reads the conventional variable.
type Resolver struct {
	mu     sync.Mutex
	cache  map[string]string
	prompt PromptFunc
	out    io.Writer
}

// NewResolver builds a resolver with the terminal prompt. prompt may be nil.
func NewResolver(prompt PromptFunc) *Resolver {
	r := &Resolver{
		cache: make(map[string]string),
		out:   os.Stderr,
	}
	if prompt == nil {
		prompt = r.terminalPrompt
	}
	r.prompt = prompt
	return r
}

// Resolve implements ports.SecretResolver.
func (r *Resolver) Resolve(descriptor domain.ProviderDescriptor) (string, error) {
	if !descriptor.RequiresSecret {
		return "", nil
	}
	if descriptor.SecretEnvVar == "" {
		return "", fmt.Errorf("provider %s requires a secret but declares no env var", descriptor.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[descriptor.SecretEnvVar]; ok {
		return cached, nil
	}
	if fromEnv := os.Getenv(descriptor.SecretEnvVar); fromEnv != "" {
		r.cache[descriptor.SecretEnvVar] = fromEnv
		return fromEnv, nil
	}

	value, err := r.prompt(descriptor)
	if err != nil {
		return "", fmt.Errorf("prompt for %s: %w", descriptor.SecretEnvVar, err)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("empty secret entered")
	}

	r.cache[descriptor.SecretEnvVar] = value
	_ = os.Setenv(descriptor.SecretEnvVar, value)
	return value, nil
}

func (r *Resolver) terminalPrompt(descriptor domain.ProviderDescriptor) (string, error) {
	fmt.Fprintf(r.out, "Enter %s API key (%s): ", descriptor.DisplayName, descriptor.SecretEnvVar)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(r.out)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

var _ ports.SecretResolver = (*Resolver)(nil)
