// Package ai contains the provider adapters: one per remote chat-completion
// backend, each presenting the uniform ports.Provider contract.
//
// Adapters convert the ordered conversation history into the backend's wire
// shape, send it, and return exactly one assistant message. Errors are
// returned with the backend's original text intact; the failover policy
// upstream classifies them. Construction requires the resolved secret (where
// the backend needs one) to already be in hand; adapters never prompt.
package ai

import (
	"time"
)

const httpClientTimeout = 120 * time.Second

// validationPrompt is the trivial request used by ValidateSecret.
const validationPrompt = "Hello"

// Provider identifiers. Registration order in the registry follows the
// original launch menu: gemini first, then the alternates.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGroq   = "groq"
	ProviderOllama = "ollama"
)
