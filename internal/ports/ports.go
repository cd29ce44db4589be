// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and
// external adapters (infrastructure). The application depends on these
// abstractions, never on concrete SDK clients, file formats or databases.
package ports

import (
	"context"

	"github.com/omnichat/omnichat/internal/domain"
)

// Provider presents one remote chat-completion backend behind a uniform call
// contract. Exactly one provider is active per session at any time; the
// session replaces it wholesale on failover or manual switch.
type Provider interface {
	// Descriptor returns the static metadata this adapter was built from.
	Descriptor() domain.ProviderDescriptor

	// ActiveModel is the model name this adapter sends requests with.
	ActiveModel() string

	// Invoke sends the full ordered history and returns exactly one assistant
	// message on success. Failures surface as errors carrying the raw backend
	// text; adapters never swallow an error into a synthetic reply, because
	// the failover policy classifies the real message.
	Invoke(ctx context.Context, history []domain.Message) (domain.Message, error)

	// Stream produces a lazy, finite sequence of partial content fragments.
	// The consumer concatenates fragments to reconstruct the reply. Not
	// restartable; cancelling ctx or abandoning the channel stops the stream.
	Stream(ctx context.Context, history []domain.Message) (<-chan StreamChunk, error)

	// AvailableModels returns the static catalog. No network call.
	AvailableModels() []domain.ModelInfo

	// ValidateSecret makes a best-effort trivial request. A false return only
	// degrades diagnostics; it never blocks construction.
	ValidateSecret(ctx context.Context) bool
}

// StreamChunk is one fragment of a streamed reply. Err, when set, terminates
// the stream; Content is empty in that case.
type StreamChunk struct {
	Content string
	Err     error
}

// ProviderFactory constructs ready adapters from provider identifiers.
type ProviderFactory interface {
	Create(id, model string, settings domain.GenerationSettings) (Provider, error)
	List() []string
	IsAvailable(id string) bool
	Models(id string) []domain.ModelInfo
	Describe(id string) (domain.ProviderDescriptor, bool)
}

// SecretResolver resolves the API secret for a provider family. The process
// environment is consulted first; on a miss the operator is prompted exactly
// once and the value is written back so later constructions skip the prompt.
type SecretResolver interface {
	Resolve(descriptor domain.ProviderDescriptor) (string, error)
}

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.omnichat/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// TranscriptStore persists session transcripts as JSON documents.
type TranscriptStore interface {
	Save(transcript domain.Transcript) (string, error)
}

// HistoryRepository records completed turns for later inspection.
type HistoryRepository interface {
	Save(record domain.TurnRecord) error
	Records(limit int, search string) ([]domain.TurnRecord, error)
	Clear() error
	ExportJSON(dest string) error
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
