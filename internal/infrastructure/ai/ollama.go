package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/omnichat/omnichat/internal/domain"
	"github.com/omnichat/omnichat/internal/ports"
)

const defaultOllamaHost = "http://localhost:11434"

// OllamaHost resolves the local daemon address. OLLAMA_HOST wins over the
// default, matching the daemon's own convention.
func OllamaHost() string {
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host
		}
		return strings.TrimSuffix(host, "/")
	}
	return defaultOllamaHost
}

// OllamaReachable probes the local daemon. This is the dependency-availability
// check for the registry: it says nothing about which models are pulled.
func OllamaReachable(host string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(host + "/api/tags")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

// ollamaProvider talks to a local Ollama daemon over its chat API.
type ollamaProvider struct {
	descriptor domain.ProviderDescriptor
	model      string
	settings   domain.GenerationSettings
	host       string
	httpClient *http.Client
}

// NewOllamaProvider builds an Ollama adapter. No secret is involved, but the
// daemon must be reachable or construction fails with DependencyMissing.
func NewOllamaProvider(model string, settings domain.GenerationSettings) (ports.Provider, error) {
	return newOllamaProvider(model, settings, OllamaHost())
}

func newOllamaProvider(model string, settings domain.GenerationSettings, host string) (ports.Provider, error) {
	descriptor := OllamaDescriptor()
	if !OllamaReachable(host) {
		return nil, &domain.DependencyMissingError{ID: descriptor.ID, Reason: fmt.Sprintf("no Ollama daemon at %s", host)}
	}
	if model == "" {
		model = descriptor.DefaultModel
	}
	return &ollamaProvider{
		descriptor: descriptor,
		model:      model,
		settings:   settings,
		host:       host,
		httpClient: &http.Client{Timeout: httpClientTimeout},
	}, nil
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  map[string]any      `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
	Done    bool              `json:"done"`
	Error   string            `json:"error,omitempty"`
}

func (p *ollamaProvider) Descriptor() domain.ProviderDescriptor { return p.descriptor }
func (p *ollamaProvider) ActiveModel() string                   { return p.model }
func (p *ollamaProvider) AvailableModels() []domain.ModelInfo   { return p.descriptor.Models }

func (p *ollamaProvider) Invoke(ctx context.Context, history []domain.Message) (domain.Message, error) {
	resp, err := p.post(ctx, p.request(history, false))
	if err != nil {
		return domain.Message{}, err
	}
	defer resp.Body.Close()

	var decoded ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Message{}, fmt.Errorf("ollama: decode response: %w", err)
	}
	if decoded.Error != "" {
		return domain.Message{}, fmt.Errorf("ollama: %s", decoded.Error)
	}
	return domain.NewAIMessage(strings.TrimSpace(decoded.Message.Content)), nil
}

// Stream consumes the daemon's NDJSON stream, one fragment per line.
func (p *ollamaProvider) Stream(ctx context.Context, history []domain.Message) (<-chan ports.StreamChunk, error) {
	resp, err := p.post(ctx, p.request(history, true))
	if err != nil {
		return nil, err
	}

	out := make(chan ports.StreamChunk)
	go func() {
		defer close(out)
		defer resp.Body.Close()
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			var decoded ollamaChatResponse
			if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
				continue
			}
			if decoded.Error != "" {
				select {
				case out <- ports.StreamChunk{Err: fmt.Errorf("ollama: %s", decoded.Error)}:
				case <-ctx.Done():
				}
				return
			}
			if decoded.Message.Content != "" {
				select {
				case out <- ports.StreamChunk{Content: decoded.Message.Content}:
				case <-ctx.Done():
					return
				}
			}
			if decoded.Done {
				return
			}
		}
	}()
	return out, nil
}

// ValidateSecret is trivially true for a secretless local daemon; the probe
// checks reachability instead.
func (p *ollamaProvider) ValidateSecret(ctx context.Context) bool {
	return OllamaReachable(p.host)
}

func (p *ollamaProvider) request(history []domain.Message, stream bool) ollamaChatRequest {
	messages := make([]ollamaChatMessage, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == domain.RoleAI {
			role = "assistant"
		}
		messages = append(messages, ollamaChatMessage{Role: role, Content: msg.Content})
	}
	return ollamaChatRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   stream,
		Options: map[string]any{
			"temperature": p.settings.Temperature,
			"num_predict": p.settings.MaxTokens,
		},
	}
}

func (p *ollamaProvider) post(ctx context.Context, payload ollamaChatRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ollama: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return resp, nil
}

var _ ports.Provider = (*ollamaProvider)(nil)
