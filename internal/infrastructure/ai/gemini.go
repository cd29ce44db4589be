package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/omnichat/omnichat/internal/domain"
	"github.com/omnichat/omnichat/internal/ports"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// geminiProvider talks to the Google generative-language REST API directly.
// No Gemini SDK is wired in; the wire format is small enough for a plain
// HTTP client.
type geminiProvider struct {
	descriptor domain.ProviderDescriptor
	model      string
	settings   domain.GenerationSettings
	secret     string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiProvider builds a Gemini adapter against the public endpoint.
func NewGeminiProvider(model string, settings domain.GenerationSettings, secret string) (ports.Provider, error) {
	return newGeminiProvider(model, settings, secret, geminiBaseURL)
}

func newGeminiProvider(model string, settings domain.GenerationSettings, secret, baseURL string) (ports.Provider, error) {
	descriptor := GeminiDescriptor()
	if secret == "" {
		return nil, &domain.ConstructionError{ID: descriptor.ID, Err: fmt.Errorf("missing API key: set %s", descriptor.SecretEnvVar)}
	}
	if model == "" {
		model = descriptor.DefaultModel
	}
	return &geminiProvider{
		descriptor: descriptor,
		model:      model,
		settings:   settings,
		secret:     secret,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: httpClientTimeout},
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (r geminiResponse) text() string {
	var sb strings.Builder
	for _, cand := range r.Candidates {
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
		break
	}
	return strings.TrimSpace(sb.String())
}

func (p *geminiProvider) Descriptor() domain.ProviderDescriptor { return p.descriptor }
func (p *geminiProvider) ActiveModel() string                   { return p.model }
func (p *geminiProvider) AvailableModels() []domain.ModelInfo   { return p.descriptor.Models }

func (p *geminiProvider) Invoke(ctx context.Context, history []domain.Message) (domain.Message, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, p.model, p.secret)
	body, err := p.do(ctx, endpoint, history)
	if err != nil {
		return domain.Message{}, err
	}

	var decoded geminiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return domain.Message{}, fmt.Errorf("gemini: decode response: %w", err)
	}
	return domain.NewAIMessage(decoded.text()), nil
}

// Stream uses the SSE variant of the generate endpoint. Each data line holds
// a partial candidate; fragments are forwarded as they arrive.
func (p *geminiProvider) Stream(ctx context.Context, history []domain.Message) (<-chan ports.StreamChunk, error) {
	endpoint := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s", p.baseURL, p.model, p.secret)
	resp, err := p.post(ctx, endpoint, history)
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
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "" || payload == "[DONE]" {
				continue
			}
			var decoded geminiResponse
			if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
				continue
			}
			text := decoded.text()
			if text == "" {
				continue
			}
			select {
			case out <- ports.StreamChunk{Content: text}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case out <- ports.StreamChunk{Err: fmt.Errorf("gemini: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

func (p *geminiProvider) ValidateSecret(ctx context.Context) bool {
	_, err := p.Invoke(ctx, []domain.Message{domain.NewHumanMessage(validationPrompt)})
	return err == nil
}

func (p *geminiProvider) do(ctx context.Context, endpoint string, history []domain.Message) ([]byte, error) {
	resp, err := p.post(ctx, endpoint, history)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (p *geminiProvider) post(ctx context.Context, endpoint string, history []domain.Message) (*http.Response, error) {
	contents := make([]geminiContent, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == domain.RoleAI {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: msg.Content}}})
	}

	payload, err := json.Marshal(geminiRequest{
		Contents: contents,
		GenerationConfig: geminiGenerationConfig{
			Temperature:     p.settings.Temperature,
			MaxOutputTokens: p.settings.MaxTokens,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		// The raw body text is kept so quota phrases like RESOURCE_EXHAUSTED
		// survive for classification upstream.
		return nil, fmt.Errorf("gemini: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

var _ ports.Provider = (*geminiProvider)(nil)
