package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/omnichat/omnichat/internal/domain"
)

func geminiTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestGeminiInvokeSendsHistoryAndDecodesReply(t *testing.T) {
	var captured geminiRequest
	server := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") && !strings.Contains(r.URL.Path, "generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if key := r.URL.Query().Get("key"); key != "test-key" {
			t.Errorf("key = %q", key)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Hi there!"}]}}]}`)
	})

	provider, err := newGeminiProvider("gemini-1.5-flash", domain.DefaultGenerationSettings(), "test-key", server.URL)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	history := []domain.Message{
		domain.NewHumanMessage("hello"),
		domain.NewAIMessage("earlier reply"),
		domain.NewHumanMessage("and now?"),
	}
	reply, err := provider.Invoke(context.Background(), history)
	if err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	if reply.Content != "Hi there!" || reply.Role != domain.RoleAI {
		t.Fatalf("reply = %+v", reply)
	}

	if len(captured.Contents) != 3 {
		t.Fatalf("contents = %d, want full history", len(captured.Contents))
	}
	if captured.Contents[1].Role != "model" {
		t.Fatalf("assistant role mapped to %q, want model", captured.Contents[1].Role)
	}
	if captured.GenerationConfig.MaxOutputTokens != 1000 {
		t.Fatalf("maxOutputTokens = %d", captured.GenerationConfig.MaxOutputTokens)
	}
}

func TestGeminiInvokeKeepsQuotaBodyInError(t *testing.T) {
	server := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"code":429,"status":"RESOURCE_EXHAUSTED","message":"Quota exceeded for quota metric"}}`)
	})

	provider, err := newGeminiProvider("", domain.DefaultGenerationSettings(), "test-key", server.URL)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	_, err = provider.Invoke(context.Background(), []domain.Message{domain.NewHumanMessage("hi")})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, fragment := range []string{"429", "RESOURCE_EXHAUSTED"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error %q lost fragment %q", err, fragment)
		}
	}
}

func TestGeminiStreamForwardsSSEFragments(t *testing.T) {
	server := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintln(w, `data: {"candidates":[{"content":{"parts":[{"text":"Hel"}]}}]}`)
		fmt.Fprintln(w)
		fmt.Fprintln(w, `data: {"candidates":[{"content":{"parts":[{"text":"lo"}]}}]}`)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "data: [DONE]")
	})

	provider, err := newGeminiProvider("", domain.DefaultGenerationSettings(), "test-key", server.URL)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	chunks, err := provider.Stream(context.Background(), []domain.Message{domain.NewHumanMessage("hi")})
	if err != nil {
		t.Fatalf("Stream error: %v", err)
	}

	var sb strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Fatalf("chunk error: %v", chunk.Err)
		}
		sb.WriteString(chunk.Content)
	}
	if sb.String() != "Hello" {
		t.Fatalf("assembled = %q", sb.String())
	}
}

func TestGeminiConstructionRequiresSecret(t *testing.T) {
	_, err := NewGeminiProvider("", domain.DefaultGenerationSettings(), "")
	var construction *domain.ConstructionError
	if !errors.As(err, &construction) {
		t.Fatalf("expected ConstructionError, got %v", err)
	}
	if !strings.Contains(err.Error(), "GOOGLE_API_KEY") {
		t.Fatalf("error does not name the env var: %v", err)
	}
}

func TestGeminiDefaultsModelWhenEmpty(t *testing.T) {
	provider, err := NewGeminiProvider("", domain.DefaultGenerationSettings(), "test-key")
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if provider.ActiveModel() != GeminiDescriptor().DefaultModel {
		t.Fatalf("model = %s", provider.ActiveModel())
	}
}
