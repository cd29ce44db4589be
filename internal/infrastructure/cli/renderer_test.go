package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/omnichat/omnichat/internal/domain"
)

func TestRendererProvidersMarksActiveAndAvailability(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.Providers("gemini", []ProviderRow{
		{ID: "gemini", DisplayName: "Google Gemini", Available: true, FreeTier: "1500 req/day free"},
		{ID: "ollama", DisplayName: "Ollama (local)", Available: false},
	})

	out := buf.String()
	for _, want := range []string{"gemini", "Google Gemini", "1500 req/day free", "unavailable"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRendererQuotaGuidanceSuggestsAlternatives(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.QuotaGuidance(&domain.QuotaError{Provider: "gemini", Err: errString("429 quota")})

	out := buf.String()
	for _, want := range []string{"Quota limits", "/providers", "/switch"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatFreeTier(t *testing.T) {
	if got := formatFreeTier(nil); got != "" {
		t.Fatalf("nil free tier = %q", got)
	}
	if got := formatFreeTier(&domain.FreeTier{RequestsPerDay: 1500}); got != "1500 req/day free" {
		t.Fatalf("formatted = %q", got)
	}
	if got := formatFreeTier(&domain.FreeTier{Notes: "Local inference, no limits"}); got != "Local inference, no limits" {
		t.Fatalf("formatted = %q", got)
	}
}

func TestTruncateLineFlattensNewlines(t *testing.T) {
	got := truncateLine("line one\nline two", 100)
	if strings.Contains(got, "\n") {
		t.Fatalf("newline survived: %q", got)
	}
	long := strings.Repeat("x", 150)
	if got := truncateLine(long, 100); len(got) != 103 || !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated = %q (len %d)", got, len(got))
	}
}

type errString string

func (e errString) Error() string { return string(e) }
