package ai

import "github.com/omnichat/omnichat/internal/domain"

// Static provider catalogs. Informational only; nothing here requires a
// network call.

// GeminiDescriptor describes the Google Gemini backend.
func GeminiDescriptor() domain.ProviderDescriptor {
	return domain.ProviderDescriptor{
		ID:             ProviderGemini,
		DisplayName:    "Google Gemini",
		RequiresSecret: true,
		SecretEnvVar:   "GOOGLE_API_KEY",
		DefaultModel:   "gemini-1.5-flash",
		Models: []domain.ModelInfo{
			{Name: "gemini-1.5-flash", Description: "Fast, efficient model for quick responses", BestFor: "Chat, quick questions"},
			{Name: "gemini-1.5-pro", Description: "More capable model for complex tasks", BestFor: "Complex reasoning, analysis"},
			{Name: "gemini-2.0-flash-exp", Description: "Latest experimental model", BestFor: "Cutting-edge features"},
		},
		FreeTier: &domain.FreeTier{RequestsPerDay: 1500, Notes: "Generous free tier, resets daily"},
	}
}

// OpenAIDescriptor describes the OpenAI backend.
func OpenAIDescriptor() domain.ProviderDescriptor {
	return domain.ProviderDescriptor{
		ID:             ProviderOpenAI,
		DisplayName:    "OpenAI",
		RequiresSecret: true,
		SecretEnvVar:   "OPENAI_API_KEY",
		DefaultModel:   "gpt-3.5-turbo",
		Models: []domain.ModelInfo{
			{Name: "gpt-3.5-turbo", Description: "Fast and cost-effective for most tasks", BestFor: "General chat, quick answers"},
			{Name: "gpt-4", Description: "Strong reasoning, slower and pricier", BestFor: "Complex analysis, careful writing"},
			{Name: "gpt-4o", Description: "Flagship multimodal model", BestFor: "Best overall quality"},
			{Name: "gpt-4o-mini", Description: "Small, cheap, surprisingly capable", BestFor: "High-volume lightweight use"},
		},
	}
}

// ClaudeDescriptor describes the Anthropic Claude backend.
func ClaudeDescriptor() domain.ProviderDescriptor {
	return domain.ProviderDescriptor{
		ID:             ProviderClaude,
		DisplayName:    "Anthropic Claude",
		RequiresSecret: true,
		SecretEnvVar:   "ANTHROPIC_API_KEY",
		DefaultModel:   "claude-3-haiku-20240307",
		Models: []domain.ModelInfo{
			{Name: "claude-3-haiku-20240307", Description: "Fastest Claude, light footprint", BestFor: "Quick responses, general chat"},
			{Name: "claude-3-sonnet-20240229", Description: "Balanced speed and capability", BestFor: "Everyday assistant work"},
			{Name: "claude-3-opus-20240229", Description: "Most capable Claude 3 model", BestFor: "Complex reasoning, long documents"},
		},
	}
}

// GroqDescriptor describes the Groq hosted inference backend.
func GroqDescriptor() domain.ProviderDescriptor {
	return domain.ProviderDescriptor{
		ID:             ProviderGroq,
		DisplayName:    "Groq",
		RequiresSecret: true,
		SecretEnvVar:   "GROQ_API_KEY",
		DefaultModel:   "llama3-8b-8192",
		Models: []domain.ModelInfo{
			{Name: "llama3-8b-8192", Description: "Meta Llama 3 8B - fast and lightweight", BestFor: "Quick responses, general chat, coding help"},
			{Name: "llama3-70b-8192", Description: "Meta Llama 3 70B - more capable and powerful", BestFor: "Complex reasoning, detailed analysis"},
			{Name: "gemma-7b-it", Description: "Google Gemma 7B Instruct", BestFor: "Following instructions, structured tasks"},
		},
		FreeTier: &domain.FreeTier{RequestsPerDay: 6000, TokensPerMinute: 30000, Notes: "Free tier, no credit card required"},
	}
}

// OllamaDescriptor describes a local Ollama daemon. No secret required.
func OllamaDescriptor() domain.ProviderDescriptor {
	return domain.ProviderDescriptor{
		ID:             ProviderOllama,
		DisplayName:    "Ollama (local)",
		RequiresSecret: false,
		DefaultModel:   "llama3.2",
		Models: []domain.ModelInfo{
			{Name: "llama3.2", Description: "Meta Llama 3.2, runs locally", BestFor: "Offline chat, privacy"},
			{Name: "mistral", Description: "Mistral 7B, runs locally", BestFor: "Fast local inference"},
			{Name: "qwen2.5", Description: "Qwen 2.5, runs locally", BestFor: "Multilingual local chat"},
		},
		FreeTier: &domain.FreeTier{Notes: "Local inference, no limits"},
	}
}
