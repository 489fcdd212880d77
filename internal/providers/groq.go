package providers

import (
	"context"
	"os"
	"strings"
)

const groqBaseURL = "https://api.groq.com/openai/v1/"

// GroqProvider supports LLM generation via Groq's OpenAI-compatible API.
type GroqProvider struct {
	chat *OpenAIProvider
}

func NewGroqProvider(keyName string) *GroqProvider {
	model := os.Getenv("DOCQA_GROQ_MODEL")
	if strings.TrimSpace(model) == "" {
		model = "llama-3.1-8b-instant"
	}
	return &GroqProvider{
		chat: newOpenAICompatible("groq", keyName, resolveGroqKey(keyName), OpenAIOptions{
			ChatModel: model,
			BaseURL:   groqBaseURL,
		}),
	}
}

func (g *GroqProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	return g.chat.Generate(ctx, req)
}

func resolveGroqKey(alias string) string {
	if alias != "" {
		if v := os.Getenv("DOCQA_GROQ_KEY_" + sanitizeEnvToken(alias)); v != "" {
			return v
		}
	}
	return os.Getenv("GROQ_API_KEY")
}
