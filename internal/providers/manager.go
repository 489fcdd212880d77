package providers

import (
	"fmt"
	"strings"

	"docqa/internal/config"
)

// Manager resolves the configured embedding and completion providers once at
// startup.
type Manager struct {
	embedRef ProviderRef
	embed    EmbeddingProvider
	llmRef   ProviderRef
	llm      LLMProvider
}

func NewManager(cfg config.Config) (*Manager, error) {
	m := &Manager{
		embedRef: ParseProviderRef(cfg.EmbedProvider),
		llmRef:   ParseProviderRef(cfg.LLMProvider),
	}
	p, err := buildProvider(m.embedRef, cfg)
	if err != nil {
		return nil, err
	}
	embed, ok := p.(EmbeddingProvider)
	if !ok {
		return nil, fmt.Errorf("provider %s does not support embeddings", m.embedRef.Raw)
	}
	m.embed = embed

	p, err = buildProvider(m.llmRef, cfg)
	if err != nil {
		return nil, err
	}
	llm, ok := p.(LLMProvider)
	if !ok {
		return nil, fmt.Errorf("provider %s does not support llm", m.llmRef.Raw)
	}
	m.llm = llm
	return m, nil
}

func (m *Manager) Embedder() (EmbeddingProvider, ProviderRef) {
	return m.embed, m.embedRef
}

func (m *Manager) Completer() (LLMProvider, ProviderRef) {
	return m.llm, m.llmRef
}

func buildProvider(ref ProviderRef, cfg config.Config) (any, error) {
	switch strings.ToLower(ref.Name) {
	case "mock":
		return NewMockProvider(cfg.EmbedDim), nil
	case "openai":
		return NewOpenAIProvider(ref.KeyAlias, OpenAIOptions{EmbedModel: cfg.EmbedModel, ChatModel: cfg.ChatModel}), nil
	case "ollama":
		return NewOllamaProvider(ref.KeyAlias), nil
	case "groq":
		return NewGroqProvider(ref.KeyAlias), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", ref.Name)
	}
}
