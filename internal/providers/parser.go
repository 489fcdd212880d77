package providers

import "strings"

// ProviderRef names a provider and an optional alias, written "name:alias".
// The alias selects an API key for openai/groq and a model for ollama.
type ProviderRef struct {
	Raw      string
	Name     string
	KeyAlias string
}

func ParseProviderRef(raw string) ProviderRef {
	p := strings.TrimSpace(raw)
	if p == "" {
		return ProviderRef{Raw: "mock", Name: "mock"}
	}
	ref := ProviderRef{Raw: p}
	if strings.Contains(p, ":") {
		x := strings.SplitN(p, ":", 2)
		ref.Name = strings.ToLower(strings.TrimSpace(x[0]))
		ref.KeyAlias = strings.TrimSpace(x[1])
	} else {
		ref.Name = strings.ToLower(p)
	}
	return ref
}
