package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOllamaEmbedModel_Default(t *testing.T) {
	t.Setenv("DOCQA_OLLAMA_EMBED_MODEL", "")
	got := resolveOllamaEmbedModel("")
	if got != "nomic-embed-text" {
		t.Fatalf("expected default nomic-embed-text, got %q", got)
	}
	if got := resolveOllamaEmbedModel("mxbai-embed-large"); got != "mxbai-embed-large" {
		t.Fatalf("expected direct model name, got %q", got)
	}
}

func newOllamaTestServer(t *testing.T, dim int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/embeddings":
			vec := make([]float32, dim)
			vec[0] = 1
			_ = json.NewEncoder(w).Encode(map[string]any{"embedding": vec})
		case "/api/chat":
			msgs := body["messages"].([]any)
			user := msgs[1].(map[string]any)["content"].(string)
			_ = json.NewEncoder(w).Encode(map[string]any{"message": map[string]string{"role": "assistant", "content": "echo: " + user}})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestOllamaEmbedAndGenerate(t *testing.T) {
	srv := newOllamaTestServer(t, 4)
	defer srv.Close()
	t.Setenv("DOCQA_OLLAMA_BASE_URL", srv.URL)

	p := NewOllamaProvider("nomic")
	vecs, info, err := p.Embed(context.Background(), EmbedRequest{Inputs: []string{"a", "b"}, Dimension: 4})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	require.Equal(t, "nomic-embed-text", info.Model)

	resp, _, err := p.Generate(context.Background(), GenerateRequest{System: "ctx", Prompt: "why?"})
	require.NoError(t, err)
	require.Equal(t, "echo: why?", resp.Text)
}

func TestOllamaEmbedDimensionMismatch(t *testing.T) {
	srv := newOllamaTestServer(t, 3)
	defer srv.Close()
	t.Setenv("DOCQA_OLLAMA_BASE_URL", srv.URL)

	_, _, err := NewOllamaProvider("").Embed(context.Background(), EmbedRequest{Inputs: []string{"a"}, Dimension: 4})
	require.Error(t, err)
}
