package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAITestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/embeddings"):
			inputs := body["input"].([]any)
			data := make([]map[string]any, 0, len(inputs))
			for i := range inputs {
				data = append(data, map[string]any{"object": "embedding", "index": i, "embedding": []float64{float64(i), 0.5}})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"object": "list",
				"data":   data,
				"model":  body["model"],
				"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
			})
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			msgs := body["messages"].([]any)
			assert.Len(t, msgs, 2)
			assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
			assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion",
				"created": 1,
				"model":   body["model"],
				"choices": []map[string]any{{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": "answer: " + msgs[1].(map[string]any)["content"].(string)},
				}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestOpenAIProviderEmbedAndGenerate(t *testing.T) {
	srv := newOpenAITestServer(t)
	defer srv.Close()
	t.Setenv("OPENAI_API_KEY", "test-key")

	p := NewOpenAIProvider("", OpenAIOptions{BaseURL: srv.URL + "/"})
	vecs, info, err := p.Embed(context.Background(), EmbedRequest{Inputs: []string{"x", "y"}})
	require.NoError(t, err)
	require.Equal(t, "openai", info.Name)
	require.Equal(t, defaultOpenAIEmbedModel, info.Model)
	require.Equal(t, [][]float32{{0, 0.5}, {1, 0.5}}, vecs)

	resp, _, err := p.Generate(context.Background(), GenerateRequest{System: "context", Prompt: "q?"})
	require.NoError(t, err)
	require.Equal(t, "answer: q?", resp.Text)
}

func TestOpenAIProviderMissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, _, err := NewOpenAIProvider("nokey", OpenAIOptions{}).Embed(context.Background(), EmbedRequest{Inputs: []string{"x"}})
	require.Error(t, err)
}

func TestOpenAIProviderRateLimitClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"requests","code":"rate_limit_exceeded"}}`))
	}))
	defer srv.Close()
	t.Setenv("OPENAI_API_KEY", "test-key")

	_, _, err := NewOpenAIProvider("", OpenAIOptions{BaseURL: srv.URL + "/"}).Embed(context.Background(), EmbedRequest{Inputs: []string{"x"}})
	require.Error(t, err)
	require.Equal(t, ErrorRate, ClassifyError(err))
}

func TestGroqProviderUsesCompatibleEndpoint(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	p := NewGroqProvider("alias1")
	_, info, err := p.Generate(context.Background(), GenerateRequest{Prompt: "hi"})
	require.Error(t, err)
	require.Equal(t, "groq", info.Name)
}
