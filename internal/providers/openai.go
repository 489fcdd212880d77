package providers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultOpenAIEmbedModel = "text-embedding-ada-002"
	defaultOpenAIChatModel  = "gpt-3.5-turbo"
)

// OpenAIOptions configures an OpenAI-compatible endpoint. BaseURL is empty for
// api.openai.com.
type OpenAIOptions struct {
	EmbedModel string
	ChatModel  string
	BaseURL    string
	Timeout    time.Duration
}

// OpenAIProvider talks to the OpenAI REST API, or any compatible endpoint,
// through the official SDK. SDK retries are off; failures surface to the
// caller unchanged.
type OpenAIProvider struct {
	name       string
	keyName    string
	apiKey     string
	embedModel string
	chatModel  string
	client     openai.Client
}

func NewOpenAIProvider(keyName string, opts OpenAIOptions) *OpenAIProvider {
	return newOpenAICompatible("openai", keyName, resolveOpenAIKey(keyName), opts)
}

func newOpenAICompatible(name, keyName, apiKey string, opts OpenAIOptions) *OpenAIProvider {
	if strings.TrimSpace(opts.EmbedModel) == "" {
		opts.EmbedModel = defaultOpenAIEmbedModel
	}
	if strings.TrimSpace(opts.ChatModel) == "" {
		opts.ChatModel = defaultOpenAIChatModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(opts.Timeout),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	return &OpenAIProvider{
		name:       name,
		keyName:    keyName,
		apiKey:     apiKey,
		embedModel: opts.EmbedModel,
		chatModel:  opts.ChatModel,
		client:     openai.NewClient(reqOpts...),
	}
}

func (o *OpenAIProvider) Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error) {
	info := ProviderInfo{Name: o.name, Model: o.embedModel, Key: o.keyName}
	if o.apiKey == "" {
		return nil, info, fmt.Errorf("%s key missing for alias %q", o.name, o.keyName)
	}
	if len(req.Inputs) == 0 {
		return nil, info, fmt.Errorf("no embedding inputs")
	}
	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: req.Inputs},
		Model: o.embedModel,
	})
	if err != nil {
		return nil, info, fmt.Errorf("%s embedding request failed: %w", o.name, err)
	}
	out := make([][]float32, len(req.Inputs))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, info, fmt.Errorf("%s embedding index %d out of range", o.name, d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i, x := range d.Embedding {
			v[i] = float32(x)
		}
		out[d.Index] = v
	}
	for i, v := range out {
		if len(v) == 0 {
			return nil, info, fmt.Errorf("%s returned no embedding for input %d", o.name, i)
		}
	}
	return out, info, nil
}

func (o *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: o.name, Model: o.chatModel, Key: o.keyName}
	if o.apiKey == "" {
		return GenerateResponse{}, info, fmt.Errorf("%s key missing for alias %q", o.name, o.keyName)
	}
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Model: o.chatModel,
	})
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("%s generate request failed: %w", o.name, err)
	}
	if len(resp.Choices) == 0 {
		return GenerateResponse{}, info, fmt.Errorf("%s returned empty choices", o.name)
	}
	return GenerateResponse{Text: resp.Choices[0].Message.Content}, info, nil
}

func resolveOpenAIKey(alias string) string {
	if alias != "" {
		k := os.Getenv("DOCQA_OPENAI_KEY_" + sanitizeEnvToken(alias))
		if k != "" {
			return k
		}
	}
	return os.Getenv("OPENAI_API_KEY")
}
