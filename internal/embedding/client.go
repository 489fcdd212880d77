package embedding

import (
	"context"
	"fmt"

	"docqa/internal/providers"

	"golang.org/x/time/rate"
)

type Options struct {
	Dimension         int
	RequestsPerSecond float64
	Burst             int
}

// Client turns one text into one vector of a fixed dimension. Calls share a
// token bucket so concurrent ingestion stays under the provider's rate limit.
type Client struct {
	provider providers.EmbeddingProvider
	name     string
	dim      int
	limiter  *rate.Limiter
}

func NewClient(p providers.EmbeddingProvider, name string, opts Options) *Client {
	c := &Client{provider: p, name: name, dim: opts.Dimension}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c
}

func (c *Client) Dimension() int { return c.dim }

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, providers.NewEmbeddingError(c.name, fmt.Errorf("rate limiter: %w", err))
		}
	}
	vecs, info, err := c.provider.Embed(ctx, providers.EmbedRequest{
		Operation: "embed",
		Inputs:    []string{text},
		Dimension: c.dim,
	})
	name := c.name
	if info.Name != "" {
		name = info.Name
	}
	if err != nil {
		return nil, providers.NewEmbeddingError(name, err)
	}
	if len(vecs) != 1 {
		return nil, providers.NewEmbeddingError(name, fmt.Errorf("malformed response: %d vectors for 1 input", len(vecs)))
	}
	if c.dim > 0 && len(vecs[0]) != c.dim {
		return nil, providers.NewEmbeddingError(name, fmt.Errorf("malformed response: dimension %d, want %d", len(vecs[0]), c.dim))
	}
	return vecs[0], nil
}
