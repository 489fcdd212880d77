package embedding

import (
	"context"
	"errors"
	"testing"

	"docqa/internal/providers"

	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	vecs [][]float32
	err  error
}

func (s stubProvider) Embed(context.Context, providers.EmbedRequest) ([][]float32, providers.ProviderInfo, error) {
	return s.vecs, providers.ProviderInfo{Name: "stub"}, s.err
}

func TestClientEmbedWithMock(t *testing.T) {
	c := NewClient(providers.NewMockProvider(16), "mock", Options{Dimension: 16, RequestsPerSecond: 100, Burst: 10})
	v, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, v, 16)
	require.Equal(t, 16, c.Dimension())
}

func TestClientWrapsProviderFailure(t *testing.T) {
	c := NewClient(stubProvider{err: errors.New("connection refused")}, "stub", Options{Dimension: 2})
	v, err := c.Embed(context.Background(), "x")
	require.Nil(t, v)
	var epe *providers.EmbeddingProviderError
	require.True(t, errors.As(err, &epe))
	require.Equal(t, "stub", epe.Provider)
	require.Equal(t, providers.ErrorTransient, epe.Kind)
}

func TestClientRejectsMalformedOutput(t *testing.T) {
	cases := map[string][][]float32{
		"no vectors":      nil,
		"two vectors":     {{1, 2}, {3, 4}},
		"wrong dimension": {{1, 2, 3}},
	}
	for name, vecs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewClient(stubProvider{vecs: vecs}, "stub", Options{Dimension: 2}).Embed(context.Background(), "x")
			var epe *providers.EmbeddingProviderError
			require.True(t, errors.As(err, &epe))
		})
	}
}

func TestClientLimiterHonoursContext(t *testing.T) {
	c := NewClient(providers.NewMockProvider(4), "mock", Options{Dimension: 4, RequestsPerSecond: 0.001, Burst: 1})
	_, err := c.Embed(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Embed(ctx, "second")
	var epe *providers.EmbeddingProviderError
	require.True(t, errors.As(err, &epe))
}
