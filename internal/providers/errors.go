package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
)

type ErrorType string

const (
	ErrorQuota     ErrorType = "quota"
	ErrorRate      ErrorType = "rate"
	ErrorTransient ErrorType = "transient"
	ErrorPermanent ErrorType = "permanent"
	ErrorContext   ErrorType = "context"
)

var (
	ErrQuotaExhausted = errors.New("provider quota exhausted")
	ErrRateLimited    = errors.New("provider rate limited")
	ErrTransient      = errors.New("transient provider error")
	ErrPermanent      = errors.New("permanent provider error")
	ErrContextTooLong = errors.New("context too long")
)

// Sentinel maps the classification onto the error values above so callers
// can match with errors.Is.
func (t ErrorType) Sentinel() error {
	switch t {
	case ErrorQuota:
		return ErrQuotaExhausted
	case ErrorRate:
		return ErrRateLimited
	case ErrorTransient:
		return ErrTransient
	case ErrorContext:
		return ErrContextTooLong
	default:
		return ErrPermanent
	}
}

func ClassifyError(err error) ErrorType {
	if err == nil {
		return ""
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		raw := strings.ToLower(apiErr.Code + " " + apiErr.Message)
		switch {
		case strings.Contains(raw, "insufficient_quota"), strings.Contains(raw, "quota"):
			return ErrorQuota
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return ErrorRate
		case strings.Contains(raw, "context_length"), strings.Contains(raw, "too long"):
			return ErrorContext
		case apiErr.StatusCode >= 500, apiErr.StatusCode == http.StatusRequestTimeout:
			return ErrorTransient
		default:
			return ErrorPermanent
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorTransient
	}
	e := strings.ToLower(err.Error())
	switch {
	case strings.Contains(e, "quota"), strings.Contains(e, "credit"), strings.Contains(e, "insufficient_quota"):
		return ErrorQuota
	case strings.Contains(e, "rate limit"), strings.Contains(e, "rate_limit"), strings.Contains(e, "429"),
		strings.Contains(e, "too many requests"):
		return ErrorRate
	case strings.Contains(e, "context length"), strings.Contains(e, "context_length"), strings.Contains(e, "too long"):
		return ErrorContext
	case strings.Contains(e, "timeout"), strings.Contains(e, "temporarily"), strings.Contains(e, "unavailable"),
		strings.Contains(e, "connection refused"):
		return ErrorTransient
	default:
		return ErrorPermanent
	}
}

// EmbeddingProviderError is returned when a text could not be turned into a
// vector: the provider was unreachable, throttled or answered malformed data.
type EmbeddingProviderError struct {
	Provider string
	Kind     ErrorType
	Err      error
}

func NewEmbeddingError(provider string, err error) *EmbeddingProviderError {
	return &EmbeddingProviderError{Provider: provider, Kind: ClassifyError(err), Err: err}
}

func (e *EmbeddingProviderError) Error() string {
	return fmt.Sprintf("embedding provider %s (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *EmbeddingProviderError) Unwrap() error { return e.Err }

func (e *EmbeddingProviderError) Is(target error) bool {
	return target == e.Kind.Sentinel()
}

// CompletionProviderError is the answer-path counterpart of
// EmbeddingProviderError.
type CompletionProviderError struct {
	Provider string
	Kind     ErrorType
	Err      error
}

func NewCompletionError(provider string, err error) *CompletionProviderError {
	return &CompletionProviderError{Provider: provider, Kind: ClassifyError(err), Err: err}
}

func (e *CompletionProviderError) Error() string {
	return fmt.Sprintf("completion provider %s (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *CompletionProviderError) Unwrap() error { return e.Err }

func (e *CompletionProviderError) Is(target error) bool {
	return target == e.Kind.Sentinel()
}
