package llm

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrRateLimit indicates the provider answered 429. Nothing in this
// package waits or retries; the caller reports it.
type ErrRateLimit struct {
	Err error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the model returned content that is not
// usable: malformed JSON, a schema violation or a refusal. Path is the
// JSON pointer of the first offending value when a schema check failed.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Path    string
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid LLM response at %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was cut off at MaxTokens.
// A truncated assessment is never parsed.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return fmt.Sprintf("LLM response truncated at max tokens (%d bytes received)", len(e.Content))
}

// ErrorKind is a short label for err, used in logs and the event log.
func ErrorKind(err error) string {
	var (
		rateLimit   *ErrRateLimit
		invalid     *ErrInvalidResponse
		unavailable *ErrProviderUnavailable
		truncated   *ErrMaxTokensExceeded
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rateLimit):
		return "rate_limited"
	case errors.As(err, &truncated):
		return "truncated"
	case errors.As(err, &invalid):
		return "invalid_response"
	case errors.As(err, &unavailable):
		return "unavailable"
	default:
		return "other"
	}
}

// checkOutput rejects truncated or refused output, then validates the
// content against req.Schema when one was requested.
func checkOutput(req Request, content json.RawMessage, stop string) error {
	switch stop {
	case StopMaxTokens:
		return &ErrMaxTokensExceeded{Content: content}
	case StopRefused:
		return &ErrInvalidResponse{Content: content, Err: errors.New("model declined to answer")}
	}
	if req.Schema == nil {
		return nil
	}
	return ValidateResponse(req.Schema, content)
}
