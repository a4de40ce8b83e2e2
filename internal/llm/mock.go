package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error

	// StopReason defaults to StopEnd. StopMaxTokens makes Generate fail
	// with *ErrMaxTokensExceeded, as the real providers do.
	StopReason string
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}

	stop := resp.StopReason
	if stop == "" {
		stop = StopEnd
	}
	if stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: resp.Content}
	}
	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: stop,
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockImageResponse is a canned response for the MockImageProvider.
type MockImageResponse struct {
	MIMEType string
	Data     []byte
	Err      error
}

// MockImageProvider is a deterministic ImageProvider for testing.
// It returns canned responses in FIFO order and records all prompts.
type MockImageProvider struct {
	mu        sync.Mutex
	responses []MockImageResponse
	Calls     []ImageRequest
}

// NewMockImageProvider creates a MockImageProvider with the given canned responses.
func NewMockImageProvider(responses ...MockImageResponse) *MockImageProvider {
	return &MockImageProvider{responses: responses}
}

// GenerateImage returns the next canned response or
// ErrProviderUnavailable if the queue is empty.
func (m *MockImageProvider) GenerateImage(_ context.Context, req ImageRequest) (*ImageResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}
	return &ImageResponse{MIMEType: resp.MIMEType, Data: resp.Data, Model: "mock-image"}, nil
}

// ModelID returns "mock-image".
func (m *MockImageProvider) ModelID() string {
	return "mock-image"
}

// CallCount returns the number of GenerateImage calls made.
func (m *MockImageProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// AddResponse appends a canned response to the queue.
func (m *MockImageProvider) AddResponse(resp MockImageResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}
