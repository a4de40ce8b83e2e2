package llm

import (
	"context"
	"encoding/json"
)

// Provider is a text model that answers with structured JSON.
type Provider interface {
	// Generate sends a prompt and returns the model output. When the
	// request carries a Schema the provider asks for JSON conforming to
	// it and validates the result before returning.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// ImageProvider is an image model that turns a prompt into one picture.
type ImageProvider interface {
	// GenerateImage returns the first image the model produced. A
	// response without image data yields an ImageResponse with empty
	// Data and a nil error.
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the text model.
type Request struct {
	// System is the system prompt. Optional.
	System string

	// Messages is the conversation history. Generation here is always
	// single-turn, so this holds one user message.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// When nil, the response Content is raw text as json.RawMessage.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	// Zero leaves the provider default in place.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema, e.g. "assessment". Used as the schema
	// name for OpenAI and as the cache key for validation.
	Name string

	// Description is sent to the model to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any

	// Strict asks providers that support it to reject any deviation
	// from Definition. OpenAI strict mode requires every property to be
	// listed as required, so schemas with optional fields leave it off.
	Strict bool
}

// Response holds the text model's output.
type Response struct {
	// Content is the generated output. With a Schema this is the
	// validated JSON object.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is one of StopEnd, StopMaxTokens or StopRefused.
	StopReason string
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
	StopRefused   = "refused"
)

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// ImageRequest describes one picture to draw.
type ImageRequest struct {
	Prompt string
}

// ImageResponse holds a generated picture as raw bytes.
type ImageResponse struct {
	MIMEType string
	Data     []byte
	Usage    Usage
	Model    string
}

// Empty reports whether the model answered without image data.
func (r *ImageResponse) Empty() bool {
	return r == nil || len(r.Data) == 0
}
