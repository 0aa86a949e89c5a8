package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for text generation.
type Provider interface {
	// Generate sends a prompt to the model. When the request carries a
	// Schema the provider asks for JSON using its native structured output
	// mechanism; the caller is responsible for validating what comes back.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// ImageProvider generates images from a text prompt.
type ImageProvider interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error)
}

// Request describes what to send to the model.
type Request struct {
	// System is the system instruction.
	System string

	// Messages is the conversation. Single-turn generation sends one user
	// message.
	Messages []Message

	// Schema is the JSON Schema the response should conform to.
	// When nil, the response Content is raw text.
	Schema *Schema

	// MaxTokens caps the response length. Zero leaves it to the provider.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string

	// Attachments are inline binary parts sent alongside Content.
	Attachments []Attachment
}

// Attachment is an inline document, e.g. a PDF.
type Attachment struct {
	MIMEType string

	// Data is the base64-encoded payload.
	Data string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema (used as schema name for OpenAI and as the
	// validation cache key). Kebab-case, e.g. "study-pack".
	Name string

	// Description is a human-readable description of what this schema
	// represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the text the model returned, unmodified. For structured
	// requests it should be JSON but may still carry markdown fences.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// ImageRequest describes one image generation call.
type ImageRequest struct {
	Prompt string

	// Model overrides the provider's default image model.
	Model string

	// AspectRatio such as "1:1".
	AspectRatio string

	// ImageSize such as "2K". Empty for models that do not take a size.
	ImageSize string
}

// ImageResponse holds the first image returned by the model.
type ImageResponse struct {
	Data     []byte
	MIMEType string
	Model    string
	Usage    Usage
}
