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
}

// MockImageResponse is a canned image for the MockProvider.
type MockImageResponse struct {
	Data     []byte
	MIMEType string
	Err      error
}

// MockProvider is a deterministic Provider and ImageProvider for testing.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	images    []MockImageResponse

	// Gate, when set, blocks every call until a value is received or the
	// context is done.
	Gate chan struct{}

	Calls      []Request
	ImageCalls []ImageRequest
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// GenerateImage returns the next canned image or ErrProviderUnavailable if
// the queue is empty.
func (m *MockProvider) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	m.mu.Lock()
	m.ImageCalls = append(m.ImageCalls, req)
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.images) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	img := m.images[0]
	m.images = m.images[1:]

	if img.Err != nil {
		return nil, img.Err
	}
	model := req.Model
	if model == "" {
		model = "mock-image"
	}
	return &ImageResponse{Data: img.Data, MIMEType: img.MIMEType, Model: model}, nil
}

func (m *MockProvider) wait(ctx context.Context) error {
	if m.Gate == nil {
		return nil
	}
	select {
	case <-m.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
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

// AddImage appends a canned image to the queue.
func (m *MockProvider) AddImage(img MockImageResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images = append(m.images, img)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// ImageCallCount returns the number of GenerateImage calls made.
func (m *MockProvider) ImageCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ImageCalls)
}

// LastCall returns the most recent Generate request.
func (m *MockProvider) LastCall() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}
