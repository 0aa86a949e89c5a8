package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

// attemptRecorder fails with errs in order, then succeeds, recording the
// attempt number each call saw.
type attemptRecorder struct {
	errs     []error
	attempts []int
}

func (a *attemptRecorder) Generate(ctx context.Context, _ Request) (*Response, error) {
	a.attempts = append(a.attempts, AttemptFrom(ctx))
	if len(a.errs) > 0 {
		err := a.errs[0]
		a.errs = a.errs[1:]
		return nil, err
	}
	return &Response{Content: json.RawMessage(`{"ok":true}`)}, nil
}

func (a *attemptRecorder) ModelID() string { return "recorder" }

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	rec := &attemptRecorder{}
	if _, err := WithRetry(rec, retryConfig()).Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.attempts) != 1 || rec.attempts[0] != 1 {
		t.Fatalf("attempts = %v, want [1]", rec.attempts)
	}
}

func TestRetry_OutageThenSuccessNumbersAttempts(t *testing.T) {
	rec := &attemptRecorder{errs: []error{
		&ErrProviderUnavailable{Err: errors.New("503")},
		&ErrRateLimit{Err: errors.New("429")},
	}}

	resp, err := WithRetry(rec, retryConfig()).Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"ok":true}` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	want := []int{1, 2, 3}
	if len(rec.attempts) != len(want) {
		t.Fatalf("attempts = %v, want %v", rec.attempts, want)
	}
	for i := range want {
		if rec.attempts[i] != want[i] {
			t.Fatalf("attempts = %v, want %v", rec.attempts, want)
		}
	}
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("still down")}},
		MockResponse{Content: json.RawMessage(`{"ok":true}`)},
	)

	_, err := WithRetry(mock, retryConfig()).Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) || unavail.Err.Error() != "still down" {
		t.Fatalf("expected the last outage error, got %v", err)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
}

func TestRetry_SingleAttemptWhenUnset(t *testing.T) {
	rec := &attemptRecorder{errs: []error{&ErrProviderUnavailable{}}}
	_, err := WithRetry(rec, RetryConfig{}).Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(rec.attempts) != 1 {
		t.Fatalf("expected 1 call, got %d", len(rec.attempts))
	}
}

func TestRetry_UnusableResponsesAreNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"invalid response", &ErrInvalidResponse{Content: json.RawMessage(`{"meta":`), Err: errors.New("unexpected EOF")}},
		{"truncated", &ErrMaxTokensExceeded{Content: json.RawMessage(`{}`)}},
		{"model not found", &ErrNotFound{Err: errors.New("Requested entity was not found")}},
		{"unsupported attachment", &ErrUnsupportedInput{Provider: "openai", Feature: "PDF attachments"}},
		{"unclassified", errors.New("invalid api key")},
		{"dns failure", &net.DNSError{Err: "no such host", Name: "api.example", IsNotFound: true}},
		{"canceled", context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &attemptRecorder{errs: []error{tt.err}}
			_, err := WithRetry(rec, retryConfig()).Generate(context.Background(), Request{})
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v unchanged, got %v", tt.err, err)
			}
			if len(rec.attempts) != 1 {
				t.Fatalf("expected 1 call, got %d", len(rec.attempts))
			}
		})
	}
}

func TestRetry_NetworkTimeoutIsRetried(t *testing.T) {
	rec := &attemptRecorder{errs: []error{&net.DNSError{Err: "i/o timeout", Name: "api.example", IsTimeout: true}}}
	if _, err := WithRetry(rec, retryConfig()).Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.attempts) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(rec.attempts))
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Content: json.RawMessage(`{"ok":true}`)},
	)
	cfg := retryConfig()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := WithRetry(mock, cfg).Generate(ctx, Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_RetryAfterIsCappedByMaxWait(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Hour, Err: errors.New("429")}},
		MockResponse{Content: json.RawMessage(`{"ok":true}`)},
	)

	start := time.Now()
	if _, err := WithRetry(mock, retryConfig()).Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if waited := time.Since(start); waited > time.Second {
		t.Fatalf("waited %s, want at most MaxWait", waited)
	}
}

func TestRetry_BackoffGrowsToMaxWait(t *testing.T) {
	cfg := RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: 300 * time.Millisecond, Multiplier: 2}
	tests := []struct {
		attempt int
		base    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 300 * time.Millisecond},
		{6, 300 * time.Millisecond},
	}
	for _, tt := range tests {
		got := cfg.backoff(tt.attempt, errors.New("x"))
		lo, hi := tt.base*8/10, tt.base*12/10
		if got < lo || got > hi {
			t.Errorf("backoff(%d) = %s, want within [%s, %s]", tt.attempt, got, lo, hi)
		}
	}
}

func TestImageRetry(t *testing.T) {
	mock := NewMockProvider()
	mock.AddImage(MockImageResponse{Err: &ErrRateLimit{Err: errors.New("quota")}})
	mock.AddImage(MockImageResponse{Data: []byte("png"), MIMEType: "image/png"})

	resp, err := WithImageRetry(mock, retryConfig()).GenerateImage(context.Background(), ImageRequest{Prompt: "a leaf"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Data) != "png" || mock.ImageCallCount() != 2 {
		t.Fatalf("got %q after %d calls", resp.Data, mock.ImageCallCount())
	}

	mock.AddImage(MockImageResponse{Err: &ErrInvalidResponse{Err: errors.New("no image part")}})
	if _, err := WithImageRetry(mock, retryConfig()).GenerateImage(context.Background(), ImageRequest{}); err == nil {
		t.Fatal("expected error")
	}
	if mock.ImageCallCount() != 3 {
		t.Fatalf("expected an invalid image response to stop after one call, got %d calls", mock.ImageCallCount())
	}
}
