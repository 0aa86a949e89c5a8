package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net"
	"time"
)

// RetryProvider retries requests that failed for a reason the provider
// may not repeat: rate limits, outages and network timeouts. A response
// that arrived but was unusable is returned at once, since asking again
// costs the user another full generation.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	return retry(ctx, r.config, func(ctx context.Context) (*Response, error) {
		return r.inner.Generate(ctx, req)
	})
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// RetryImageProvider applies the same policy to image requests.
type RetryImageProvider struct {
	inner  ImageProvider
	config RetryConfig
}

// WithImageRetry wraps an ImageProvider with retry logic.
func WithImageRetry(p ImageProvider, cfg RetryConfig) ImageProvider {
	return &RetryImageProvider{inner: p, config: cfg}
}

func (r *RetryImageProvider) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	return retry(ctx, r.config, func(ctx context.Context) (*ImageResponse, error) {
		return r.inner.GenerateImage(ctx, req)
	})
}

func retry[T any](ctx context.Context, cfg RetryConfig, call func(context.Context) (T, error)) (T, error) {
	attempts := max(cfg.MaxAttempts, 1)
	for attempt := 1; ; attempt++ {
		out, err := call(withAttempt(ctx, attempt))
		if err == nil || attempt == attempts || !Retryable(err) {
			return out, err
		}

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-time.After(cfg.backoff(attempt, err)):
		}
	}
}

// Retryable reports whether a failed request is worth sending again.
// Only rate limits, provider outages and network timeouts qualify.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var (
		rl      *ErrRateLimit
		unavail *ErrProviderUnavailable
		netErr  net.Error
	)
	switch {
	case errors.As(err, &rl), errors.As(err, &unavail):
		return true
	case errors.As(err, &netErr):
		return netErr.Timeout()
	}
	return false
}

// backoff returns the wait before the attempt after the given one. A
// rate limit's RetryAfter is honored up to MaxWait.
func (c RetryConfig) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return min(rl.RetryAfter, c.MaxWait)
	}

	wait := float64(c.InitialWait) * math.Pow(c.Multiplier, float64(attempt-1))
	wait = min(wait, float64(c.MaxWait))
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(wait, 0))
}
