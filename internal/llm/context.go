package llm

import "context"

// Purpose labels what a request is for in traces and the request log.
type Purpose string

const (
	PurposeStudyPack Purpose = "study-pack"
	PurposeChat      Purpose = "chat"
	PurposeImage     Purpose = "image"
	PurposeUnknown   Purpose = "unknown"
)

type (
	purposeKey struct{}
	attemptKey struct{}
)

// WithPurpose labels every request made with ctx.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the label set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok && p != "" {
		return p
	}
	return PurposeUnknown
}

func withAttempt(ctx context.Context, n int) context.Context {
	return context.WithValue(ctx, attemptKey{}, n)
}

// AttemptFrom returns the 1-based attempt number of a retried request.
// Requests made outside the retry middleware are attempt 1.
func AttemptFrom(ctx context.Context) int {
	if n, ok := ctx.Value(attemptKey{}).(int); ok && n > 0 {
		return n
	}
	return 1
}
