package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter wraps a Client with a request rate limit so agent fan-out does
// not trip provider quotas.
type Limiter struct {
	inner   Client
	limiter *rate.Limiter
}

// NewLimiter wraps the client at requestsPerMinute. Zero or negative
// disables limiting.
func NewLimiter(inner Client, requestsPerMinute int) *Limiter {
	var rl *rate.Limiter
	if requestsPerMinute > 0 {
		rl = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
	}
	return &Limiter{inner: inner, limiter: rl}
}

// Name identifies the wrapped provider.
func (l *Limiter) Name() string { return l.inner.Name() }

// Complete waits for a rate token, then delegates.
func (l *Limiter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	return l.inner.Complete(ctx, systemPrompt, userPrompt)
}
