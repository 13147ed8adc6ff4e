package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

type rateLimited struct {
	next    TableReader
	limiter *rate.Limiter
}

// RateLimited throttles calls to next to rps requests per second (burst 1).
func RateLimited(next TableReader, rps float64) TableReader {
	if next == nil || rps <= 0 {
		return next
	}
	return &rateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

func (r *rateLimited) Name() string { return r.next.Name() }

func (r *rateLimited) ReadTable(ctx context.Context, req TableRequest) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return r.next.ReadTable(ctx, req)
}
