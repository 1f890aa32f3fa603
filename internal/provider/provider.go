package provider

import (
	"context"
	"errors"
	"time"

	"github.com/yo1233/stock-forecast-analyzer/internal/model"
)

// Provider fetches a raw quote/target record for one symbol from one
// upstream. Implementations must gate every network call on their rate
// limiter and must return an error instead of panicking or blocking the
// batch: a failed symbol is recorded and skipped, never fatal.
type Provider interface {
	Fetch(ctx context.Context, symbol string) (*model.RawQuote, error)
	Name() string
}

var (
	// ErrThrottled means the upstream reported call-frequency throttling
	// even after the adapter's cooldown retry.
	ErrThrottled = errors.New("upstream rate limit exceeded")

	// ErrPolicyDenied means robots.txt disallows the fetch; no content
	// request was made.
	ErrPolicyDenied = errors.New("robots policy disallows fetch")

	// ErrNoData means the upstream answered but carried neither a price
	// nor a target for the symbol.
	ErrNoData = errors.New("no quote or target data")
)

// sleepCtx pauses for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
