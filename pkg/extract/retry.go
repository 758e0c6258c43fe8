package extract

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/orgtower/pkg/contact"
)

// RetryableError marks a failure as transient. [Retry] tries again only
// for errors that wrap one.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn until it succeeds, returns an error that is not a
// [RetryableError], or has been called attempts times. The wait starts at
// delay and doubles between calls. Cancelling ctx while waiting returns
// ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	for n := 1; ; n++ {
		err := fn()
		if err == nil || n >= attempts || !errors.As(err, new(*RetryableError)) {
			return err
		}
		wait := time.NewTimer(delay << (n - 1))
		select {
		case <-ctx.Done():
			wait.Stop()
			return ctx.Err()
		case <-wait.C:
		}
	}
}

// WithRetry wraps ex so that failures marked with [RetryableError] are
// attempted again. It is meant for extractors that call remote services,
// built with [FuncExtractor]; [StaticExtractor] never fails transiently.
func WithRetry(ex Extractor, attempts int, delay time.Duration) Extractor {
	return FuncExtractor(func(ctx context.Context, text string) (*contact.Analysis, error) {
		var out *contact.Analysis
		err := Retry(ctx, attempts, delay, func() error {
			a, err := ex.Extract(ctx, text)
			out = a
			return err
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}
