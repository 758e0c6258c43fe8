package extract

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/observability"
)

// ErrSuperseded is returned for a response that lost to a newer request.
var ErrSuperseded = errors.New(errors.ErrCodeSuperseded, "a newer analysis request replaced this one")

// Coordinator stamps extraction requests with sequence numbers so that only
// the latest response is applied. The zero value is ready to use and is
// safe for concurrent use.
type Coordinator struct {
	seq atomic.Uint64
}

// Latest returns the sequence number of the most recent request.
func (c *Coordinator) Latest() uint64 { return c.seq.Load() }

// Run extracts docs as a new request and returns the normalized, merged
// analysis. It fails with
//
//   - SUPERSEDED when another request started while this one ran
//   - EXTRACTION_FAILED when the extractor fails
//   - NO_STAKEHOLDERS when the merged analysis holds no contacts
//
// In every failure case the caller should keep its previous analysis.
func (c *Coordinator) Run(ctx context.Context, ex Extractor, docs []string) (contact.Analysis, uint64, error) {
	seq := c.seq.Add(1)
	hooks := observability.Extraction()
	start := time.Now()
	hooks.OnExtractStart(ctx, seq, len(docs))

	a, err := ExtractAll(ctx, ex, docs)
	if latest := c.seq.Load(); latest != seq {
		hooks.OnSuperseded(ctx, seq, latest)
		return contact.Analysis{}, seq, ErrSuperseded
	}
	if err != nil {
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			err = errors.Wrap(errors.ErrCodeExtraction, err, "analysis failed")
		}
		hooks.OnExtractComplete(ctx, seq, 0, time.Since(start), err)
		return contact.Analysis{}, seq, err
	}

	a = contact.NormalizeAnalysis(a)
	if len(a.Contacts) == 0 {
		err := errors.New(errors.ErrCodeNoStakeholders, "no stakeholders identified")
		hooks.OnExtractComplete(ctx, seq, 0, time.Since(start), err)
		return contact.Analysis{}, seq, err
	}
	hooks.OnExtractComplete(ctx, seq, len(a.Contacts), time.Since(start), nil)
	return a, seq, nil
}
