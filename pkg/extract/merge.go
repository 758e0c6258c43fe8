package extract

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/errors"
)

// MaxConcurrency bounds how many documents ExtractAll sends at once.
const MaxConcurrency = 4

// ExtractAll extracts every document concurrently and merges the results
// with [Merge]. The first failure cancels the remaining requests.
func ExtractAll(ctx context.Context, ex Extractor, docs []string) (contact.Analysis, error) {
	if len(docs) == 0 {
		return contact.Analysis{}, errors.New(errors.ErrCodeInvalidInput, "no documents to analyze")
	}

	results := make([]contact.Analysis, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrency)
	for i, doc := range docs {
		g.Go(func() error {
			a, err := ex.Extract(gctx, doc)
			if err != nil {
				return err
			}
			if a != nil {
				results[i] = *a
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return contact.Analysis{}, err
	}
	return Merge(results...), nil
}

// Merge concatenates analyses in order. The first non-empty account name
// wins; summaries are joined by blank lines. Contacts are not deduplicated.
func Merge(parts ...contact.Analysis) contact.Analysis {
	var (
		out       contact.Analysis
		summaries []string
	)
	for _, p := range parts {
		if out.AccountName == "" {
			out.AccountName = strings.TrimSpace(p.AccountName)
		}
		if s := strings.TrimSpace(p.ExecutiveSummary); s != "" {
			summaries = append(summaries, s)
		}
		out.CriticalAlignmentGaps = append(out.CriticalAlignmentGaps, p.CriticalAlignmentGaps...)
		out.StrategicWins = append(out.StrategicWins, p.StrategicWins...)
		out.Contacts = append(out.Contacts, contact.CloneAll(p.Contacts)...)
	}
	out.ExecutiveSummary = strings.Join(summaries, "\n\n")
	return out
}
