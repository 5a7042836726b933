package reconcile

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DetailFetcher loads the full record for id.
type DetailFetcher func(ctx context.Context, id string) (Record, error)

// NeedsDetails reports whether rec arrived in summary form: it has an id
// but none of serviceDetails, totalAmount or paymentStatus.
func NeedsDetails(rec Record) bool {
	if ID(rec) == "" {
		return false
	}
	return !truthy(rec[detailsKey]) && !truthy(rec["totalAmount"]) && !truthy(rec["paymentStatus"])
}

// EnrichMissingDetails fetches summary records concurrently, at most limit
// at a time, and shallow-merges each result over its original. A failed
// fetch leaves that record untouched. The output keeps the input order.
func EnrichMissingDetails(ctx context.Context, records []Record, fetch DetailFetcher, limit int) []Record {
	out := make([]Record, len(records))
	copy(out, records)

	if limit < 1 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for i, rec := range records {
		if !NeedsDetails(rec) {
			continue
		}

		g.Go(func() error {
			full, err := fetch(ctx, ID(rec))
			if err != nil || full == nil {
				return nil
			}

			enriched := rec.Clone()
			for k, v := range full {
				enriched[k] = v
			}
			out[i] = enriched
			return nil
		})
	}

	_ = g.Wait()
	return out
}
