package resolver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"media-resolver/internal/mediaitem"
	"media-resolver/internal/workers"
)

// Result is the resolution of one path in a batch.
type Result struct {
	Path        string            `json:"path"`
	Items       []*mediaitem.Item `json:"items"`
	Diagnostics Diagnostics       `json:"diagnostics,omitempty"`
}

// LoadMany resolves paths concurrently and returns results in input order.
// Cancelling ctx stops scheduling further paths; LoadMedia calls already
// running finish. On cancellation the results resolved so far are returned
// together with ctx.Err().
func (r *Resolver) LoadMany(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers.ForIO(len(paths)))

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items, diags := r.LoadMedia(path)
			results[i] = Result{Path: path, Items: items, Diagnostics: diags}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
