package search

import (
	"context"
	"net/http"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/dharmasatrya/tripsearch/internal/filter"
	"github.com/dharmasatrya/tripsearch/internal/models"
	"github.com/dharmasatrya/tripsearch/internal/upstream"
)

// NonTransit searches one direct trip per street mode on the non-transit
// planner. Modes without a usable answer are left out. An error is returned
// only when every mode failed.
func (o *Orchestrator) NonTransit(ctx context.Context, params models.SearchParams, modes []models.StreetMode, headers http.Header) (map[models.StreetMode]models.TripPattern, error) {
	r := o.newRun(headers)

	var mu sync.Mutex
	results := make(map[models.StreetMode]models.TripPattern, len(modes))

	p := pool.New().WithErrors().WithContext(ctx)
	for _, mode := range modes {
		p.Go(func(ctx context.Context) error {
			trip, ok, err := r.direct(ctx, params, mode)
			if err != nil || !ok {
				return err
			}
			mu.Lock()
			results[mode] = trip
			mu.Unlock()
			return nil
		})
	}
	err := p.Wait()

	if err != nil {
		if len(results) == 0 {
			return nil, err
		}
		r.logger.Warn().Err(err).Int("modes_found", len(results)).Msg("Some non-transit searches failed")
	}
	return results, nil
}

func (r *run) direct(ctx context.Context, params models.SearchParams, mode models.StreetMode) (models.TripPattern, bool, error) {
	p := params.Clone()
	p.Modes = directModes(mode)
	p.SearchWindow = nil

	res, err := r.query(ctx, r.o.nonTransit, upstream.VariablesFromParams(p, 1))
	if err != nil {
		return models.TripPattern{}, false, err
	}
	for _, t := range r.norm.TripPatterns(res.TripPatterns) {
		if !filter.IsValidNonTransitDistance(t, mode) {
			continue
		}
		if mode == models.StreetModeBikeRental && !filter.IsBikeRentalAlternative(t) {
			continue
		}
		return t, true, nil
	}
	return models.TripPattern{}, false, nil
}
