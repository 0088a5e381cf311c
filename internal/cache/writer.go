package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/dharmasatrya/tripsearch/internal/models"
	"github.com/dharmasatrya/tripsearch/internal/normalizer"
)

type writeJob struct {
	trips  []models.TripPattern
	params models.SearchParams
}

// Writer persists search results in the background. Failures are logged and
// never reach the request that produced the data. When the queue is full the
// search is dropped instead of holding up the caller.
type Writer struct {
	cache   Cache
	ttl     time.Duration
	timeout time.Duration
	jobs    chan writeJob
	pool    *pool.Pool

	mu     sync.RWMutex
	closed bool
}

// NewWriter starts workers goroutines draining a queue of queueSize
// pending searches.
func NewWriter(c Cache, ttl time.Duration, workers, queueSize int) *Writer {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	w := &Writer{
		cache:   c,
		ttl:     ttl,
		timeout: 5 * time.Second,
		jobs:    make(chan writeJob, queueSize),
		pool:    pool.New().WithMaxGoroutines(workers),
	}
	for i := 0; i < workers; i++ {
		w.pool.Go(w.work)
	}
	return w
}

// StoreSearch queues every trip pattern and, once per derived id, the
// params of the search that produced them. It never blocks.
func (w *Writer) StoreSearch(trips []models.TripPattern, params models.SearchParams) {
	if len(trips) == 0 {
		return
	}
	job := writeJob{
		trips:  append([]models.TripPattern(nil), trips...),
		params: params.Clone(),
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.jobs <- job:
	default:
		log.Warn().Int("trip_patterns", len(trips)).Msg("Cache write queue full, dropping search")
	}
}

// Close stops accepting writes and blocks until the queued ones are done.
func (w *Writer) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.jobs)
	}
	w.mu.Unlock()
	w.pool.Wait()
}

func (w *Writer) work() {
	for job := range w.jobs {
		w.store(job)
	}
}

func (w *Writer) store(job writeJob) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	storedParams := make(map[string]bool)
	for _, trip := range job.trips {
		if err := w.cache.Set(ctx, TripPatternKey(trip.ID), trip, w.ttl); err != nil {
			log.Warn().Err(err).Str("trip_pattern_id", trip.ID).Msg("Failed to cache trip pattern")
		}

		derived := normalizer.DerivedID(trip.ID)
		if storedParams[derived] {
			continue
		}
		storedParams[derived] = true
		if err := w.cache.Set(ctx, SearchParamsKey(trip.ID), job.params, w.ttl); err != nil {
			log.Warn().Err(err).Str("derived_id", derived).Msg("Failed to cache search params")
		}
	}
}
