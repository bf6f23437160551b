package service

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/erazemk/lostfound/internal/geo"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

var (
	searchTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_search_total",
		Help: "Item searches served.",
	})
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lostfound_search_duration_seconds",
		Help:    "Item search latency.",
		Buckets: prometheus.DefBuckets,
	})
)

// SearchQuery holds optional search criteria. Empty strings and nil pointers
// leave a dimension unconstrained. The radius filter applies only when Lat,
// Lon and Radius are all set.
type SearchQuery struct {
	Keyword  string
	UniqueID string
	Status   string
	Category string
	Lat      *float64
	Lon      *float64
	Radius   *float64 // kilometres
}

func (q SearchQuery) hasGeo() bool {
	return q.Lat != nil && q.Lon != nil && q.Radius != nil
}

// Search returns items matching every supplied criterion, newest first.
// Items without coordinates are never excluded by the radius filter.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]model.Item, error) {
	start := time.Now()
	defer func() {
		searchTotal.Inc()
		searchDuration.Observe(time.Since(start).Seconds())
	}()

	if q.Radius != nil && *q.Radius < 0 {
		return nil, &ValidationError{Field: "radius", Message: "radius must not be negative"}
	}

	items, err := store.SearchItems(ctx, s.db, store.ItemFilter{
		Keyword:  q.Keyword,
		UniqueID: q.UniqueID,
		Status:   q.Status,
		Category: q.Category,
	})
	if err != nil {
		return nil, &StorageError{Op: "searching items", Err: err}
	}

	if q.hasGeo() {
		items = geo.FilterByRadius(items, *q.Lat, *q.Lon, *q.Radius)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}
