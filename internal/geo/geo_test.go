package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/model"
)

var (
	newYork    = [2]float64{40.7128, -74.0060}
	losAngeles = [2]float64{34.0522, -118.2437}
	ljubljana  = [2]float64{46.0569, 14.5058}
)

func located(id int64, p [2]float64) model.Item {
	lat, lon := p[0], p[1]
	return model.Item{ID: id, Lat: &lat, Lon: &lon}
}

func TestDistanceKnownPair(t *testing.T) {
	d := DistanceKm(newYork[0], newYork[1], losAngeles[0], losAngeles[1])
	assert.InDelta(t, 3936, d, 5)
}

func TestDistanceReflexive(t *testing.T) {
	for _, p := range [][2]float64{newYork, losAngeles, ljubljana, {0, 0}, {-33.87, 151.21}} {
		assert.Zero(t, DistanceKm(p[0], p[1], p[0], p[1]), "point %v", p)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	points := [][2]float64{newYork, losAngeles, ljubljana, {-33.87, 151.21}}
	for _, a := range points {
		for _, b := range points {
			assert.InDelta(t, DistanceKm(a[0], a[1], b[0], b[1]), DistanceKm(b[0], b[1], a[0], a[1]), 1e-9)
		}
	}
}

func TestFilterByRadius(t *testing.T) {
	items := []model.Item{
		located(1, newYork),
		located(2, losAngeles),
		{ID: 3},
	}

	tests := []struct {
		name   string
		radius float64
		want   []int64
	}{
		{"local search excludes far item", 10, []int64{1, 3}},
		{"wide search includes far item", 4000, []int64{1, 2, 3}},
		{"zero radius keeps exact match", 0, []int64{1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByRadius(items, newYork[0], newYork[1], tt.radius)
			ids := make([]int64, 0, len(got))
			for _, item := range got {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFilterByRadiusMatchesDistance(t *testing.T) {
	center := ljubljana
	items := []model.Item{
		located(1, newYork),
		located(2, losAngeles),
		located(3, [2]float64{46.2389, 14.3556}),
		located(4, [2]float64{45.8150, 15.9819}),
	}

	for _, radius := range []float64{1, 25, 150, 7000, 10000} {
		got := FilterByRadius(items, center[0], center[1], radius)
		kept := map[int64]bool{}
		for _, item := range got {
			kept[item.ID] = true
		}
		for _, item := range items {
			within := DistanceKm(center[0], center[1], *item.Lat, *item.Lon) <= radius
			require.Equal(t, within, kept[item.ID], "item %d radius %v", item.ID, radius)
		}
	}
}

func TestFilterByRadiusKeepsUnlocated(t *testing.T) {
	items := []model.Item{{ID: 1}, {ID: 2}}
	got := FilterByRadius(items, 0, 0, 0)
	assert.Len(t, got, 2)
}
