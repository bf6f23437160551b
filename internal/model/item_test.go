package model

import "testing"

func TestValidItemStatus(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{ItemStatusLost, true},
		{ItemStatusFound, true},
		{ItemStatusClaimed, true},
		{"", false},
		{"LOST", false},
		{"stolen", false},
	}
	for _, tt := range tests {
		if got := ValidItemStatus(tt.status); got != tt.want {
			t.Errorf("ValidItemStatus(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestHasLocation(t *testing.T) {
	lat, lon := 46.05, 14.51

	if (&Item{}).HasLocation() {
		t.Error("item without coordinates should not have a location")
	}
	if (&Item{Lat: &lat}).HasLocation() {
		t.Error("item with only lat should not have a location")
	}
	if !(&Item{Lat: &lat, Lon: &lon}).HasLocation() {
		t.Error("item with lat and lon should have a location")
	}
}
