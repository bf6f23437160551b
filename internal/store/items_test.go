package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

func newItem(name, uniqueID, status, category string) NewItem {
	return NewItem{
		Name:       name,
		UniqueID:   uniqueID,
		QRCodePath: "qrcodes/qr_" + uniqueID + ".png",
		Status:     status,
		Category:   category,
	}
}

func mustCreate(t *testing.T, database *sql.DB, n NewItem) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), database, n)
	if err != nil {
		t.Fatalf("CreateItem(%q): %v", n.UniqueID, err)
	}
	return item
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	lat, lon := 46.0569, 14.5058
	image := "uploads/wallet.jpg"
	n := newItem("Blue Wallet", "w-1", model.ItemStatusLost, "Accessories")
	n.Description = "Leather, two cards inside"
	n.ImagePath = &image
	n.Lat, n.Lon = &lat, &lon

	item := mustCreate(t, database, n)
	if item.ID == 0 {
		t.Error("expected a system-assigned id")
	}
	if item.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
	if item.Description != n.Description {
		t.Errorf("expected description %q, got %q", n.Description, item.Description)
	}
	if item.ImagePath == nil || *item.ImagePath != image {
		t.Errorf("expected image path %q, got %v", image, item.ImagePath)
	}
	if !item.HasLocation() || *item.Lat != lat || *item.Lon != lon {
		t.Errorf("expected location %v,%v, got %v,%v", lat, lon, item.Lat, item.Lon)
	}

	got, err := GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got == nil || got.UniqueID != "w-1" {
		t.Fatalf("expected item w-1, got %+v", got)
	}

	byUID, err := GetItemByUniqueID(ctx, database, "w-1")
	if err != nil {
		t.Fatalf("GetItemByUniqueID: %v", err)
	}
	if byUID == nil || byUID.ID != item.ID {
		t.Fatalf("expected item %d, got %+v", item.ID, byUID)
	}
}

func TestGetMissingItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, err := GetItem(ctx, database, 42)
	if err != nil || item != nil {
		t.Errorf("expected nil, nil for missing id, got %v, %v", item, err)
	}
	item, err = GetItemByUniqueID(ctx, database, "nope")
	if err != nil || item != nil {
		t.Errorf("expected nil, nil for missing unique_id, got %v, %v", item, err)
	}
}

func TestCreateDuplicateUniqueID(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first := mustCreate(t, database, newItem("Phone", "SN-123", model.ItemStatusFound, "Electronics"))

	_, err := CreateItem(ctx, database, newItem("Other Phone", "SN-123", model.ItemStatusLost, "Electronics"))
	if !errors.Is(err, ErrDuplicateUniqueID) {
		t.Fatalf("expected ErrDuplicateUniqueID, got %v", err)
	}

	got, _ := GetItemByUniqueID(ctx, database, "SN-123")
	if got == nil || got.ID != first.ID || got.Name != "Phone" {
		t.Errorf("first item should be unaffected, got %+v", got)
	}
}

func TestSearchItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	wallet := newItem("Blue Wallet", "a", model.ItemStatusLost, "Accessories")
	mustCreate(t, database, wallet)
	keys := newItem("Car keys", "b", model.ItemStatusFound, "Keys")
	keys.Description = "Found near the WALLET shop"
	mustCreate(t, database, keys)
	mustCreate(t, database, newItem("Umbrella", "c", model.ItemStatusFound, "Other"))
	mustCreate(t, database, newItem("100% cotton scarf", "d", model.ItemStatusLost, "Clothing"))

	tests := []struct {
		name   string
		filter ItemFilter
		want   []string
	}{
		{"no filters returns all newest first", ItemFilter{}, []string{"d", "c", "b", "a"}},
		{"keyword matches name or description", ItemFilter{Keyword: "wallet"}, []string{"b", "a"}},
		{"keyword is trimmed", ItemFilter{Keyword: "  umbrella "}, []string{"c"}},
		{"blank keyword is ignored", ItemFilter{Keyword: "   "}, []string{"d", "c", "b", "a"}},
		{"keyword percent is literal", ItemFilter{Keyword: "100%"}, []string{"d"}},
		{"keyword underscore is literal", ItemFilter{Keyword: "_"}, nil},
		{"status", ItemFilter{Status: model.ItemStatusLost}, []string{"d", "a"}},
		{"category", ItemFilter{Category: "Keys"}, []string{"b"}},
		{"unique id", ItemFilter{UniqueID: "c"}, []string{"c"}},
		{"filters are combined", ItemFilter{Keyword: "wallet", Status: model.ItemStatusFound}, []string{"b"}},
		{"unknown status", ItemFilter{Status: "stolen"}, nil},
		{"unknown category", ItemFilter{Category: "Spaceships"}, nil},
		{"no keyword match", ItemFilter{Keyword: "nonexistent-xyz"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := SearchItems(ctx, database, tt.filter)
			if err != nil {
				t.Fatalf("SearchItems: %v", err)
			}
			var got []string
			for _, item := range items {
				got = append(got, item.UniqueID)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestClaimItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := mustCreate(t, database, newItem("Scarf", "s-1", model.ItemStatusFound, "Clothing"))

	changed, err := ClaimItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("ClaimItem: %v", err)
	}
	if !changed {
		t.Error("expected first claim to change status")
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusClaimed {
		t.Errorf("expected status 'claimed', got %q", got.Status)
	}

	changed, err = ClaimItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("second ClaimItem: %v", err)
	}
	if changed {
		t.Error("expected second claim to be a no-op")
	}

	changed, err = ClaimItem(ctx, database, 9999)
	if err != nil || changed {
		t.Errorf("expected false, nil for missing item, got %v, %v", changed, err)
	}
}
