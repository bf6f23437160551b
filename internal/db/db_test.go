package db

import (
	"path/filepath"
	"testing"
)

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lostfound.sqlite3")

	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	if err := Migrate(database); err != nil {
		t.Fatalf("first Migrate: %v", err)
	}
	if err := Migrate(database); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var n int
	if err := database.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		t.Fatalf("querying items: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty items table, got %d rows", n)
	}
}

func TestItemsSchemaConstraints(t *testing.T) {
	database := NewTestDB(t)

	insert := `INSERT INTO items (name, unique_id, qr_code_path, lat, lon, status, category)
	           VALUES (?, ?, 'qr.png', ?, ?, ?, 'Keys')`

	if _, err := database.Exec(insert, "Keys", "k-1", nil, nil, "lost"); err != nil {
		t.Fatalf("valid insert: %v", err)
	}

	tests := []struct {
		name string
		args []any
	}{
		{"duplicate unique_id", []any{"Keys", "k-1", nil, nil, "lost"}},
		{"unknown status", []any{"Keys", "k-2", nil, nil, "stolen"}},
		{"blank name", []any{"  ", "k-3", nil, nil, "found"}},
		{"lat without lon", []any{"Keys", "k-4", 46.05, nil, "found"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := database.Exec(insert, tt.args...); err == nil {
				t.Error("expected insert to fail")
			}
		})
	}
}
