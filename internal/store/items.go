package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/lostfound/internal/model"
)

// ErrDuplicateUniqueID is returned when an insert collides with an existing unique_id.
var ErrDuplicateUniqueID = errors.New("unique_id already exists")

const itemColumns = `id, name, description, unique_id, image_path, qr_code_path, lat, lon, status, category, created_at`

// NewItem holds the columns written when an item is reported.
type NewItem struct {
	Name        string
	Description string
	UniqueID    string
	ImagePath   *string
	QRCodePath  string
	Lat         *float64
	Lon         *float64
	Status      string
	Category    string
}

// ItemFilter narrows SearchItems. Empty fields are not applied.
type ItemFilter struct {
	Keyword  string
	UniqueID string
	Status   string
	Category string
}

// CreateItem inserts a new item and returns it as stored.
func CreateItem(ctx context.Context, db *sql.DB, n NewItem) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, description, unique_id, image_path, qr_code_path, lat, lon, status, category)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.Name, nullString(n.Description), n.UniqueID, n.ImagePath, n.QRCodePath, n.Lat, n.Lon, n.Status, n.Category,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("creating item: %w", ErrDuplicateUniqueID)
		}
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// GetItemByUniqueID returns an item by its unique_id, or nil if it does not exist.
func GetItemByUniqueID(ctx context.Context, db *sql.DB, uniqueID string) (*model.Item, error) {
	row := db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE unique_id = ?`, uniqueID)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item by unique_id: %w", err)
	}
	return item, nil
}

// SearchItems returns items matching every non-empty field of f, newest first.
// Keyword matches name or description as a case-insensitive substring.
func SearchItems(ctx context.Context, db *sql.DB, f ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	var args []any

	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		pattern := "%" + escapeLike(strings.ToLower(kw)) + "%"
		query += ` AND (lower(name) LIKE ? ESCAPE '\' OR lower(coalesce(description, '')) LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}
	if f.UniqueID != "" {
		query += ` AND unique_id = ?`
		args = append(args, f.UniqueID)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ClaimItem marks an item as claimed. It reports whether this call changed
// the status; claiming an already claimed or missing item returns false.
func ClaimItem(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET status = ? WHERE id = ? AND status <> ?`,
		model.ItemStatusClaimed, id, model.ItemStatusClaimed,
	)
	if err != nil {
		return false, fmt.Errorf("claiming item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claiming item: %w", err)
	}
	return n == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(s rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var description, imagePath sql.NullString
	var lat, lon sql.NullFloat64
	err := s.Scan(&item.ID, &item.Name, &description, &item.UniqueID, &imagePath, &item.QRCodePath,
		&lat, &lon, &item.Status, &item.Category, &item.CreatedAt)
	if err != nil {
		return nil, err
	}

	item.Description = description.String
	if imagePath.Valid {
		item.ImagePath = &imagePath.String
	}
	if lat.Valid && lon.Valid {
		item.Lat = &lat.Float64
		item.Lon = &lon.Float64
	}
	return item, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
