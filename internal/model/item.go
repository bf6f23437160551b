package model

import "time"

// Item is a reported lost or found object.
type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UniqueID    string    `json:"unique_id"`
	ImagePath   *string   `json:"image_path"`
	QRCodePath  string    `json:"qr_code_path"`
	Lat         *float64  `json:"lat"`
	Lon         *float64  `json:"lon"`
	Status      string    `json:"status"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasLocation reports whether the item carries coordinates.
func (i *Item) HasLocation() bool {
	return i.Lat != nil && i.Lon != nil
}

// Item statuses.
const (
	ItemStatusLost    = "lost"
	ItemStatusFound   = "found"
	ItemStatusClaimed = "claimed"
)

// ValidItemStatus reports whether s is one of the known statuses.
func ValidItemStatus(s string) bool {
	switch s {
	case ItemStatusLost, ItemStatusFound, ItemStatusClaimed:
		return true
	}
	return false
}

// Categories is the suggested category list offered to clients.
// Items may use any category; this list is not enforced.
var Categories = []string{
	"Electronics",
	"Clothing",
	"Documents",
	"Jewelry",
	"Books",
	"Keys",
	"Bags",
	"Sports Equipment",
	"Toys",
	"Other",
}
