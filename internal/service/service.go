// Package service implements item search and the item lifecycle: reporting,
// lookup and claiming. State changes are published to live subscribers in the
// order they are committed.
package service

import (
	"database/sql"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/erazemk/lostfound/internal/broadcast"
	"github.com/erazemk/lostfound/internal/filestore"
)

// Publisher receives item events after they are committed.
type Publisher interface {
	Publish(ev broadcast.Event)
}

// QRGenerator renders the scannable code attached to every item.
type QRGenerator interface {
	PNG(content string) ([]byte, error)
}

// Options configures a Service.
type Options struct {
	// BaseURL is the client origin used in QR deep links.
	BaseURL string
	// CacheSize is the number of lookup cache entries; zero disables the cache.
	CacheSize int
	// CacheTTL bounds how long a cached item is served.
	CacheTTL time.Duration
}

// Service coordinates the item store, file storage, QR rendering and the
// live update publisher.
type Service struct {
	db       *sql.DB
	files    filestore.Store
	qr       QRGenerator
	pub      Publisher
	baseURL  string
	cache    *itemCache
	validate *validator.Validate
	logger   *slog.Logger

	// writeMu orders commit+publish so subscribers see events in commit order.
	writeMu sync.Mutex
}

// New returns a Service.
func New(db *sql.DB, files filestore.Store, qr QRGenerator, pub Publisher, opts Options, logger *slog.Logger) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &Service{
		db:       db,
		files:    files,
		qr:       qr,
		pub:      pub,
		baseURL:  opts.BaseURL,
		cache:    newItemCache(opts.CacheSize, opts.CacheTTL),
		validate: v,
		logger:   logger.With("component", "items"),
	}
}
