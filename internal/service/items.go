package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/erazemk/lostfound/internal/broadcast"
	"github.com/erazemk/lostfound/internal/filestore"
	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/qrcode"
	"github.com/erazemk/lostfound/internal/store"
)

var itemWrites = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lostfound_item_writes_total",
	Help: "Committed item state changes by kind.",
}, []string{"kind"})

// CreateInput is a new item report. Image is optional.
type CreateInput struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Category    string    `json:"category" validate:"required"`
	Status      string    `json:"status" validate:"required,oneof=lost found"`
	UniqueID    string    `json:"unique_id" validate:"max=255"`
	Lat         *float64  `json:"lat" validate:"required_with=Lon,omitempty,gte=-90,lte=90"`
	Lon         *float64  `json:"lon" validate:"required_with=Lat,omitempty,gte=-180,lte=180"`
	Image       io.Reader `json:"-" validate:"-"`
}

// Create reports a new item. The photo and QR code are stored before the row
// is written; if any step fails, files written so far are removed and no row
// exists. The committed item is published as an itemCreated event.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Item, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Status = strings.TrimSpace(in.Status)
	in.UniqueID = strings.TrimSpace(in.UniqueID)

	if err := s.validate.Struct(in); err != nil {
		return nil, toValidationError(err)
	}
	if in.UniqueID == "" {
		in.UniqueID = uuid.NewString()
	}

	existing, err := store.GetItemByUniqueID(ctx, s.db, in.UniqueID)
	if err != nil {
		return nil, &StorageError{Op: "checking unique_id", Err: err}
	}
	if existing != nil {
		return nil, fmt.Errorf("creating item %q: %w", in.UniqueID, ErrConflict)
	}

	var written []string
	cleanup := func() {
		for _, key := range written {
			if err := s.files.Delete(context.WithoutCancel(ctx), key); err != nil {
				s.logger.Warn("failed to remove file after aborted create", "key", key, "error", err)
			}
		}
	}

	var imagePath *string
	if in.Image != nil {
		key, err := s.storePhoto(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		written = append(written, key)
		imagePath = &key
	}

	qrKey, err := s.storeQRCode(ctx, in.UniqueID)
	if err != nil {
		cleanup()
		return nil, err
	}
	written = append(written, qrKey)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	item, err := store.CreateItem(ctx, s.db, store.NewItem{
		Name:        in.Name,
		Description: in.Description,
		UniqueID:    in.UniqueID,
		ImagePath:   imagePath,
		QRCodePath:  qrKey,
		Lat:         in.Lat,
		Lon:         in.Lon,
		Status:      in.Status,
		Category:    in.Category,
	})
	if err != nil {
		cleanup()
		if errors.Is(err, store.ErrDuplicateUniqueID) {
			return nil, fmt.Errorf("creating item %q: %w", in.UniqueID, ErrConflict)
		}
		return nil, &StorageError{Op: "creating item", Err: err}
	}

	s.cache.put(item)
	itemWrites.WithLabelValues("create").Inc()
	s.pub.Publish(broadcast.Event{Type: broadcast.EventItemCreated, Item: *item})
	s.logger.Info("item reported", "id", item.ID, "unique_id", item.UniqueID, "status", item.Status)
	return item, nil
}

// Claim marks an item as claimed and publishes an itemClaimed event. Claiming
// an item that is already claimed returns it unchanged and publishes nothing.
func (s *Service) Claim(ctx context.Context, id int64) (*model.Item, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	changed, err := store.ClaimItem(ctx, s.db, id)
	if err != nil {
		return nil, &StorageError{Op: "claiming item", Err: err}
	}

	item, err := store.GetItem(ctx, s.db, id)
	if err != nil {
		return nil, &StorageError{Op: "getting item", Err: err}
	}
	if item == nil {
		return nil, fmt.Errorf("claiming item %d: %w", id, ErrNotFound)
	}
	s.cache.put(item)

	if changed {
		itemWrites.WithLabelValues("claim").Inc()
		s.pub.Publish(broadcast.Event{Type: broadcast.EventItemClaimed, Item: *item})
		s.logger.Info("item claimed", "id", item.ID, "unique_id", item.UniqueID)
	}
	return item, nil
}

// Lookup returns the item with the given id.
func (s *Service) Lookup(ctx context.Context, id int64) (*model.Item, error) {
	if item, ok := s.cache.get(idKey(id)); ok {
		return item, nil
	}

	item, err := store.GetItem(ctx, s.db, id)
	if err != nil {
		return nil, &StorageError{Op: "getting item", Err: err}
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	s.cache.put(item)
	return item, nil
}

// LookupByUniqueID returns the item with the given unique_id, as scanned from
// its QR code.
func (s *Service) LookupByUniqueID(ctx context.Context, uniqueID string) (*model.Item, error) {
	if item, ok := s.cache.get(uniqueKey(uniqueID)); ok {
		return item, nil
	}

	item, err := store.GetItemByUniqueID(ctx, s.db, uniqueID)
	if err != nil {
		return nil, &StorageError{Op: "getting item by unique_id", Err: err}
	}
	if item == nil {
		return nil, fmt.Errorf("item %q: %w", uniqueID, ErrNotFound)
	}
	s.cache.put(item)
	return item, nil
}

// Categories returns the suggested item categories.
func (s *Service) Categories() []string {
	out := make([]string, len(model.Categories))
	copy(out, model.Categories)
	return out
}

func (s *Service) storePhoto(ctx context.Context, r io.Reader) (string, error) {
	photo, err := imaging.Normalize(r)
	if err != nil {
		switch {
		case errors.Is(err, imaging.ErrTooLarge):
			return "", &ValidationError{Field: "image", Message: "file too large, maximum size is 5MB"}
		case errors.Is(err, imaging.ErrUnsupportedFormat):
			return "", &ValidationError{Field: "image", Message: "only JPEG and PNG images are allowed"}
		default:
			return "", &ValidationError{Field: "image", Message: "image could not be read"}
		}
	}

	key := path.Join(filestore.UploadsDir, uuid.NewString()+".jpg")
	if err := s.files.Put(ctx, key, photo.ContentType, photo.Data); err != nil {
		return "", &UpstreamError{Service: "file storage", Err: err}
	}
	return key, nil
}

func (s *Service) storeQRCode(ctx context.Context, uniqueID string) (string, error) {
	data, err := s.qr.PNG(qrcode.Payload(uniqueID, s.baseURL))
	if err != nil {
		return "", &UpstreamError{Service: "qr code", Err: err}
	}

	key := path.Join(filestore.QRCodesDir, qrFileName(uniqueID))
	if err := s.files.Put(ctx, key, "image/png", data); err != nil {
		return "", &UpstreamError{Service: "file storage", Err: err}
	}
	return key, nil
}

// qrFileName derives a filesystem-safe name from a unique_id. The hash suffix
// keeps ids that sanitize to the same text apart.
func qrFileName(uniqueID string) string {
	safe := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, uniqueID)
	if len(safe) > 64 {
		safe = safe[:64]
	}
	sum := sha256.Sum256([]byte(uniqueID))
	return "qr_" + safe + "_" + hex.EncodeToString(sum[:4]) + ".png"
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	field := fe.Field()
	var msg string
	switch fe.Tag() {
	case "required":
		msg = field + " is required"
	case "oneof":
		msg = field + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "required_with":
		msg = "lat and lon must be provided together"
	case "gte", "lte":
		msg = field + " is out of range"
	case "max":
		msg = field + " must be at most " + fe.Param() + " characters"
	default:
		msg = field + " is invalid"
	}
	return &ValidationError{Field: field, Message: msg}
}
