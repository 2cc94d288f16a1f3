// Package images stores binary attachments keyed by a caller-supplied
// string key plus a variant tag. Saving an existing (key, variant) pair
// replaces the prior row instead of accumulating duplicates.
package images

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"organizer/internal/store"
)

// Variant distinguishes the stored renditions of one image key.
type Variant string

const (
	// VariantFull is the full-resolution rendition.
	VariantFull Variant = "full"
	// VariantThumbnail is the reduced preview rendition.
	VariantThumbnail Variant = "thumbnail"
)

var (
	// ErrInvalidVariant indicates an unknown variant value.
	ErrInvalidVariant = errors.New("images: invalid variant")
	// ErrEmptyKey rejects a blank image key.
	ErrEmptyKey = errors.New("images: key is empty")

	errMissingDatabase = errors.New("database handle is required")
)

// ParseVariant validates a raw variant value. The empty string selects the
// full rendition.
func ParseVariant(raw string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(raw))) {
	case VariantFull, Variant(""):
		return VariantFull, nil
	case VariantThumbnail:
		return VariantThumbnail, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidVariant, raw)
	}
}

// Image is one stored blob row. Uniqueness is (key, variant), enforced by
// the overwrite-on-save path rather than a constraint, matching the
// storage engine's behavior.
type Image struct {
	ID          uint    `gorm:"column:id;primaryKey" json:"id"`
	Key         string  `gorm:"column:key;size:190;not null;index" json:"key"`
	Variant     Variant `gorm:"column:variant;size:20;not null;index" json:"variant"`
	Blob        []byte  `gorm:"column:blob" json:"-"`
	MimeType    string  `gorm:"column:mime_type;size:80;not null;default:''" json:"mimeType"`
	CreatedAtMs int64   `gorm:"column:created_at_ms;not null" json:"createdAt"`
}

// TableName provides the explicit table binding for GORM.
func (Image) TableName() string {
	return "image_blobs"
}

// PrimaryKey returns the surrogate key, zero before insertion.
func (i Image) PrimaryKey() uint {
	return i.ID
}

// Handle is a displayable reference to a stored image.
type Handle struct {
	Key      string  `json:"key"`
	Variant  Variant `json:"variant"`
	URL      string  `json:"url"`
	MimeType string  `json:"mimeType"`
}

// Compressor is the opaque compression collaborator: given raw image
// bytes and target constraints it returns a compressed encoding. Only the
// before/after bytes matter to this store.
type Compressor interface {
	Compress(data []byte, maxWidth, quality int) ([]byte, error)
}

// NopCompressor passes bytes through untouched.
type NopCompressor struct{}

// Compress returns the input unchanged.
func (NopCompressor) Compress(data []byte, _, _ int) ([]byte, error) {
	return data, nil
}

// ServiceConfig wires the image attachment store.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service is the image attachment store.
type Service struct {
	table  *store.Table[Image]
	clock  func() time.Time
	logger *zap.Logger
}

// NewService validates the configuration and constructs the store.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{table: NewTable(cfg.Database), clock: clock, logger: logger}, nil
}

// NewTable binds the image blob table with its indexed columns.
func NewTable(db *gorm.DB) *store.Table[Image] {
	return store.NewTable[Image](db, "image_blobs", "key", "variant")
}

// Save stores content under (key, variant), replacing any prior row for
// the same pair. Other variants of the key are untouched.
func (s *Service) Save(ctx context.Context, key string, blob []byte, variant Variant, mimeType string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}

	err := s.table.Where("key", key).
		Filter(func(img Image) bool { return img.Variant == variant }).
		Delete(ctx)
	if err != nil {
		s.logger.Error("image overwrite cleanup failed", zap.Error(err), zap.String("key", key))
		return err
	}

	image := Image{
		Key:         key,
		Variant:     variant,
		Blob:        blob,
		MimeType:    mimeType,
		CreatedAtMs: s.clock().UnixMilli(),
	}
	if _, err := s.table.Add(ctx, &image); err != nil {
		s.logger.Error("image insert failed", zap.Error(err), zap.String("key", key))
		return err
	}
	return nil
}

// Get returns the stored row for (key, variant), or nil when absent.
func (s *Service) Get(ctx context.Context, key string, variant Variant) (*Image, error) {
	return s.table.Where("key", key).
		Filter(func(img Image) bool { return img.Variant == variant }).
		First(ctx)
}

// DisplayHandle returns a resource handle suitable for rendering, or nil
// when no row matches.
func (s *Service) DisplayHandle(ctx context.Context, key string, variant Variant) (*Handle, error) {
	image, err := s.Get(ctx, key, variant)
	if err != nil || image == nil {
		return nil, err
	}
	return &Handle{
		Key:      image.Key,
		Variant:  image.Variant,
		URL:      fmt.Sprintf("/api/images/%s?variant=%s", image.Key, image.Variant),
		MimeType: image.MimeType,
	}, nil
}

// Delete removes every variant stored under the key.
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := s.table.Where("key", key).Delete(ctx); err != nil {
		s.logger.Error("image delete failed", zap.Error(err), zap.String("key", key))
		return err
	}
	return nil
}

// Release implements the releaser seam other engines use when an owning
// row disappears.
func (s *Service) Release(ctx context.Context, key string) error {
	return s.Delete(ctx, key)
}
