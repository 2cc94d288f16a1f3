package routines

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"organizer/internal/store"
)

var (
	errMissingDatabase = errors.New("database handle is required")
	errMissingImages   = errors.New("image releaser is required")
)

// ImageReleaser removes a stored image attachment by key. Wired to the
// image attachment store at composition time; deleting a routine item must
// release its image or the blob leaks with nothing referencing it.
type ImageReleaser interface {
	Release(ctx context.Context, key string) error
}

// ServiceConfig wires the routine profile engine.
type ServiceConfig struct {
	Database *gorm.DB
	Images   ImageReleaser
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service manages the two fixed routine profiles and their ordered items.
type Service struct {
	table  *store.Table[Profile]
	images ImageReleaser
	clock  func() time.Time
	logger *zap.Logger
}

// NewService validates the configuration and constructs the engine.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	if cfg.Images == nil {
		return nil, errMissingImages
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		table:  NewTable(cfg.Database),
		images: cfg.Images,
		clock:  clock,
		logger: logger,
	}, nil
}

// NewTable binds the routines table with its indexed columns.
func NewTable(db *gorm.DB) *store.Table[Profile] {
	return store.NewTable[Profile](db, "routines", "profile_type")
}

// TodayProfileType selects the profile for the local calendar day at call
// time: Saturday and Sunday map to the weekend profile.
func (s *Service) TodayProfileType() ProfileType {
	switch s.clock().Weekday() {
	case time.Saturday, time.Sunday:
		return ProfileWeekend
	default:
		return ProfileWeekday
	}
}

// Get returns the profile for the given type with items in display order,
// or nil when the profile row has never been created.
func (s *Service) Get(ctx context.Context, profileType ProfileType) (*Profile, error) {
	profile, err := s.table.Where("profile_type", profileType).First(ctx)
	if err != nil {
		s.logger.Error("routine profile load failed", zap.Error(err),
			zap.String("profile_type", string(profileType)))
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}
	sort.SliceStable(profile.Items, func(i, j int) bool {
		return profile.Items[i].Order < profile.Items[j].Order
	})
	return profile, nil
}

// AddItem appends the item to the profile's list, creating the profile row
// on first use.
func (s *Service) AddItem(ctx context.Context, profileType ProfileType, item Item) error {
	profile, err := s.Get(ctx, profileType)
	if err != nil {
		return err
	}
	if profile == nil {
		profile = &Profile{ProfileType: profileType}
	}
	item.Order = len(profile.Items)
	profile.Items = append(profile.Items, item)
	return s.save(ctx, profile)
}

// UpdateItem replaces the item with a matching id in place. An absent
// profile or item id is nothing to do.
func (s *Service) UpdateItem(ctx context.Context, profileType ProfileType, item Item) error {
	profile, err := s.Get(ctx, profileType)
	if err != nil || profile == nil {
		return err
	}
	replaced := false
	for i := range profile.Items {
		if profile.Items[i].ID == item.ID {
			item.Order = profile.Items[i].Order
			profile.Items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		return nil
	}
	return s.save(ctx, profile)
}

// DeleteItem removes the item from the profile. Any attached image is
// released first so no orphaned blob survives the item.
func (s *Service) DeleteItem(ctx context.Context, profileType ProfileType, itemID string) error {
	profile, err := s.Get(ctx, profileType)
	if err != nil || profile == nil {
		return err
	}

	kept := make([]Item, 0, len(profile.Items))
	for _, item := range profile.Items {
		if item.ID != itemID {
			kept = append(kept, item)
			continue
		}
		if item.ImageID != "" {
			if err := s.images.Release(ctx, item.ImageID); err != nil {
				s.logger.Error("routine image release failed", zap.Error(err),
					zap.String("item_id", itemID),
					zap.String("image_id", item.ImageID))
				return err
			}
		}
	}
	if len(kept) == len(profile.Items) {
		return nil
	}
	profile.Items = kept
	return s.save(ctx, profile)
}

// Reorder persists the list in the given order. Order values are stored as
// supplied; callers renumber (see Renumber) before calling since reload
// sorts by the order field.
func (s *Service) Reorder(ctx context.Context, profileType ProfileType, items []Item) error {
	profile, err := s.Get(ctx, profileType)
	if err != nil || profile == nil {
		return err
	}
	profile.Items = items
	return s.save(ctx, profile)
}

// Replace overwrites the profile's item list wholesale, creating the
// profile row when absent. Import paths use this.
func (s *Service) Replace(ctx context.Context, profileType ProfileType, items []Item) error {
	profile, err := s.Get(ctx, profileType)
	if err != nil {
		return err
	}
	if profile == nil {
		profile = &Profile{ProfileType: profileType}
	}
	profile.Items = items
	return s.save(ctx, profile)
}

// ToggleComplete flips the completed flag of one item and nothing else.
func (s *Service) ToggleComplete(ctx context.Context, profileType ProfileType, itemID string) error {
	profile, err := s.Get(ctx, profileType)
	if err != nil || profile == nil {
		return err
	}
	toggled := false
	for i := range profile.Items {
		if profile.Items[i].ID == itemID {
			profile.Items[i].Completed = !profile.Items[i].Completed
			toggled = true
			break
		}
	}
	if !toggled {
		return nil
	}
	return s.save(ctx, profile)
}

func (s *Service) save(ctx context.Context, profile *Profile) error {
	var err error
	if profile.ID == 0 {
		_, err = s.table.Add(ctx, profile)
	} else {
		_, err = s.table.Put(ctx, profile)
	}
	if err != nil {
		s.logger.Error("routine profile save failed", zap.Error(err),
			zap.String("profile_type", string(profile.ProfileType)))
	}
	return err
}
