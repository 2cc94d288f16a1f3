package labels

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"organizer/internal/store"
)

// reservedName is the label name the UI uses for the unfiltered view; it
// can never be created, renamed to, or deleted. Comparison is
// case-insensitive.
const reservedName = "all"

var (
	// ErrEmptyName rejects blank or whitespace-only label names.
	ErrEmptyName = errors.New("labels: name is empty")
	// ErrReservedName rejects operations touching the reserved name.
	ErrReservedName = errors.New("labels: name is reserved")
	// ErrDuplicateName rejects a name already taken, case-insensitively.
	ErrDuplicateName = errors.New("labels: name already exists")

	errMissingDatabase   = errors.New("database handle is required")
	errMissingReassigner = errors.New("note reassigner is required")
)

// NoteReassigner cascades label registry changes onto the notes that
// reference the label by name. Wired to the notes view engine at
// composition time.
type NoteReassigner interface {
	ReassignLabel(ctx context.Context, name string) error
	RenameLabel(ctx context.Context, oldName, newName string) error
}

// ServiceConfig wires the label registry.
type ServiceConfig struct {
	Database *gorm.DB
	Notes    NoteReassigner
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service is the authoritative local label registry.
type Service struct {
	table  *store.Table[Label]
	notes  NoteReassigner
	clock  func() time.Time
	logger *zap.Logger
}

// NewService validates the configuration and constructs the registry. The
// reassigner is mandatory: deleting a label without the cascade would
// leave dangling references on notes.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	if cfg.Notes == nil {
		return nil, errMissingReassigner
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
		notes:  cfg.Notes,
		clock:  clock,
		logger: logger,
	}, nil
}

// NewTable binds the labels table with its indexed columns.
func NewTable(db *gorm.DB) *store.Table[Label] {
	return store.NewTable[Label](db, "labels", "name")
}

// All returns every label in creation order.
func (s *Service) All(ctx context.Context) ([]Label, error) {
	items, err := s.table.OrderBy("created_at_ms").All(ctx)
	if err != nil {
		s.logger.Error("label listing failed", zap.Error(err))
		return nil, err
	}
	return items, nil
}

// Get returns one label, or nil when the id is unknown.
func (s *Service) Get(ctx context.Context, id uint) (*Label, error) {
	return s.table.Get(ctx, id)
}

// Create registers a new label. The name is trimmed; blank, reserved and
// duplicate names are rejected with their sentinel errors.
func (s *Service) Create(ctx context.Context, name, color string) (*Label, error) {
	name = strings.TrimSpace(name)
	if err := s.validateName(ctx, name, 0); err != nil {
		return nil, err
	}
	if color == "" {
		color = DefaultColors[0]
	}

	label := Label{Name: name, Color: color, CreatedAtMs: s.clock().UnixMilli()}
	if _, err := s.table.Add(ctx, &label); err != nil {
		s.logger.Error("label insert failed", zap.Error(err), zap.String("name", name))
		return nil, err
	}
	return &label, nil
}

// Rename changes a label's name and cascades the rename onto every note
// referencing the old name. The stored row is re-read first so the
// reserved-name check runs against current state, not a stale copy.
func (s *Service) Rename(ctx context.Context, id uint, newName string) (*Label, error) {
	label, err := s.table.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if label == nil {
		return nil, nil
	}
	if strings.EqualFold(label.Name, reservedName) {
		return nil, ErrReservedName
	}

	newName = strings.TrimSpace(newName)
	if err := s.validateName(ctx, newName, id); err != nil {
		return nil, err
	}

	oldName := label.Name
	label.Name = newName
	if _, err := s.table.Put(ctx, label); err != nil {
		s.logger.Error("label rename failed", zap.Error(err), zap.Uint("label_id", id))
		return nil, err
	}
	if oldName != newName {
		if err := s.notes.RenameLabel(ctx, oldName, newName); err != nil {
			return nil, err
		}
	}
	return label, nil
}

// Delete removes a label after cascading its name off every referencing
// note. The cascade completes before the registry row disappears; an
// unknown id or the reserved label is a no-op.
func (s *Service) Delete(ctx context.Context, id uint) error {
	label, err := s.table.Get(ctx, id)
	if err != nil {
		return err
	}
	if label == nil {
		return nil
	}
	if strings.EqualFold(label.Name, reservedName) {
		return ErrReservedName
	}

	if err := s.notes.ReassignLabel(ctx, label.Name); err != nil {
		return err
	}
	if err := s.table.Delete(ctx, id); err != nil {
		s.logger.Error("label delete failed", zap.Error(err), zap.Uint("label_id", id))
		return err
	}
	return nil
}

func (s *Service) validateName(ctx context.Context, name string, selfID uint) error {
	if name == "" {
		return ErrEmptyName
	}
	if strings.EqualFold(name, reservedName) {
		return ErrReservedName
	}
	existing, err := s.table.All(ctx)
	if err != nil {
		return err
	}
	for _, label := range existing {
		if label.ID != selfID && strings.EqualFold(label.Name, name) {
			return ErrDuplicateName
		}
	}
	return nil
}
