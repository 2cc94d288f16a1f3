package notes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"organizer/internal/store"
)

var (
	errMissingDatabase = errors.New("database handle is required")
	errMissingNoteID   = errors.New("note identifier is required")
	noOpLogger         = zap.NewNop()
)

// ErrInvalidAction indicates an unknown bulk action.
var ErrInvalidAction = errors.New("notes: invalid bulk action")

// Action enumerates the supported bulk operations.
type Action string

const (
	// ActionArchive archives every selected note.
	ActionArchive Action = "archive"
	// ActionTrash moves every selected note to the trash.
	ActionTrash Action = "trash"
	// ActionDelete hard-deletes every selected note.
	ActionDelete Action = "delete"
)

// ParseAction validates a raw bulk action value.
func ParseAction(raw string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(raw))) {
	case ActionArchive:
		return ActionArchive, nil
	case ActionTrash:
		return ActionTrash, nil
	case ActionDelete:
		return ActionDelete, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, raw)
	}
}

const (
	opServiceNew    = "notes.service.new"
	opList          = "notes.list"
	opCreate        = "notes.create"
	opImport        = "notes.import"
	opUpdate        = "notes.update"
	opLifecycle     = "notes.lifecycle"
	opBulkAction    = "notes.bulk_action"
	opReassignLabel = "notes.reassign_label"
	opEmptyTrash    = "notes.empty_trash"
)

// ServiceError carries an operation code alongside the wrapped cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

// Code returns the machine-readable operation code.
func (e *ServiceError) Code() string {
	return e.code
}

func newServiceError(operation, reason string, cause error) error {
	return &ServiceError{code: fmt.Sprintf("%s.%s", operation, reason), err: cause}
}

// ServiceConfig wires the notes view engine.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service is the notes view engine: CRUD, lifecycle flags, derived
// filtered projections and the label-deletion cascade.
type Service struct {
	table  *store.Table[Note]
	clock  func() time.Time
	logger *zap.Logger
}

// NewService validates the configuration and constructs the service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{
		table:  NewTable(cfg.Database),
		clock:  clock,
		logger: logger,
	}, nil
}

// NewTable binds the notes table with its indexed columns.
func NewTable(db *gorm.DB) *store.Table[Note] {
	return store.NewTable[Note](db, "notes", "type", "archived", "trashed", "updated_at_ms")
}

// List returns the notes matching the filter, pinned notes first, each
// partition ordered most-recently-updated first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Note, error) {
	items, err := s.ordered(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]Note, 0, len(items))
	for _, note := range items {
		if filter.matches(note) {
			matched = append(matched, note)
		}
	}
	return partitionPinned(matched), nil
}

// Export returns every note across all three views in the same projection
// List uses. Backups want the whole table, not one view of it.
func (s *Service) Export(ctx context.Context) ([]Note, error) {
	items, err := s.ordered(ctx)
	if err != nil {
		return nil, err
	}
	return partitionPinned(items), nil
}

func (s *Service) ordered(ctx context.Context) ([]Note, error) {
	items, err := s.table.OrderBy("updated_at_ms").Reverse().All(ctx)
	if err != nil {
		s.logError(opList, "query_failed", err)
		return nil, newServiceError(opList, "query_failed", err)
	}

	// Equal timestamps fall back to newest id so the projection is
	// deterministic.
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].UpdatedAtMs != items[j].UpdatedAtMs {
			return items[i].UpdatedAtMs > items[j].UpdatedAtMs
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

// Get returns one note, or nil when the id is unknown.
func (s *Service) Get(ctx context.Context, id uint) (*Note, error) {
	note, err := s.table.Get(ctx, id)
	if err != nil {
		s.logError(opList, "get_failed", err, zap.Uint("note_id", id))
		return nil, newServiceError(opList, "get_failed", err)
	}
	return note, nil
}

// Create inserts a new active note, stamping both timestamps.
func (s *Service) Create(ctx context.Context, note Note) (uint, error) {
	now := s.clock().UnixMilli()
	note.ID = 0
	note.Archived = false
	note.Trashed = false
	note.CreatedAtMs = now
	note.UpdatedAtMs = now
	if note.Color == "" {
		note.Color = "default"
	}
	if note.Type == "" {
		note.Type = TypeText
	}

	id, err := s.table.Add(ctx, &note)
	if err != nil {
		s.logError(opCreate, "insert_failed", err)
		return 0, newServiceError(opCreate, "insert_failed", err)
	}
	return id, nil
}

// Import inserts a note restored from a backup. Unlike Create it keeps the
// archived and trashed flags and the recorded timestamps, so exporting and
// re-importing reproduces the original entity under a fresh id. Timestamps
// missing from the backup are stamped with the current time.
func (s *Service) Import(ctx context.Context, note Note) (uint, error) {
	now := s.clock().UnixMilli()
	note.ID = 0
	if note.CreatedAtMs == 0 {
		note.CreatedAtMs = now
	}
	if note.UpdatedAtMs == 0 {
		note.UpdatedAtMs = now
	}
	if note.Color == "" {
		note.Color = "default"
	}
	if note.Type == "" {
		note.Type = TypeText
	}

	id, err := s.table.Add(ctx, &note)
	if err != nil {
		s.logError(opImport, "insert_failed", err)
		return 0, newServiceError(opImport, "insert_failed", err)
	}
	return id, nil
}

// Update rewrites the note. The stored creation timestamp is kept and
// updatedAt is always stamped server-side, whatever the caller supplied.
// An unknown id is nothing to do.
func (s *Service) Update(ctx context.Context, note Note) error {
	if note.ID == 0 {
		return newServiceError(opUpdate, "missing_note_id", errMissingNoteID)
	}
	existing, err := s.table.Get(ctx, note.ID)
	if err != nil {
		s.logError(opUpdate, "get_failed", err, zap.Uint("note_id", note.ID))
		return newServiceError(opUpdate, "get_failed", err)
	}
	if existing == nil {
		return nil
	}

	note.CreatedAtMs = existing.CreatedAtMs
	note.UpdatedAtMs = s.clock().UnixMilli()
	if _, err := s.table.Put(ctx, &note); err != nil {
		s.logError(opUpdate, "put_failed", err, zap.Uint("note_id", note.ID))
		return newServiceError(opUpdate, "put_failed", err)
	}
	return nil
}

// Trash moves the note to the trash view. Trashing always clears the
// archived flag so the note sits in exactly one view.
func (s *Service) Trash(ctx context.Context, id uint) error {
	return s.mutate(ctx, id, func(note *Note) {
		note.Trashed = true
		note.Archived = false
	})
}

// Archive moves the note to the archive view.
func (s *Service) Archive(ctx context.Context, id uint) error {
	return s.mutate(ctx, id, func(note *Note) {
		note.Archived = true
	})
}

// Restore returns the note to the active view from either archive or
// trash.
func (s *Service) Restore(ctx context.Context, id uint) error {
	return s.mutate(ctx, id, func(note *Note) {
		note.Archived = false
		note.Trashed = false
	})
}

// TogglePin flips the pinned flag.
func (s *Service) TogglePin(ctx context.Context, id uint) error {
	return s.mutate(ctx, id, func(note *Note) {
		note.Pinned = !note.Pinned
	})
}

// DeletePermanently hard-deletes the note. Irreversible.
func (s *Service) DeletePermanently(ctx context.Context, id uint) error {
	if err := s.table.Delete(ctx, id); err != nil {
		s.logError(opLifecycle, "delete_failed", err, zap.Uint("note_id", id))
		return newServiceError(opLifecycle, "delete_failed", err)
	}
	return nil
}

// BulkAction applies the single-note equivalent to each id. Ids that no
// longer exist are skipped; one failing item does not stop the rest, and
// the batch is deliberately not atomic. The first failure is reported
// after the batch completes.
func (s *Service) BulkAction(ctx context.Context, action Action, ids []uint) error {
	var firstErr error
	for _, id := range ids {
		var err error
		switch action {
		case ActionArchive:
			err = s.Archive(ctx, id)
		case ActionTrash:
			err = s.Trash(ctx, id)
		case ActionDelete:
			err = s.DeletePermanently(ctx, id)
		default:
			return fmt.Errorf("%w: %q", ErrInvalidAction, action)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return newServiceError(opBulkAction, "partial_failure", firstErr)
	}
	return nil
}

// ReassignLabel strips the label name from every note that lists it. The
// label registry calls this before removing the label row so no note is
// left pointing at a name that no longer exists.
func (s *Service) ReassignLabel(ctx context.Context, name string) error {
	items, err := s.table.All(ctx)
	if err != nil {
		s.logError(opReassignLabel, "query_failed", err, zap.String("label", name))
		return newServiceError(opReassignLabel, "query_failed", err)
	}

	now := s.clock().UnixMilli()
	for i := range items {
		note := items[i]
		if !note.HasLabel(name) {
			continue
		}
		kept := make([]string, 0, len(note.Labels))
		for _, label := range note.Labels {
			if label != name {
				kept = append(kept, label)
			}
		}
		note.Labels = kept
		note.UpdatedAtMs = now
		if _, err := s.table.Put(ctx, &note); err != nil {
			s.logError(opReassignLabel, "put_failed", err,
				zap.String("label", name),
				zap.Uint("note_id", note.ID))
			return newServiceError(opReassignLabel, "put_failed", err)
		}
	}
	return nil
}

// RenameLabel rewrites the label name in place on every note that lists
// it, keeping the association across a registry rename.
func (s *Service) RenameLabel(ctx context.Context, oldName, newName string) error {
	items, err := s.table.All(ctx)
	if err != nil {
		s.logError(opReassignLabel, "query_failed", err, zap.String("label", oldName))
		return newServiceError(opReassignLabel, "query_failed", err)
	}

	now := s.clock().UnixMilli()
	for i := range items {
		note := items[i]
		if !note.HasLabel(oldName) {
			continue
		}
		for j, label := range note.Labels {
			if label == oldName {
				note.Labels[j] = newName
			}
		}
		note.UpdatedAtMs = now
		if _, err := s.table.Put(ctx, &note); err != nil {
			s.logError(opReassignLabel, "put_failed", err,
				zap.String("label", oldName),
				zap.Uint("note_id", note.ID))
			return newServiceError(opReassignLabel, "put_failed", err)
		}
	}
	return nil
}

// EmptyTrash hard-deletes every trashed note.
func (s *Service) EmptyTrash(ctx context.Context) error {
	if err := s.table.Where("trashed", true).Delete(ctx); err != nil {
		s.logError(opEmptyTrash, "delete_failed", err)
		return newServiceError(opEmptyTrash, "delete_failed", err)
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, id uint, apply func(*Note)) error {
	note, err := s.table.Get(ctx, id)
	if err != nil {
		s.logError(opLifecycle, "get_failed", err, zap.Uint("note_id", id))
		return newServiceError(opLifecycle, "get_failed", err)
	}
	if note == nil {
		return nil
	}
	apply(note)
	note.UpdatedAtMs = s.clock().UnixMilli()
	if _, err := s.table.Put(ctx, note); err != nil {
		s.logError(opLifecycle, "put_failed", err, zap.Uint("note_id", id))
		return newServiceError(opLifecycle, "put_failed", err)
	}
	return nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("notes service error", attrs...)
}
