package notes

import (
	"errors"
	"fmt"
	"strings"
)

// Type enumerates the supported note bodies.
type Type string

const (
	// TypeText is a plain text note.
	TypeText Type = "text"
	// TypeChecklist is a note whose body is an ordered checklist.
	TypeChecklist Type = "checklist"
	// TypeImage is a note built around attached images.
	TypeImage Type = "image"
)

// View selects which lifecycle partition a listing returns.
type View string

const (
	// ViewActive contains notes that are neither archived nor trashed.
	ViewActive View = "active"
	// ViewArchive contains archived notes that are not trashed.
	ViewArchive View = "archive"
	// ViewTrash contains trashed notes.
	ViewTrash View = "trash"
)

var (
	// ErrInvalidType indicates an unknown note type value.
	ErrInvalidType = errors.New("notes: invalid note type")
	// ErrInvalidView indicates an unknown view value.
	ErrInvalidView = errors.New("notes: invalid view")
)

// ParseType validates a raw note type value.
func ParseType(raw string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeText:
		return TypeText, nil
	case TypeChecklist:
		return TypeChecklist, nil
	case TypeImage:
		return TypeImage, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, raw)
	}
}

// ParseView validates a raw view value. The empty string selects the
// active view.
func ParseView(raw string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(raw))) {
	case ViewActive, View(""):
		return ViewActive, nil
	case ViewArchive:
		return ViewArchive, nil
	case ViewTrash:
		return ViewTrash, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidView, raw)
	}
}

// ChecklistItem is one entry of a checklist note body.
type ChecklistItem struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// Note is the persisted note row. Nested collections are stored as JSON
// columns; label membership is by name, not by label id.
type Note struct {
	ID             uint            `gorm:"column:id;primaryKey" json:"id"`
	Type           Type            `gorm:"column:type;size:20;not null;index" json:"type"`
	Title          string          `gorm:"column:title;not null;default:''" json:"title"`
	Content        string          `gorm:"column:content;not null;default:''" json:"content"`
	ChecklistItems []ChecklistItem `gorm:"column:checklist_items;serializer:json" json:"checklistItems"`
	ImageRefs      []string        `gorm:"column:image_refs;serializer:json" json:"imageRefs"`
	Color          string          `gorm:"column:color;size:40;not null;default:default" json:"color"`
	Labels         []string        `gorm:"column:labels;serializer:json" json:"labels"`
	Pinned         bool            `gorm:"column:pinned;not null;default:false" json:"pinned"`
	Archived       bool            `gorm:"column:archived;not null;default:false;index" json:"archived"`
	Trashed        bool            `gorm:"column:trashed;not null;default:false;index" json:"trashed"`
	ReminderAtMs   *int64          `gorm:"column:reminder_at_ms" json:"reminderAt"`
	CreatedAtMs    int64           `gorm:"column:created_at_ms;not null" json:"createdAt"`
	UpdatedAtMs    int64           `gorm:"column:updated_at_ms;not null;index" json:"updatedAt"`
}

// TableName provides the explicit table binding for GORM.
func (Note) TableName() string {
	return "notes"
}

// PrimaryKey returns the surrogate key, zero before insertion.
func (n Note) PrimaryKey() uint {
	return n.ID
}

// HasLabel reports whether the note lists the given label name.
func (n Note) HasLabel(name string) bool {
	for _, label := range n.Labels {
		if label == name {
			return true
		}
	}
	return false
}
