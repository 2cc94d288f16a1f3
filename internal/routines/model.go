package routines

import (
	"errors"
	"fmt"
	"strings"
)

// ProfileType selects one of the two fixed routine profiles.
type ProfileType string

const (
	// ProfileWeekday is the Monday through Friday routine.
	ProfileWeekday ProfileType = "weekday"
	// ProfileWeekend is the Saturday and Sunday routine.
	ProfileWeekend ProfileType = "weekend"
)

// ErrInvalidProfileType indicates an unknown profile type value.
var ErrInvalidProfileType = errors.New("routines: invalid profile type")

// ParseProfileType validates a raw profile type value.
func ParseProfileType(raw string) (ProfileType, error) {
	switch ProfileType(strings.ToLower(strings.TrimSpace(raw))) {
	case ProfileWeekday:
		return ProfileWeekday, nil
	case ProfileWeekend:
		return ProfileWeekend, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidProfileType, raw)
	}
}

// Item is one scheduled entry of a routine profile. Items carry
// caller-generated string ids scoped to their profile; Order is the
// display sort key.
type Item struct {
	ID              string `json:"id"`
	Time            string `json:"time"` // "HH:MM", 24h
	Title           string `json:"title"`
	Tag             string `json:"tag,omitempty"`
	Icon            string `json:"icon,omitempty"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	Completed       bool   `json:"completed"`
	Order           int    `json:"order"`
	ImageID         string `json:"imageId,omitempty"`
}

// Profile is a persisted routine profile row holding its whole item list.
// At most one row exists per profile type.
type Profile struct {
	ID          uint        `gorm:"column:id;primaryKey" json:"id"`
	ProfileType ProfileType `gorm:"column:profile_type;size:20;not null;uniqueIndex" json:"profileType"`
	Items       []Item      `gorm:"column:items;serializer:json" json:"items"`
}

// TableName provides the explicit table binding for GORM.
func (Profile) TableName() string {
	return "routines"
}

// PrimaryKey returns the surrogate key, zero before insertion.
func (p Profile) PrimaryKey() uint {
	return p.ID
}

// Renumber assigns dense order values matching array position. Callers
// reorder the slice and renumber it before persisting, since reload paths
// sort by the stored order field.
func Renumber(items []Item) []Item {
	for i := range items {
		items[i].Order = i
	}
	return items
}
