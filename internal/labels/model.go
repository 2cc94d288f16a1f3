package labels

// Label is a named tag. Notes reference labels by name, so renames and
// deletes must cascade through the notes table.
type Label struct {
	ID          uint   `gorm:"column:id;primaryKey" json:"id"`
	Name        string `gorm:"column:name;size:120;not null;index" json:"name"`
	Color       string `gorm:"column:color;size:40;not null;default:''" json:"color"`
	CreatedAtMs int64  `gorm:"column:created_at_ms;not null" json:"createdAt"`
}

// TableName provides the explicit table binding for GORM.
func (Label) TableName() string {
	return "labels"
}

// PrimaryKey returns the surrogate key, zero before insertion.
func (l Label) PrimaryKey() uint {
	return l.ID
}

// DefaultColors is the palette offered when creating labels.
var DefaultColors = []string{
	"#f59e0b", "#3b82f6", "#10b981", "#8b5cf6",
	"#f43f5e", "#0ea5e9", "#14b8a6", "#f97316",
}
