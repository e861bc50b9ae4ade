package models

// DefaultCategoryColor is applied when a category is created without an
// explicit display color.
const DefaultCategoryColor = "#FCBE44"

// Category represents a named spending/income bucket with a display color.
// UserID is nil for system-wide categories; a user may own private ones.
// Type is the join key against Transaction.Type.
type Category struct {
	Base
	UserID *uint  `gorm:"index" json:"user_id,omitempty"`
	Type   string `gorm:"not null;default:Investment;index" json:"type"`
	Color  string `gorm:"not null;default:#FCBE44" json:"color"`
}
