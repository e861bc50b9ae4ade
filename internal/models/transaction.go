package models

import "time"

// RecurringFrequency enumerates how often a recurring transaction repeats.
type RecurringFrequency string

const (
	RecurringDaily   RecurringFrequency = "daily"
	RecurringWeekly  RecurringFrequency = "weekly"
	RecurringMonthly RecurringFrequency = "monthly"
	RecurringYearly  RecurringFrequency = "yearly"
)

// Transaction represents a single recorded income or expense event owned by
// a user. Type is a free-form category key joined against Category.Type for
// the labeled view. Amount is always a finite, normalized number; the raw
// shorthand string entered by the user never reaches the database.
type Transaction struct {
	Base
	UserID             uint               `gorm:"not null;index" json:"user_id"`
	Name               string             `gorm:"not null;default:Anonymous" json:"name"`
	Type               string             `gorm:"not null;default:Investment;index" json:"type"`
	Amount             float64            `gorm:"not null" json:"amount"`
	Date               time.Time          `gorm:"not null;index" json:"date"`
	IsRecurring        bool               `gorm:"default:false" json:"is_recurring"`
	RecurringFrequency RecurringFrequency `json:"recurring_frequency,omitempty"`

	// Notes are ordered by Position; the order carries the positional
	// association with uploaded files at create/update time.
	Notes []Note `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"notes"`
}

// LabeledTransaction is a transaction enriched with its category's display
// color. Transactions whose type has no matching category never appear in
// this view.
type LabeledTransaction struct {
	ID                 uint               `json:"id"`
	Name               string             `json:"name"`
	Type               string             `json:"type"`
	Amount             float64            `json:"amount"`
	Color              string             `json:"color"`
	Date               time.Time          `json:"date"`
	IsRecurring        bool               `json:"is_recurring"`
	RecurringFrequency RecurringFrequency `json:"recurring_frequency,omitempty"`
	Notes              []Note             `json:"notes"`
}
