package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single spending record belonging to a user. The owner is always
// the authenticated caller; it is never taken from a request body.
type Expense struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint            `gorm:"index;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Date        time.Time       `gorm:"index;not null"`
	Category    string          `gorm:"size:255"`
	Description string          `gorm:"size:512"`
}
