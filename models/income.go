package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Income is a single earning record belonging to a user.
type Income struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint            `gorm:"index;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Date        time.Time       `gorm:"index;not null"`
	Category    string          `gorm:"size:255"`
	Description string          `gorm:"size:512"`
}
