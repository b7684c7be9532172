package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// MinOpeningBalance is the smallest balance a new account is provisioned with.
	MinOpeningBalance = 1
	// MaxOpeningBalance is the largest balance a new account is provisioned with.
	MaxOpeningBalance = 10000
)

// Account is the monetary record owned by exactly one user.
type Account struct {
	ID        uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID       `json:"userId" gorm:"type:char(36);not null;uniqueIndex"`
	Balance   decimal.Decimal `json:"balance" gorm:"type:decimal(20,2);not null;default:0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
