package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses
const (
	TransactionStatusPending = "PENDING"
	TransactionStatusPaid    = "PAID"
)

// Transaction causes
const (
	CauseCharge = "charge"
)

// Transaction is one charge attempt. It moves from PENDING to PAID exactly once.
type Transaction struct {
	ID        uint            `gorm:"primarykey"`
	Status    string          `gorm:"not null;default:'PENDING';index"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Cause     string          `gorm:"default:''"`
	CreatedAt time.Time       `gorm:"index"`
	UpdatedAt time.Time
}
