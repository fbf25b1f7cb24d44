package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Charge binds a Transaction to the user that requested it and the token
// that must be presented to settle it.
type Charge struct {
	ID            uint        `gorm:"primarykey"`
	TransactionID uint        `gorm:"uniqueIndex;not null"`
	Transaction   Transaction `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	UserID        string      `gorm:"index;not null"`
	Token         string      `gorm:"uniqueIndex;size:64;not null"`
	CreatedAt     time.Time
}

type ChargeRequest struct {
	UserID int64           `json:"user_id" validate:"required,gt=0"`
	Amount decimal.Decimal `json:"amount"`
}

type ChargeResponse struct {
	URL   string `json:"url"`
	Token string `json:"token"`
	TrxID uint   `json:"trx_id"`
}

type ChargeAckRequest struct {
	Token  string `json:"token" validate:"required"`
	TrxID  uint   `json:"trx_id" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
}

type ChargeAckResponse struct {
	Status string `json:"status"`
}
