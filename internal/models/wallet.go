package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Balances and amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Wallet holds the balance of one customer, keyed by phone number.
// Version grows by one with every credit, so two reads of the same wallet
// can be ordered without comparing clocks.
type Wallet struct {
	ID                  uint            `gorm:"primarykey"`
	CustomerPhoneNumber string          `gorm:"uniqueIndex;not null"`
	Balance             decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	Version             int64           `gorm:"not null;default:0"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type BalanceResponse struct {
	CustomerPhoneNumber string          `json:"customer_phone_number"`
	Balance             decimal.Decimal `json:"balance"`
}
