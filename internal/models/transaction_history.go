package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is one row of a user's transaction history.
type TransactionRecord struct {
	ID     uint            `json:"-"`
	Time   time.Time       `json:"time"`
	Amount decimal.Decimal `json:"amount"`
	Cause  string          `json:"cause"`
}

type TransactionHistoryResponse struct {
	Transactions []TransactionRecord `json:"transactions"`
}
