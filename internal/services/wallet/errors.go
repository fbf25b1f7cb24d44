package wallet

import "errors"

var (
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrInvalidCustomer   = errors.New("customer key is required")
	ErrInvalidPagination = errors.New("invalid pagination")
)
