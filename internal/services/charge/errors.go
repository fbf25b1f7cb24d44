package charge

import "errors"

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidUser    = errors.New("invalid user")
	ErrChargeExists   = errors.New("charge already exists")
	ErrChargeNotFound = errors.New("no valid charge found")
	ErrAlreadySettled = errors.New("charge already settled")
	ErrWalletNotFound = errors.New("wallet not found")
)
