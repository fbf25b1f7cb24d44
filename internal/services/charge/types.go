package charge

import "time"

// DefaultAckURL is where confirming parties are sent when none is configured.
const DefaultAckURL = "http://localhost/charge_ack"

// DefaultPublishTimeout bounds how long event publication may delay a request.
const DefaultPublishTimeout = 2 * time.Second

// ChargeHandle is returned to the caller of CreateCharge.
type ChargeHandle struct {
	AckURL        string
	Token         string
	TransactionID uint
}

// TokenGenerator produces charge tokens.
type TokenGenerator func() (string, error)

type Config struct {
	AckURL         string
	Tokens         TokenGenerator
	PublishTimeout time.Duration
}
