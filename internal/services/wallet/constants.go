package wallet

// Pagination defaults for history reads
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxPageLimit = 100
)
