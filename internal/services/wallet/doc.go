/*
Package wallet serves the read side of the ledger: balances and transaction
history. It never mutates a wallet; credits happen only when a charge is
settled.

Usage:

	svc := wallet.NewService(store, cacheService, wallet.Config{}, wallet.NewLogMetricsCollector(log), log)

	balance, err := svc.GetBalance(ctx, "+15550001")

	history, err := svc.ListHistory(ctx, "7", 1, 10)

Balances are read through a Redis cache. A cache failure is logged and the
store is used instead, so the cache can be down without breaking reads.
Cache entries carry the wallet version; a reader only fills the cache when
no newer balance has been written, and RefreshBalance stores the balance a
settle committed.

Errors:
  - ErrWalletNotFound: no wallet for the customer key
  - ErrInvalidPagination: page below 1 or limit outside 1..MaxPageLimit
*/
package wallet
