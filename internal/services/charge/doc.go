/*
Package charge implements the two phase charge lifecycle.

A charge is created in the PENDING state together with a random token. The
wallet is credited only when the same user later acknowledges the charge by
presenting that token and the transaction id. Acknowledgment settles the
transaction at most once; replays are rejected with ErrAlreadySettled.

Usage:

	svc := charge.NewService(store, walletService, publisher, charge.Config{
	    AckURL: "https://pay.example.com/charge_ack",
	}, logger)

	handle, err := svc.CreateCharge(ctx, "7", decimal.RequireFromString("12.5"))

	err = svc.AcknowledgeCharge(ctx, "7", handle.Token, handle.TransactionID)

Error Handling:

  - ErrInvalidAmount: amount is not positive or has more than two decimals
  - ErrChargeExists: the store rejected the charge as a duplicate
  - ErrChargeNotFound: user, token and transaction do not match one charge
  - ErrAlreadySettled: the transaction was already paid
  - ErrWalletNotFound: the charge matched but the user has no wallet
*/
package charge
