package services

import "context"

// ChainInfo reports the current block height of the settlement chain.
// Listings open and expire against this clock, never against wall time.
type ChainInfo interface {
	CurrentHeight(ctx context.Context) (int64, error)
}

// EscrowExecutor verifies inbound deposits and issues outbound transfer
// instructions against the escrow program. Outbound calls are only made
// after the local database transaction has committed.
type EscrowExecutor interface {
	VerifyDeposit(ctx context.Context, signature string) (bool, error)
	TransferCurrency(ctx context.Context, from, to string, amount int64, denom string) (string, error)
	TransferAsset(ctx context.Context, from, to, tokenID, assetClass string) (string, error)
}
