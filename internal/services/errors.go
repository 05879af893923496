package services

import "errors"

// Domain errors surfaced by the ledger and auction services. Every failure is
// a normal, recoverable outcome reported to the caller; none of them leaves
// partial state behind.
var (
	// Validation errors, rejected before any state read.
	ErrDescriptionTooShort = errors.New("description too short")
	ErrDescriptionTooLong  = errors.New("description too long")
	ErrEndHeightInPast     = errors.New("listing cannot end in the past")
	ErrInvalidAmount       = errors.New("amount must be positive")

	// Not-found errors.
	ErrListingNotFound = errors.New("listing does not exist")
	ErrNothingStaked   = errors.New("nothing staked")

	// Precondition errors, rejected after reading state, before any mutation.
	ErrListingNotInProgress = errors.New("listing is not in progress")
	ErrNotCreator           = errors.New("caller is not the creator of the listing")
	ErrBiddingNotStarted    = errors.New("bidding period has not started")
	ErrBiddingNotExpired    = errors.New("bidding period has not expired")
	ErrBidTooLow            = errors.New("bid price must exceed the current highest bid")
	ErrDuplicateBid         = errors.New("account has already bid on this listing")

	// Funds errors.
	ErrStakeTooSmall     = errors.New("staked amount is below the minimum")
	ErrInsufficientStake = errors.New("account does not have enough staked tokens")
	ErrOverWithdraw      = errors.New("withdrawal exceeds available balance")

	// Escrow errors.
	ErrNoAssetAttached     = errors.New("no escrowed asset attached to listing")
	ErrDepositNotConfirmed = errors.New("deposit transaction not confirmed")
	ErrUnsupportedCommand  = errors.New("unsupported command")
)
