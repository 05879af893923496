package services

import "auction-house/internal/models"

// Command is one state-changing marketplace operation. The command set is
// closed: every implementation lives in this package and carries the
// unexported marker method, and MarketplaceService.Execute dispatches over
// the full set.
type Command interface {
	isCommand()
}

// StakeCommand credits a verified deposit to the sender's staked balance.
type StakeCommand struct {
	Request *models.StakeRequest
}

// WithdrawCommand moves staked tokens back out of escrow to the sender.
type WithdrawCommand struct {
	Request *models.WithdrawRequest
}

// CreateListingCommand opens an auction for an asset the sender escrowed.
type CreateListingCommand struct {
	Request *models.CreateListingRequest
}

// PlaceBidCommand bids on an open listing as the sender.
type PlaceBidCommand struct {
	ListingID int64
	Request   *models.PlaceBidRequest
}

// CloseListingCommand settles an expired listing owned by the sender.
type CloseListingCommand struct {
	ListingID int64
}

func (StakeCommand) isCommand()         {}
func (WithdrawCommand) isCommand()      {}
func (CreateListingCommand) isCommand() {}
func (PlaceBidCommand) isCommand()      {}
func (CloseListingCommand) isCommand()  {}

// CommandResult reports the outcome of an executed command. Action names the
// operation performed; the remaining fields are filled per command kind.
type CommandResult struct {
	Action  string                  `json:"action"`
	Balance *models.BalanceResponse `json:"balance,omitempty"`
	Listing *models.Listing         `json:"listing,omitempty"`
}
