package services

import (
	"context"
	"fmt"

	"auction-house/internal/models"
	"auction-house/internal/repository"
)

// MarketplaceService is the command facade over the ledger and auction
// services. Commands run one at a time per caller request; each one either
// commits completely or leaves no trace.
type MarketplaceService struct {
	repo    *repository.Repository
	ledger  *LedgerService
	auction *AuctionService
}

func NewMarketplaceService(repo *repository.Repository, ledger *LedgerService, auction *AuctionService) *MarketplaceService {
	return &MarketplaceService{
		repo:    repo,
		ledger:  ledger,
		auction: auction,
	}
}

// Execute runs a command on behalf of the sender address. The type switch
// covers every command kind; anything else is rejected.
func (s *MarketplaceService) Execute(ctx context.Context, sender string, cmd Command) (*CommandResult, error) {
	switch c := cmd.(type) {
	case StakeCommand:
		balance, err := s.ledger.Stake(ctx, sender, c.Request)
		if err != nil {
			return nil, err
		}
		return &CommandResult{Action: "stake_tokens", Balance: balance}, nil

	case WithdrawCommand:
		balance, err := s.ledger.Withdraw(ctx, sender, c.Request)
		if err != nil {
			return nil, err
		}
		return &CommandResult{Action: "withdraw_tokens", Balance: balance}, nil

	case CreateListingCommand:
		listing, err := s.auction.CreateListing(ctx, sender, c.Request)
		if err != nil {
			return nil, err
		}
		return &CommandResult{Action: "create_listing", Listing: listing}, nil

	case PlaceBidCommand:
		listing, err := s.auction.PlaceBid(ctx, sender, c.ListingID, c.Request)
		if err != nil {
			return nil, err
		}
		return &CommandResult{Action: "bidden", Listing: listing}, nil

	case CloseListingCommand:
		listing, err := s.auction.CloseListing(ctx, sender, c.ListingID)
		if err != nil {
			return nil, err
		}
		return &CommandResult{Action: "end_listing", Listing: listing}, nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedCommand, cmd)
	}
}

// Overview returns the marketplace state singleton: denom, owner and the
// global counters.
func (s *MarketplaceService) Overview(ctx context.Context) (*models.MarketplaceState, error) {
	return s.repo.GetState(ctx)
}
