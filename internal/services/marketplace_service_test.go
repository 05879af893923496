package services

import (
	"context"
	"errors"
	"testing"

	"auction-house/internal/models"
)

func TestExecuteDispatchesCommands(t *testing.T) {
	env := setupMarketplace(t)
	ctx := context.Background()

	result, err := env.marketplace.Execute(ctx, "creator", StakeCommand{
		Request: &models.StakeRequest{Amount: 10, DepositSignature: "sig_creator"},
	})
	if err != nil {
		t.Fatalf("stake command failed: %v", err)
	}
	if result.Action != "stake_tokens" {
		t.Errorf("expected action stake_tokens, got %s", result.Action)
	}
	if result.Balance == nil || result.Balance.TokenBalance != 10 {
		t.Errorf("expected balance 10 in result, got %+v", result.Balance)
	}

	result, err = env.marketplace.Execute(ctx, "creator", CreateListingCommand{
		Request: &models.CreateListingRequest{
			TokenID:          "token-1",
			AssetClass:       "gallery",
			MinimumBid:       5,
			Description:      "rare collectible",
			DepositSignature: "asset_sig",
		},
	})
	if err != nil {
		t.Fatalf("create listing command failed: %v", err)
	}
	if result.Action != "create_listing" {
		t.Errorf("expected action create_listing, got %s", result.Action)
	}
	if result.Listing == nil || result.Listing.ListingID != 1 {
		t.Fatalf("expected listing 1 in result, got %+v", result.Listing)
	}
	listingID := result.Listing.ListingID

	env.stake(t, "alice", 50)
	result, err = env.marketplace.Execute(ctx, "alice", PlaceBidCommand{
		ListingID: listingID,
		Request:   &models.PlaceBidRequest{Price: 20},
	})
	if err != nil {
		t.Fatalf("bid command failed: %v", err)
	}
	if result.Action != "bidden" {
		t.Errorf("expected action bidden, got %s", result.Action)
	}
	if result.Listing.HighestBid != 20 {
		t.Errorf("expected highest bid 20, got %d", result.Listing.HighestBid)
	}

	env.chain.height = result.Listing.EndHeight
	result, err = env.marketplace.Execute(ctx, "creator", CloseListingCommand{ListingID: listingID})
	if err != nil {
		t.Fatalf("close command failed: %v", err)
	}
	if result.Action != "end_listing" {
		t.Errorf("expected action end_listing, got %s", result.Action)
	}
	if result.Listing.Status != models.ListingStatusPassed {
		t.Errorf("expected status PASSED, got %s", result.Listing.Status)
	}

	result, err = env.marketplace.Execute(ctx, "alice", WithdrawCommand{
		Request: &models.WithdrawRequest{},
	})
	if err != nil {
		t.Fatalf("withdraw command failed: %v", err)
	}
	if result.Action != "withdraw_tokens" {
		t.Errorf("expected action withdraw_tokens, got %s", result.Action)
	}
	if result.Balance.TokenBalance != 0 {
		t.Errorf("expected balance 0 after withdrawal, got %d", result.Balance.TokenBalance)
	}
}

type bogusCommand struct{}

func (bogusCommand) isCommand() {}

func TestExecuteRejectsUnknownCommand(t *testing.T) {
	env := setupMarketplace(t)

	_, err := env.marketplace.Execute(context.Background(), "alice", bogusCommand{})
	if !errors.Is(err, ErrUnsupportedCommand) {
		t.Errorf("expected ErrUnsupportedCommand, got %v", err)
	}
}

func TestCommandFailureLeavesNoTrace(t *testing.T) {
	env := setupMarketplace(t)
	ctx := context.Background()

	env.stake(t, "alice", 10)

	listing := env.createListing(t, "creator", 5, nil)

	// Bid above the stake fails and must not leave a lock or bid behind.
	_, err := env.marketplace.Execute(ctx, "alice", PlaceBidCommand{
		ListingID: listing.ListingID,
		Request:   &models.PlaceBidRequest{Price: 50},
	})
	if !errors.Is(err, ErrInsufficientStake) {
		t.Fatalf("expected ErrInsufficientStake, got %v", err)
	}

	balance, err := env.ledger.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance.LockedTotal != 0 {
		t.Errorf("expected no locks after failed bid, got %d locked", balance.LockedTotal)
	}

	view, err := env.auction.GetListing(ctx, listing.ListingID)
	if err != nil {
		t.Fatalf("GetListing failed: %v", err)
	}
	if view.BidCount != 0 {
		t.Errorf("expected no bids after failed bid, got %d", view.BidCount)
	}
	if view.HighestBid != 0 {
		t.Errorf("expected highest bid 0, got %d", view.HighestBid)
	}
}

func TestOverview(t *testing.T) {
	env := setupMarketplace(t)
	ctx := context.Background()

	env.stake(t, "alice", 40)
	env.createListing(t, "creator", 5, nil)

	state, err := env.marketplace.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}
	if state.Denom != "STAKE" {
		t.Errorf("expected denom STAKE, got %s", state.Denom)
	}
	if state.OwnerAddress != "owner_addr" {
		t.Errorf("expected owner owner_addr, got %s", state.OwnerAddress)
	}
	if state.ListingCount != 1 {
		t.Errorf("expected listing count 1, got %d", state.ListingCount)
	}
	if state.StakedTokens != 40 {
		t.Errorf("expected staked tokens 40, got %d", state.StakedTokens)
	}
}
