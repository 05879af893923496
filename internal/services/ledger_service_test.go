package services

import (
	"context"
	"errors"
	"testing"

	"auction-house/internal/models"
)

func TestStakeCreditsBalanceAndState(t *testing.T) {
	env := setupMarketplace(t)
	ctx := context.Background()

	balance, err := env.ledger.Stake(ctx, "alice", &models.StakeRequest{
		Amount:           100,
		DepositSignature: "sig_alice",
	})
	if err != nil {
		t.Fatalf("Stake failed: %v", err)
	}

	if balance.TokenBalance != 100 {
		t.Errorf("expected balance 100, got %d", balance.TokenBalance)
	}
	if balance.Available != 100 {
		t.Errorf("expected available 100, got %d", balance.Available)
	}

	state, err := env.repo.GetState(ctx)
	if err != nil {
		t.Fatalf("failed to get state: %v", err)
	}
	if state.StakedTokens != 100 {
		t.Errorf("expected staked tokens 100, got %d", state.StakedTokens)
	}

	// Second stake accumulates
	if _, err := env.ledger.Stake(ctx, "alice", &models.StakeRequest{
		Amount:           50,
		DepositSignature: "sig_alice_2",
	}); err != nil {
		t.Fatalf("second Stake failed: %v", err)
	}

	balance, err = env.ledger.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance.TokenBalance != 150 {
		t.Errorf("expected balance 150, got %d", balance.TokenBalance)
	}

	history, err := env.ledger.History(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("expected 2 escrow transactions, got %d", len(history))
	}
	for _, tx := range history {
		if tx.TxType != models.EscrowTxTypeDeposit {
			t.Errorf("expected DEPOSIT transaction, got %s", tx.TxType)
		}
	}
}

func TestStakeRejectsBadDeposits(t *testing.T) {
	env := setupMarketplace(t)
	ctx := context.Background()

	_, err := env.ledger.Stake(ctx, "alice", &models.StakeRequest{
		Amount:           0,
		DepositSignature: "sig",
	})
	if !errors.Is(err, ErrStakeTooSmall) {
		t.Errorf("expected ErrStakeTooSmall, got %v", err)
	}

	env.escrow.rejectDeposits = true
	_, err = env.ledger.Stake(ctx, "alice", &models.StakeRequest{
		Amount:           10,
		DepositSignature: "sig",
	})
	if !errors.Is(err, ErrDepositNotConfirmed) {
		t.Errorf("expected ErrDepositNotConfirmed, got %v", err)
	}

	// Nothing was committed
	balance, err := env.ledger.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance.TokenBalance != 0 {
		t.Errorf("expected empty balance after rejected stakes, got %d", balance.TokenBalance)
	}
}

func TestWithdrawDefaultsToEntireBalance(t *testing.T) {
	env := setupMarketplace(t)
	ctx := context.Background()

	env.stake(t, "alice", 100)

	balance, err := env.ledger.Withdraw(ctx, "alice", &models.WithdrawRequest{})
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if balance.TokenBalance != 0 {
		t.Errorf("expected balance 0 after full withdrawal, got %d", balance.TokenBalance)
	}

	state, err := env.repo.GetState(ctx)
	if err != nil {
		t.Fatalf("failed to get state: %v", err)
	}
	if state.StakedTokens != 0 {
		t.Errorf("expected staked tokens 0, got %d", state.StakedTokens)
	}

	if len(env.escrow.currencyCalls) != 1 {
		t.Fatalf("expected 1 payout instruction, got %d", len(env.escrow.currencyCalls))
	}
	if env.escrow.currencyCalls[0] != "owner_addr->alice:100STAKE" {
		t.Errorf("unexpected payout instruction %q", env.escrow.currencyCalls[0])
	}
}

func TestWithdrawUnknownAccount(t *testing.T) {
	env := setupMarketplace(t)

	_, err := env.ledger.Withdraw(context.Background(), "nobody", &models.WithdrawRequest{})
	if !errors.Is(err, ErrNothingStaked) {
		t.Errorf("expected ErrNothingStaked, got %v", err)
	}
}

func TestWithdrawBoundedBySumOfActiveLocks(t *testing.T) {
	env := setupMarketplace(t)
	ctx := context.Background()

	env.stake(t, "alice", 100)
	env.stake(t, "creator", 1)

	first := env.createListing(t, "creator", 10, nil)
	second := env.createListing(t, "creator", 10, nil)

	if _, err := env.auction.PlaceBid(ctx, "alice", first.ListingID, &models.PlaceBidRequest{Price: 30}); err != nil {
		t.Fatalf("first bid failed: %v", err)
	}
	if _, err := env.auction.PlaceBid(ctx, "alice", second.ListingID, &models.PlaceBidRequest{Price: 40}); err != nil {
		t.Fatalf("second bid failed: %v", err)
	}

	// Both locks count against the balance, not just the largest one.
	amount := int64(31)
	_, err := env.ledger.Withdraw(ctx, "alice", &models.WithdrawRequest{Amount: &amount})
	if !errors.Is(err, ErrOverWithdraw) {
		t.Errorf("expected ErrOverWithdraw for amount above balance minus lock sum, got %v", err)
	}

	amount = 30
	balance, err := env.ledger.Withdraw(ctx, "alice", &models.WithdrawRequest{Amount: &amount})
	if err != nil {
		t.Fatalf("Withdraw of available remainder failed: %v", err)
	}
	if balance.TokenBalance != 70 {
		t.Errorf("expected balance 70, got %d", balance.TokenBalance)
	}
	if balance.LockedTotal != 70 {
		t.Errorf("expected locked total 70, got %d", balance.LockedTotal)
	}
	if balance.Available != 0 {
		t.Errorf("expected available 0, got %d", balance.Available)
	}

	// A full-balance withdrawal is blocked while locks are active.
	_, err = env.ledger.Withdraw(ctx, "alice", &models.WithdrawRequest{})
	if !errors.Is(err, ErrOverWithdraw) {
		t.Errorf("expected ErrOverWithdraw for full withdrawal with active locks, got %v", err)
	}
}

func TestWithdrawRejectsOverdraft(t *testing.T) {
	env := setupMarketplace(t)
	ctx := context.Background()

	env.stake(t, "alice", 50)

	amount := int64(60)
	_, err := env.ledger.Withdraw(ctx, "alice", &models.WithdrawRequest{Amount: &amount})
	if !errors.Is(err, ErrOverWithdraw) {
		t.Errorf("expected ErrOverWithdraw, got %v", err)
	}

	amount = -1
	_, err = env.ledger.Withdraw(ctx, "alice", &models.WithdrawRequest{Amount: &amount})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	// Balance untouched by rejected withdrawals
	balance, err := env.ledger.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance.TokenBalance != 50 {
		t.Errorf("expected balance 50, got %d", balance.TokenBalance)
	}
}

func TestParticipationSurvivesLockRelease(t *testing.T) {
	env := setupMarketplace(t)
	ctx := context.Background()

	env.stake(t, "alice", 100)
	env.stake(t, "creator", 1)

	listing := env.createListing(t, "creator", 10, nil)
	if _, err := env.auction.PlaceBid(ctx, "alice", listing.ListingID, &models.PlaceBidRequest{Price: 20}); err != nil {
		t.Fatalf("bid failed: %v", err)
	}

	env.chain.height = listing.EndHeight
	if _, err := env.auction.CloseListing(ctx, "creator", listing.ListingID); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	ids, err := env.ledger.Participation(ctx, "alice")
	if err != nil {
		t.Fatalf("Participation failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != listing.ListingID {
		t.Errorf("expected participation [%d], got %v", listing.ListingID, ids)
	}
}
