package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"auction-house/internal/models"
	"auction-house/internal/repository"
)

// minStakeAmount is the smallest stake the ledger accepts.
const minStakeAmount = 1

// LedgerService manages per-account staked balances of the reserve denom.
// Staked tokens back bids through token locks; the withdrawable amount is
// always the balance minus the sum of active locks.
type LedgerService struct {
	repo     *repository.Repository
	escrow   EscrowExecutor
	denom    string
	operator string
}

func NewLedgerService(repo *repository.Repository, escrow EscrowExecutor, denom, operator string) *LedgerService {
	return &LedgerService{
		repo:     repo,
		escrow:   escrow,
		denom:    denom,
		operator: operator,
	}
}

// Stake credits a verified escrow deposit to the sender's staked balance and
// bumps the global staked counter. The account is created on first stake.
func (s *LedgerService) Stake(ctx context.Context, address string, req *models.StakeRequest) (*models.BalanceResponse, error) {
	if req.Amount < minStakeAmount {
		return nil, ErrStakeTooSmall
	}

	confirmed, err := s.escrow.VerifyDeposit(ctx, req.DepositSignature)
	if err != nil {
		return nil, fmt.Errorf("failed to verify deposit: %w", err)
	}
	if !confirmed {
		return nil, ErrDepositNotConfirmed
	}

	err = s.repo.Transaction(ctx, func(repo *repository.Repository) error {
		account, err := repo.GetOrCreateAccount(ctx, address)
		if err != nil {
			return fmt.Errorf("failed to load account: %w", err)
		}
		account.TokenBalance += req.Amount
		if err := repo.SaveAccount(ctx, account); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}

		state, err := repo.GetState(ctx)
		if err != nil {
			return fmt.Errorf("failed to load marketplace state: %w", err)
		}
		state.StakedTokens += req.Amount
		if err := repo.SaveState(ctx, state); err != nil {
			return fmt.Errorf("failed to save marketplace state: %w", err)
		}

		return repo.CreateEscrowTransaction(ctx, &models.EscrowTransaction{
			Address: address,
			TxType:  models.EscrowTxTypeDeposit,
			Amount:  decimal.NewFromInt(req.Amount),
			Denom:   s.denom,
			TxHash:  req.DepositSignature,
			Status:  models.EscrowTxStatusConfirmed,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Account %s staked %d %s", address, req.Amount, s.denom)
	return s.Balance(ctx, address)
}

// Withdraw debits the sender's staked balance and issues an escrow payout for
// the withdrawn amount. A nil requested amount withdraws the entire balance.
// Tokens locked behind active bids are not withdrawable; the limit is the
// balance minus the sum of all active locks.
func (s *LedgerService) Withdraw(ctx context.Context, address string, req *models.WithdrawRequest) (*models.BalanceResponse, error) {
	var withdrawn int64

	err := s.repo.Transaction(ctx, func(repo *repository.Repository) error {
		account, err := repo.GetAccount(ctx, address)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNothingStaked
		}
		if err != nil {
			return fmt.Errorf("failed to load account: %w", err)
		}

		locked, err := repo.ActiveLockSum(ctx, address)
		if err != nil {
			return fmt.Errorf("failed to sum active locks: %w", err)
		}

		amount := account.TokenBalance
		if req.Amount != nil {
			amount = *req.Amount
		}
		if amount <= 0 {
			return ErrInvalidAmount
		}
		if amount > account.TokenBalance-locked {
			return ErrOverWithdraw
		}

		account.TokenBalance -= amount
		if err := repo.SaveAccount(ctx, account); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}

		state, err := repo.GetState(ctx)
		if err != nil {
			return fmt.Errorf("failed to load marketplace state: %w", err)
		}
		state.StakedTokens -= amount
		if err := repo.SaveState(ctx, state); err != nil {
			return fmt.Errorf("failed to save marketplace state: %w", err)
		}

		withdrawn = amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The local debit is committed; the escrow payout happens outside the
	// transaction and a failure here is recorded, not rolled back.
	signature, err := s.escrow.TransferCurrency(ctx, s.operator, address, withdrawn, s.denom)
	status := models.EscrowTxStatusConfirmed
	if err != nil {
		log.Printf("Failed to issue withdrawal payout for %s: %v", address, err)
		status = models.EscrowTxStatusFailed
	}
	s.recordEscrowTx(ctx, &models.EscrowTransaction{
		Address: address,
		TxType:  models.EscrowTxTypeWithdraw,
		Amount:  decimal.NewFromInt(withdrawn),
		Denom:   s.denom,
		TxHash:  signature,
		Status:  status,
	})

	log.Printf("Account %s withdrew %d %s", address, withdrawn, s.denom)
	return s.Balance(ctx, address)
}

// Balance returns the account's staking position, including active locks and
// the withdrawable remainder. Unknown accounts report a zero position.
func (s *LedgerService) Balance(ctx context.Context, address string) (*models.BalanceResponse, error) {
	response := &models.BalanceResponse{
		Address: address,
		Locks:   []models.TokenLock{},
	}

	account, err := s.repo.GetAccount(ctx, address)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	locks, err := s.repo.ActiveLocks(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to load active locks: %w", err)
	}

	var locked int64
	for _, lock := range locks {
		locked += lock.Amount
	}

	response.TokenBalance = account.TokenBalance
	response.LockedTotal = locked
	response.Available = account.TokenBalance - locked
	response.Locks = locks
	return response, nil
}

// Participation lists the IDs of listings the account has ever bid on,
// including listings whose locks have been released.
func (s *LedgerService) Participation(ctx context.Context, address string) ([]int64, error) {
	return s.repo.ParticipatedListings(ctx, address)
}

// History returns the account's escrow transaction audit trail.
func (s *LedgerService) History(ctx context.Context, address string, limit int) ([]models.EscrowTransaction, error) {
	return s.repo.ListEscrowTransactions(ctx, address, limit)
}

// recordEscrowTx writes a post-commit audit row. The state transition it
// describes has already committed, so a write failure is only logged.
func (s *LedgerService) recordEscrowTx(ctx context.Context, tx *models.EscrowTransaction) {
	if err := s.repo.CreateEscrowTransaction(ctx, tx); err != nil {
		log.Printf("Failed to record escrow transaction for %s: %v", tx.Address, err)
	}
}
