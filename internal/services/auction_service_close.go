package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"auction-house/internal/models"
	"auction-house/internal/repository"
)

// CloseListing settles an expired auction. Only the creator may settle, and
// only after the bidding window has run: the listing becomes PASSED when the
// highest bid met the minimum, otherwise REJECTED with the highest bidder
// reset to the creator. Either way every lock on the listing is released and
// the listing never reopens. The staked payment moves from the winner to the
// creator inside the settlement transaction; escrow instructions for the
// payout and the asset follow after commit.
func (s *AuctionService) CloseListing(ctx context.Context, caller string, listingID int64) (*models.Listing, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}

	if caller != listing.CreatorAddress {
		return nil, ErrNotCreator
	}
	if listing.Status != models.ListingStatusInProgress {
		return nil, ErrListingNotInProgress
	}

	height, err := s.chain.CurrentHeight(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain height: %w", err)
	}
	if listing.StartHeight != nil && height < *listing.StartHeight {
		return nil, ErrBiddingNotStarted
	}
	if height < listing.EndHeight {
		return nil, ErrBiddingNotExpired
	}

	var (
		sold   bool
		winner string
	)
	err = s.repo.Transaction(ctx, func(repo *repository.Repository) error {
		// Reload under the transaction so a concurrent settlement of the
		// same listing cannot be applied twice. The outcome is decided from
		// this reload too: a bid landing between the first read and the
		// transaction must settle against the bidder who actually holds the
		// highest bid.
		listing, err = repo.GetListing(ctx, listingID)
		if err != nil {
			return fmt.Errorf("failed to load listing: %w", err)
		}
		if listing.Status != models.ListingStatusInProgress {
			return ErrListingNotInProgress
		}

		sold = listing.HighestBid >= listing.MinimumBid
		winner = listing.HighestBidder

		if sold {
			if winner != listing.CreatorAddress {
				winnerAccount, err := repo.GetAccount(ctx, winner)
				if err != nil {
					return fmt.Errorf("failed to load winner account: %w", err)
				}
				winnerAccount.TokenBalance -= listing.HighestBid
				if err := repo.SaveAccount(ctx, winnerAccount); err != nil {
					return fmt.Errorf("failed to save winner account: %w", err)
				}

				creatorAccount, err := repo.GetOrCreateAccount(ctx, listing.CreatorAddress)
				if err != nil {
					return fmt.Errorf("failed to load creator account: %w", err)
				}
				creatorAccount.TokenBalance += listing.HighestBid
				if err := repo.SaveAccount(ctx, creatorAccount); err != nil {
					return fmt.Errorf("failed to save creator account: %w", err)
				}
			}

			listing.Status = models.ListingStatusPassed
			if err := repo.IncrementSellerStats(ctx, listing.CreatorAddress, 0, 1, 0, listing.HighestBid); err != nil {
				return fmt.Errorf("failed to update seller stats: %w", err)
			}
		} else {
			listing.Status = models.ListingStatusRejected
			listing.HighestBidder = listing.CreatorAddress
			if err := repo.IncrementSellerStats(ctx, listing.CreatorAddress, 0, 0, 1, 0); err != nil {
				return fmt.Errorf("failed to update seller stats: %w", err)
			}
		}

		if err := repo.ReleaseListingLocks(ctx, listingID); err != nil {
			return fmt.Errorf("failed to release listing locks: %w", err)
		}

		now := time.Now()
		listing.ClosedAt = &now
		return repo.SaveListing(ctx, listing)
	})
	if err != nil {
		return nil, err
	}

	s.issueSettlementInstructions(ctx, listing, sold, winner)

	log.Printf("Listing %d settled as %s at height %d", listingID, listing.Status, height)
	return listing, nil
}

// issueSettlementInstructions sends the post-commit escrow instructions for a
// settled listing: the currency payout to the creator when the auction sold,
// and the asset transfer to its new holder. Failures are recorded and logged;
// the committed settlement stands.
func (s *AuctionService) issueSettlementInstructions(ctx context.Context, listing *models.Listing, sold bool, winner string) {
	if sold {
		signature, err := s.escrow.TransferCurrency(ctx, winner, listing.CreatorAddress, listing.HighestBid, s.denom)
		status := models.EscrowTxStatusConfirmed
		if err != nil {
			log.Printf("Failed to issue payout for listing %d: %v", listing.ListingID, err)
			status = models.EscrowTxStatusFailed
		}
		s.recordEscrowTx(ctx, &models.EscrowTransaction{
			ListingID: &listing.ListingID,
			Address:   listing.CreatorAddress,
			TxType:    models.EscrowTxTypePayout,
			Amount:    decimal.NewFromInt(listing.HighestBid),
			Denom:     s.denom,
			TxHash:    signature,
			Status:    status,
		})
	}

	assetRecipient := listing.CreatorAddress
	if sold {
		assetRecipient = winner
	}
	signature, err := s.escrow.TransferAsset(ctx, listing.CreatorAddress, assetRecipient, listing.TokenID, listing.AssetClass)
	status := models.EscrowTxStatusConfirmed
	if err != nil {
		log.Printf("Failed to transfer asset for listing %d: %v", listing.ListingID, err)
		status = models.EscrowTxStatusFailed
	}
	tokenID := listing.TokenID
	s.recordEscrowTx(ctx, &models.EscrowTransaction{
		ListingID: &listing.ListingID,
		Address:   assetRecipient,
		TxType:    models.EscrowTxTypeAssetTransfer,
		Amount:    decimal.Zero,
		Denom:     s.denom,
		TokenID:   &tokenID,
		TxHash:    signature,
		Status:    status,
	})

	if err == nil {
		listing.ResolutionTxHash = &signature
		if saveErr := s.repo.SaveListing(ctx, listing); saveErr != nil {
			log.Printf("Failed to record resolution tx for listing %d: %v", listing.ListingID, saveErr)
		}
	}
}

// recordEscrowTx writes a post-commit audit row. The settlement it describes
// has already committed, so a write failure is only logged.
func (s *AuctionService) recordEscrowTx(ctx context.Context, tx *models.EscrowTransaction) {
	if err := s.repo.CreateEscrowTransaction(ctx, tx); err != nil {
		log.Printf("Failed to record escrow transaction for %s: %v", tx.Address, err)
	}
}
