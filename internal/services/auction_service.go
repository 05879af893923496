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

const (
	minDescriptionLength = 3
	maxDescriptionLength = 64
)

// AuctionService runs the listing lifecycle: creation, bidding and
// settlement. Every command is applied in a single database transaction;
// escrow instructions are issued only after that transaction commits.
type AuctionService struct {
	repo                *repository.Repository
	escrow              EscrowExecutor
	chain               ChainInfo
	denom               string
	defaultWindowBlocks int64
}

func NewAuctionService(
	repo *repository.Repository,
	escrow EscrowExecutor,
	chain ChainInfo,
	denom string,
	defaultWindowBlocks int64,
) *AuctionService {
	return &AuctionService{
		repo:                repo,
		escrow:              escrow,
		chain:               chain,
		denom:               denom,
		defaultWindowBlocks: defaultWindowBlocks,
	}
}

// CreateListing opens an auction for an escrowed asset. The deposit signature
// must reference a confirmed transfer of the asset into escrow; without it
// there is nothing to auction. When no end height is given the bidding window
// defaults to the configured number of blocks from the current height.
func (s *AuctionService) CreateListing(ctx context.Context, creator string, req *models.CreateListingRequest) (*models.Listing, error) {
	if len(req.Description) < minDescriptionLength {
		return nil, ErrDescriptionTooShort
	}
	if len(req.Description) > maxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}
	if req.MinimumBid <= 0 {
		return nil, ErrInvalidAmount
	}

	height, err := s.chain.CurrentHeight(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain height: %w", err)
	}
	if req.EndHeight != nil && *req.EndHeight <= height {
		return nil, ErrEndHeightInPast
	}

	if req.DepositSignature == "" {
		return nil, ErrNoAssetAttached
	}
	confirmed, err := s.escrow.VerifyDeposit(ctx, req.DepositSignature)
	if err != nil {
		return nil, fmt.Errorf("failed to verify asset deposit: %w", err)
	}
	if !confirmed {
		return nil, ErrDepositNotConfirmed
	}

	endHeight := height + s.defaultWindowBlocks
	if req.EndHeight != nil {
		endHeight = *req.EndHeight
	}

	var listing *models.Listing
	err = s.repo.Transaction(ctx, func(repo *repository.Repository) error {
		listingID, err := repo.NextListingID(ctx)
		if err != nil {
			return fmt.Errorf("failed to allocate listing id: %w", err)
		}

		escrowTxHash := req.DepositSignature
		listing = &models.Listing{
			ListingID:      listingID,
			TokenID:        req.TokenID,
			AssetClass:     req.AssetClass,
			CreatorAddress: creator,
			Status:         models.ListingStatusInProgress,
			MinimumBid:     req.MinimumBid,
			HighestBid:     0,
			HighestBidder:  creator,
			StartHeight:    req.StartHeight,
			EndHeight:      endHeight,
			Description:    req.Description,
			EscrowTxHash:   &escrowTxHash,
		}
		if err := repo.CreateListing(ctx, listing); err != nil {
			return fmt.Errorf("failed to create listing: %w", err)
		}

		if err := repo.IncrementSellerStats(ctx, creator, 1, 0, 0, 0); err != nil {
			return fmt.Errorf("failed to update seller stats: %w", err)
		}

		tokenID := req.TokenID
		return repo.CreateEscrowTransaction(ctx, &models.EscrowTransaction{
			ListingID: &listing.ListingID,
			Address:   creator,
			TxType:    models.EscrowTxTypeAssetTransfer,
			Amount:    decimal.Zero,
			Denom:     s.denom,
			TokenID:   &tokenID,
			TxHash:    req.DepositSignature,
			Status:    models.EscrowTxStatusConfirmed,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Listing %d created by %s for token %s, bidding ends at height %d",
		listing.ListingID, creator, listing.TokenID, listing.EndHeight)
	return listing, nil
}

// PlaceBid records a bid on an open listing and locks the bid price against
// the bidder's staked balance. An optional verified top-up deposit is
// credited to the balance before the stake check. Each account may bid at
// most once per listing, and every accepted bid strictly exceeds the
// previous highest.
func (s *AuctionService) PlaceBid(ctx context.Context, bidder string, listingID int64, req *models.PlaceBidRequest) (*models.Listing, error) {
	if req.Price <= 0 || req.TopUpAmount < 0 {
		return nil, ErrInvalidAmount
	}

	if req.TopUpAmount > 0 {
		confirmed, err := s.escrow.VerifyDeposit(ctx, req.DepositSignature)
		if err != nil {
			return nil, fmt.Errorf("failed to verify top-up deposit: %w", err)
		}
		if !confirmed {
			return nil, ErrDepositNotConfirmed
		}
	}

	var listing *models.Listing
	err := s.repo.Transaction(ctx, func(repo *repository.Repository) error {
		var err error
		listing, err = repo.GetListing(ctx, listingID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListingNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load listing: %w", err)
		}

		if listing.Status != models.ListingStatusInProgress {
			return ErrListingNotInProgress
		}
		if req.Price <= listing.HighestBid {
			return ErrBidTooLow
		}

		already, err := repo.HasBid(ctx, listingID, bidder)
		if err != nil {
			return fmt.Errorf("failed to check existing bids: %w", err)
		}
		if already {
			return ErrDuplicateBid
		}

		account, err := repo.GetOrCreateAccount(ctx, bidder)
		if err != nil {
			return fmt.Errorf("failed to load account: %w", err)
		}
		if account.TokenBalance+req.TopUpAmount < req.Price {
			return ErrInsufficientStake
		}

		if req.TopUpAmount > 0 {
			account.TokenBalance += req.TopUpAmount
			if err := repo.SaveAccount(ctx, account); err != nil {
				return fmt.Errorf("failed to save account: %w", err)
			}

			state, err := repo.GetState(ctx)
			if err != nil {
				return fmt.Errorf("failed to load marketplace state: %w", err)
			}
			state.StakedTokens += req.TopUpAmount
			if err := repo.SaveState(ctx, state); err != nil {
				return fmt.Errorf("failed to save marketplace state: %w", err)
			}

			err = repo.CreateEscrowTransaction(ctx, &models.EscrowTransaction{
				ListingID: &listing.ListingID,
				Address:   bidder,
				TxType:    models.EscrowTxTypeDeposit,
				Amount:    decimal.NewFromInt(req.TopUpAmount),
				Denom:     s.denom,
				TxHash:    req.DepositSignature,
				Status:    models.EscrowTxStatusConfirmed,
			})
			if err != nil {
				return fmt.Errorf("failed to record top-up deposit: %w", err)
			}
		}

		if err := repo.CreateLock(ctx, bidder, listingID, req.Price); err != nil {
			return fmt.Errorf("failed to lock staked tokens: %w", err)
		}

		if err := repo.CreateBid(ctx, &models.ListingBid{
			ListingID: listingID,
			Bidder:    bidder,
			Price:     req.Price,
		}); err != nil {
			return fmt.Errorf("failed to record bid: %w", err)
		}

		listing.HighestBid = req.Price
		listing.HighestBidder = bidder
		return repo.SaveListing(ctx, listing)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Account %s bid %d %s on listing %d", bidder, req.Price, s.denom, listingID)
	return listing, nil
}

// GetListing returns the public view of a listing with its bid count.
func (s *AuctionService) GetListing(ctx context.Context, listingID int64) (*models.ListingResponse, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}

	bids, err := s.repo.BidsForListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bids: %w", err)
	}
	return models.ListingView(listing, len(bids)), nil
}

// ListOpenListings returns the page of currently open listings.
func (s *AuctionService) ListOpenListings(ctx context.Context, limit, offset int) ([]*models.ListingResponse, int64, error) {
	listings, total, err := s.repo.ListOpenListings(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list open listings: %w", err)
	}

	views := make([]*models.ListingResponse, 0, len(listings))
	for _, listing := range listings {
		bids, err := s.repo.BidsForListing(ctx, listing.ListingID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load bids: %w", err)
		}
		views = append(views, models.ListingView(listing, len(bids)))
	}
	return views, total, nil
}

// SellerStats returns listing outcome counters for an address.
func (s *AuctionService) SellerStats(ctx context.Context, address string) (*models.SellerStats, error) {
	return s.repo.GetSellerStats(ctx, address)
}
