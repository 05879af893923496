package models

import (
	"time"

	"github.com/google/uuid"
)

type ListingStatus string

const (
	ListingStatusInProgress ListingStatus = "IN_PROGRESS"
	ListingStatusTally      ListingStatus = "TALLY"
	ListingStatusPassed     ListingStatus = "PASSED"
	ListingStatusRejected   ListingStatus = "REJECTED"
)

// Listing is one auction for one escrowed asset. ListingID is the dense
// public identifier allocated from the marketplace counter, starting at 1.
// HighestBidder starts as the creator and is reset to the creator when the
// auction is rejected. Listings are never deleted; terminal listings remain
// queryable.
type Listing struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ListingID        int64         `gorm:"uniqueIndex;not null" json:"listing_id"`
	TokenID          string        `gorm:"size:255;not null" json:"token_id"`
	AssetClass       string        `gorm:"size:255;not null" json:"asset_class"`
	CreatorAddress   string        `gorm:"size:255;not null;index" json:"creator_address"`
	Status           ListingStatus `gorm:"size:20;not null;default:IN_PROGRESS;index" json:"status"`
	MinimumBid       int64         `gorm:"not null" json:"minimum_bid"`
	HighestBid       int64         `gorm:"not null;default:0" json:"highest_bid"`
	HighestBidder    string        `gorm:"size:255;not null" json:"highest_bidder"`
	StartHeight      *int64        `json:"start_height,omitempty"`
	EndHeight        int64         `gorm:"not null" json:"end_height"`
	Description      string        `gorm:"size:255;not null" json:"description"`
	EscrowTxHash     *string       `gorm:"size:255" json:"escrow_tx_hash,omitempty"`
	ResolutionTxHash *string       `gorm:"size:255" json:"resolution_tx_hash,omitempty"`
	CreatedAt        time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	ClosedAt         *time.Time    `json:"closed_at,omitempty"`
	UpdatedAt        time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Listing) TableName() string {
	return "listings"
}

// ListingBid is one accepted bid. Rows are append-only; insertion order (by
// the auto-increment Seq) is the bid order, and since every accepted bid must
// strictly exceed the previous highest, the newest row is always the highest.
type ListingBid struct {
	Seq       uint      `gorm:"primaryKey" json:"seq"`
	ListingID int64     `gorm:"not null;index" json:"listing_id"`
	Bidder    string    `gorm:"size:255;not null;index" json:"bidder"`
	Price     int64     `gorm:"not null" json:"price"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ListingBid) TableName() string {
	return "listing_bids"
}

// SellerStats tracks per-address listing outcomes.
type SellerStats struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Address        string    `gorm:"uniqueIndex;size:255;not null" json:"address"`
	ListingsOpened int64     `gorm:"default:0" json:"listings_opened"`
	ListingsSold   int64     `gorm:"default:0" json:"listings_sold"`
	ListingsPassed int64     `gorm:"default:0" json:"listings_passed"`
	GrossVolume    int64     `gorm:"default:0" json:"gross_volume"`
	UpdatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (SellerStats) TableName() string {
	return "seller_stats"
}

// CreateListingRequest is the body of a create-listing command. The deposit
// signature references the on-chain transfer that escrowed the auctioned
// asset; a listing cannot be created without it.
type CreateListingRequest struct {
	TokenID          string `json:"token_id" binding:"required"`
	AssetClass       string `json:"asset_class" binding:"required"`
	MinimumBid       int64  `json:"minimum_bid" binding:"required,gt=0"`
	StartHeight      *int64 `json:"start_height"`
	EndHeight        *int64 `json:"end_height"`
	Description      string `json:"description" binding:"required"`
	DepositSignature string `json:"deposit_signature"`
}

// PlaceBidRequest is the body of a bid command. TopUpAmount and the deposit
// signature describe reserve denom attached to the bid; it is credited to the
// bidder's staked balance before the price check.
type PlaceBidRequest struct {
	Price            int64  `json:"price" binding:"required,gt=0"`
	TopUpAmount      int64  `json:"top_up_amount"`
	DepositSignature string `json:"deposit_signature"`
}

// ListingResponse is the public view of a listing.
type ListingResponse struct {
	ListingID     int64         `json:"listing_id"`
	TokenID       string        `json:"token_id"`
	AssetClass    string        `json:"asset_class"`
	Creator       string        `json:"creator"`
	Status        ListingStatus `json:"status"`
	MinimumBid    int64         `json:"minimum_bid"`
	HighestBid    int64         `json:"highest_bid"`
	HighestBidder string        `json:"highest_bidder"`
	StartHeight   *int64        `json:"start_height,omitempty"`
	EndHeight     int64         `json:"end_height"`
	Description   string        `json:"description"`
	BidCount      int           `json:"bid_count"`
	CreatedAt     time.Time     `json:"created_at"`
	ClosedAt      *time.Time    `json:"closed_at,omitempty"`
}

// ListingView builds the public view of a listing with its bid count.
func ListingView(l *Listing, bidCount int) *ListingResponse {
	return &ListingResponse{
		ListingID:     l.ListingID,
		TokenID:       l.TokenID,
		AssetClass:    l.AssetClass,
		Creator:       l.CreatorAddress,
		Status:        l.Status,
		MinimumBid:    l.MinimumBid,
		HighestBid:    l.HighestBid,
		HighestBidder: l.HighestBidder,
		StartHeight:   l.StartHeight,
		EndHeight:     l.EndHeight,
		Description:   l.Description,
		BidCount:      bidCount,
		CreatedAt:     l.CreatedAt,
		ClosedAt:      l.ClosedAt,
	}
}
