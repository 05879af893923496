package models

import (
	"time"
)

// MarketplaceState is the singleton configuration and counter row for the
// marketplace. It is created once at deployment and updated on every stake,
// withdrawal and listing creation.
type MarketplaceState struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	Denom        string    `gorm:"size:50;not null" json:"denom"`
	OwnerAddress string    `gorm:"size:255;not null" json:"owner_address"`
	ListingCount int64     `gorm:"not null;default:0" json:"listing_count"`
	StakedTokens int64     `gorm:"not null;default:0" json:"staked_tokens"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (MarketplaceState) TableName() string {
	return "marketplace_state"
}
