package models

import (
	"time"

	"github.com/google/uuid"
)

type LockStatus string

const (
	LockStatusLocked   LockStatus = "LOCKED"
	LockStatusReleased LockStatus = "RELEASED"
)

// StakeAccount holds an account's total staked balance of the reserve denom.
// Created lazily on first stake or bid; never deleted, so zero-balance rows
// may persist.
type StakeAccount struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Address      string    `gorm:"uniqueIndex;size:255;not null" json:"address"`
	TokenBalance int64     `gorm:"not null;default:0" json:"token_balance"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (StakeAccount) TableName() string {
	return "stake_accounts"
}

// TokenLock is one hold of staked tokens backing an active bid. A LOCKED row
// pins the bid price against the account's balance; releasing it makes the
// tokens withdrawable again without moving funds. Released rows are retained
// as the account's participation history.
type TokenLock struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Address    string     `gorm:"size:255;not null;index" json:"address"`
	ListingID  int64      `gorm:"not null;index" json:"listing_id"`
	Amount     int64      `gorm:"not null" json:"amount"`
	Status     LockStatus `gorm:"size:20;not null;default:LOCKED;index" json:"status"`
	LockedAt   time.Time  `gorm:"autoCreateTime" json:"locked_at"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
}

func (TokenLock) TableName() string {
	return "token_locks"
}

// StakeRequest is the body of a stake command. DepositSignature is the
// on-chain transfer that moved the staked denom into escrow.
type StakeRequest struct {
	Amount           int64  `json:"amount" binding:"required,gt=0"`
	DepositSignature string `json:"deposit_signature" binding:"required"`
}

// WithdrawRequest is the body of a withdraw command. A nil amount withdraws
// the entire balance.
type WithdrawRequest struct {
	Amount *int64 `json:"amount"`
}

// BalanceResponse is the public view of an account's staking position.
type BalanceResponse struct {
	Address      string      `json:"address"`
	TokenBalance int64       `json:"token_balance"`
	LockedTotal  int64       `json:"locked_total"`
	Available    int64       `json:"available"`
	Locks        []TokenLock `json:"locks"`
}
