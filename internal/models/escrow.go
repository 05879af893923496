package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EscrowTxType string

const (
	EscrowTxTypeDeposit       EscrowTxType = "DEPOSIT"
	EscrowTxTypeWithdraw      EscrowTxType = "WITHDRAW"
	EscrowTxTypePayout        EscrowTxType = "PAYOUT"
	EscrowTxTypeAssetTransfer EscrowTxType = "ASSET_TRANSFER"
)

type EscrowTxStatus string

const (
	EscrowTxStatusPending   EscrowTxStatus = "PENDING"
	EscrowTxStatusConfirmed EscrowTxStatus = "CONFIRMED"
	EscrowTxStatusFailed    EscrowTxStatus = "FAILED"
)

// EscrowTransaction is the audit record of one external transfer instruction
// issued by the marketplace: denom moving in or out of escrow, settlement
// payouts, and asset transfers. Rows are written only after the local state
// transition they belong to has committed.
type EscrowTransaction struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ListingID *int64          `gorm:"index" json:"listing_id,omitempty"`
	Address   string          `gorm:"size:255;not null;index" json:"address"`
	TxType    EscrowTxType    `gorm:"size:30;not null" json:"tx_type"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,0);not null" json:"amount"`
	Denom     string          `gorm:"size:50;not null" json:"denom"`
	TokenID   *string         `gorm:"size:255" json:"token_id,omitempty"`
	TxHash    string          `gorm:"size:255" json:"tx_hash"`
	Status    EscrowTxStatus  `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

func (EscrowTransaction) TableName() string {
	return "escrow_transactions"
}
