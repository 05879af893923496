package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"auction-house/internal/models"
	"auction-house/internal/repository"
)

// TestListing mirrors models.Listing but compatible with SQLite (no Postgres
// specific defaults)
type TestListing struct {
	ID               uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID        int64                `gorm:"uniqueIndex;not null" json:"listing_id"`
	TokenID          string               `gorm:"size:255;not null" json:"token_id"`
	AssetClass       string               `gorm:"size:255;not null" json:"asset_class"`
	CreatorAddress   string               `gorm:"size:255;not null;index" json:"creator_address"`
	Status           models.ListingStatus `gorm:"size:20;not null;default:IN_PROGRESS;index" json:"status"`
	MinimumBid       int64                `gorm:"not null" json:"minimum_bid"`
	HighestBid       int64                `gorm:"not null;default:0" json:"highest_bid"`
	HighestBidder    string               `gorm:"size:255;not null" json:"highest_bidder"`
	StartHeight      *int64               `json:"start_height"`
	EndHeight        int64                `gorm:"not null" json:"end_height"`
	Description      string               `gorm:"size:255;not null" json:"description"`
	EscrowTxHash     *string              `gorm:"size:255" json:"escrow_tx_hash"`
	ResolutionTxHash *string              `gorm:"size:255" json:"resolution_tx_hash"`
	CreatedAt        time.Time            `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	ClosedAt         *time.Time           `json:"closed_at"`
	UpdatedAt        time.Time            `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (TestListing) TableName() string {
	return "listings"
}

// TestTokenLock mirrors models.TokenLock
type TestTokenLock struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Address    string            `gorm:"size:255;not null;index" json:"address"`
	ListingID  int64             `gorm:"not null;index" json:"listing_id"`
	Amount     int64             `gorm:"not null" json:"amount"`
	Status     models.LockStatus `gorm:"size:20;not null;default:LOCKED;index" json:"status"`
	LockedAt   time.Time         `gorm:"autoCreateTime" json:"locked_at"`
	ReleasedAt *time.Time        `json:"released_at"`
}

func (TestTokenLock) TableName() string {
	return "token_locks"
}

// TestSellerStats mirrors models.SellerStats
type TestSellerStats struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Address        string    `gorm:"uniqueIndex;size:255;not null" json:"address"`
	ListingsOpened int64     `gorm:"default:0" json:"listings_opened"`
	ListingsSold   int64     `gorm:"default:0" json:"listings_sold"`
	ListingsPassed int64     `gorm:"default:0" json:"listings_passed"`
	GrossVolume    int64     `gorm:"default:0" json:"gross_volume"`
	UpdatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (TestSellerStats) TableName() string {
	return "seller_stats"
}

// TestEscrowTransaction mirrors models.EscrowTransaction
type TestEscrowTransaction struct {
	ID        uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID *int64                `gorm:"index" json:"listing_id"`
	Address   string                `gorm:"size:255;not null;index" json:"address"`
	TxType    models.EscrowTxType   `gorm:"size:30;not null" json:"tx_type"`
	Amount    decimal.Decimal       `gorm:"type:decimal(20,0);not null" json:"amount"`
	Denom     string                `gorm:"size:50;not null" json:"denom"`
	TokenID   *string               `gorm:"size:255" json:"token_id"`
	TxHash    string                `gorm:"size:255" json:"tx_hash"`
	Status    models.EscrowTxStatus `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	CreatedAt time.Time             `json:"created_at"`
}

func (TestEscrowTransaction) TableName() string {
	return "escrow_transactions"
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.MarketplaceState{},
		&models.StakeAccount{},
		&models.ListingBid{},
		&models.User{},
		&TestListing{},
		&TestTokenLock{},
		&TestSellerStats{},
		&TestEscrowTransaction{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	// The shared in-memory database survives across tests in this package.
	db.Exec("DELETE FROM marketplace_state")
	db.Exec("DELETE FROM stake_accounts")
	db.Exec("DELETE FROM token_locks")
	db.Exec("DELETE FROM listings")
	db.Exec("DELETE FROM listing_bids")
	db.Exec("DELETE FROM seller_stats")
	db.Exec("DELETE FROM escrow_transactions")
	db.Exec("DELETE FROM users")

	return db
}

// stubChain reports a settable block height. A test can install a one-shot
// onHeight hook to run work between a service's height read and its
// settlement transaction.
type stubChain struct {
	height   int64
	onHeight func()
}

func (s *stubChain) CurrentHeight(ctx context.Context) (int64, error) {
	if s.onHeight != nil {
		hook := s.onHeight
		s.onHeight = nil
		hook()
	}
	return s.height, nil
}

// stubEscrow verifies every non-empty deposit signature and records the
// transfer instructions it was asked to issue.
type stubEscrow struct {
	rejectDeposits bool
	currencyCalls  []string
	assetCalls     []string
}

func (s *stubEscrow) VerifyDeposit(ctx context.Context, signature string) (bool, error) {
	if signature == "" || s.rejectDeposits {
		return false, nil
	}
	return true, nil
}

func (s *stubEscrow) TransferCurrency(ctx context.Context, from, to string, amount int64, denom string) (string, error) {
	call := fmt.Sprintf("%s->%s:%d%s", from, to, amount, denom)
	s.currencyCalls = append(s.currencyCalls, call)
	return "sig_" + call, nil
}

func (s *stubEscrow) TransferAsset(ctx context.Context, from, to, tokenID, assetClass string) (string, error) {
	call := fmt.Sprintf("%s->%s:%s/%s", from, to, assetClass, tokenID)
	s.assetCalls = append(s.assetCalls, call)
	return "sig_" + call, nil
}

// testEnv wires a full marketplace stack over the in-memory database.
type testEnv struct {
	db          *gorm.DB
	repo        *repository.Repository
	chain       *stubChain
	escrow      *stubEscrow
	ledger      *LedgerService
	auction     *AuctionService
	marketplace *MarketplaceService
}

func setupMarketplace(t *testing.T) *testEnv {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)

	if _, err := repo.EnsureState(context.Background(), "STAKE", "owner_addr"); err != nil {
		t.Fatalf("failed to initialize marketplace state: %v", err)
	}

	chain := &stubChain{height: 1000}
	escrow := &stubEscrow{}
	ledger := NewLedgerService(repo, escrow, "STAKE", "owner_addr")
	auction := NewAuctionService(repo, escrow, chain, "STAKE", 100800)
	marketplace := NewMarketplaceService(repo, ledger, auction)

	return &testEnv{
		db:          db,
		repo:        repo,
		chain:       chain,
		escrow:      escrow,
		ledger:      ledger,
		auction:     auction,
		marketplace: marketplace,
	}
}

func (e *testEnv) stake(t *testing.T, address string, amount int64) {
	t.Helper()
	_, err := e.ledger.Stake(context.Background(), address, &models.StakeRequest{
		Amount:           amount,
		DepositSignature: "deposit_" + address,
	})
	if err != nil {
		t.Fatalf("failed to stake %d for %s: %v", amount, address, err)
	}
}

func (e *testEnv) createListing(t *testing.T, creator string, minimumBid int64, endHeight *int64) *models.Listing {
	t.Helper()
	listing, err := e.auction.CreateListing(context.Background(), creator, &models.CreateListingRequest{
		TokenID:          "token-1",
		AssetClass:       "gallery",
		MinimumBid:       minimumBid,
		EndHeight:        endHeight,
		Description:      "rare collectible",
		DepositSignature: "asset_deposit_" + creator,
	})
	if err != nil {
		t.Fatalf("failed to create listing: %v", err)
	}
	return listing
}
