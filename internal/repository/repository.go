package repository

import (
	"context"
	"time"

	"auction-house/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction handle, so a
// service can run several repository calls as one atomic unit.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Transaction runs fn inside a database transaction; the repository passed to
// fn is bound to that transaction.
func (r *Repository) Transaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// ============================================================================
// Marketplace state singleton
// ============================================================================

// EnsureState creates the marketplace state row if it does not exist yet.
func (r *Repository) EnsureState(ctx context.Context, denom, ownerAddress string) (*models.MarketplaceState, error) {
	var state models.MarketplaceState
	err := r.db.WithContext(ctx).First(&state).Error
	if err == gorm.ErrRecordNotFound {
		state = models.MarketplaceState{
			Denom:        denom,
			OwnerAddress: ownerAddress,
		}
		if err := r.db.WithContext(ctx).Create(&state).Error; err != nil {
			return nil, err
		}
		return &state, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// GetState loads the marketplace state singleton.
func (r *Repository) GetState(ctx context.Context) (*models.MarketplaceState, error) {
	var state models.MarketplaceState
	if err := r.db.WithContext(ctx).First(&state).Error; err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState persists the marketplace state singleton.
func (r *Repository) SaveState(ctx context.Context, state *models.MarketplaceState) error {
	return r.db.WithContext(ctx).Save(state).Error
}

// ============================================================================
// Stake accounts and locks
// ============================================================================

// GetAccount retrieves a stake account by address. Returns
// gorm.ErrRecordNotFound when the account has never staked.
func (r *Repository) GetAccount(ctx context.Context, address string) (*models.StakeAccount, error) {
	var account models.StakeAccount
	if err := r.db.WithContext(ctx).Where("address = ?", address).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// GetOrCreateAccount retrieves a stake account, creating a zero-balance row
// on first use.
func (r *Repository) GetOrCreateAccount(ctx context.Context, address string) (*models.StakeAccount, error) {
	account, err := r.GetAccount(ctx, address)
	if err == gorm.ErrRecordNotFound {
		account = &models.StakeAccount{Address: address}
		if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
			return nil, err
		}
		return account, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// SaveAccount persists a stake account.
func (r *Repository) SaveAccount(ctx context.Context, account *models.StakeAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// CreateLock records a hold of staked tokens behind a bid.
func (r *Repository) CreateLock(ctx context.Context, address string, listingID, amount int64) error {
	lock := models.TokenLock{
		ID:        uuid.New(),
		Address:   address,
		ListingID: listingID,
		Amount:    amount,
		Status:    models.LockStatusLocked,
	}
	return r.db.WithContext(ctx).Create(&lock).Error
}

// ActiveLocks retrieves all LOCKED holds for an account, oldest first.
func (r *Repository) ActiveLocks(ctx context.Context, address string) ([]models.TokenLock, error) {
	var locks []models.TokenLock
	err := r.db.WithContext(ctx).
		Where("address = ? AND status = ?", address, models.LockStatusLocked).
		Order("locked_at ASC").
		Find(&locks).Error
	if err != nil {
		return nil, err
	}
	return locks, nil
}

// ActiveLockSum returns the total amount held across an account's LOCKED
// holds. The withdrawal bound uses the sum so that one release never frees
// tokens still backing another live bid.
func (r *Repository) ActiveLockSum(ctx context.Context, address string) (int64, error) {
	var total int64
	row := r.db.WithContext(ctx).Model(&models.TokenLock{}).
		Where("address = ? AND status = ?", address, models.LockStatusLocked).
		Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// ReleaseListingLocks marks every LOCKED hold for a listing as released.
// Idempotent: already released rows are untouched.
func (r *Repository) ReleaseListingLocks(ctx context.Context, listingID int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.TokenLock{}).
		Where("listing_id = ? AND status = ?", listingID, models.LockStatusLocked).
		Updates(map[string]interface{}{
			"status":      models.LockStatusReleased,
			"released_at": now,
		}).Error
}

// ParticipatedListings returns the ids of every listing an account has ever
// bid on, in first-bid order.
func (r *Repository) ParticipatedListings(ctx context.Context, address string) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.TokenLock{}).
		Where("address = ?", address).
		Order("locked_at ASC").
		Pluck("listing_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ============================================================================
// Listings and bids
// ============================================================================

// NextListingID increments the listing counter on the state singleton and
// returns the allocated id. Must run inside the caller's transaction.
func (r *Repository) NextListingID(ctx context.Context) (int64, error) {
	state, err := r.GetState(ctx)
	if err != nil {
		return 0, err
	}
	state.ListingCount++
	if err := r.SaveState(ctx, state); err != nil {
		return 0, err
	}
	return state.ListingCount, nil
}

// CreateListing persists a new listing.
func (r *Repository) CreateListing(ctx context.Context, listing *models.Listing) error {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(listing).Error
}

// GetListing retrieves a listing by its public listing id.
func (r *Repository) GetListing(ctx context.Context, listingID int64) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// SaveListing persists a listing.
func (r *Repository) SaveListing(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

// ListOpenListings retrieves IN_PROGRESS listings with a total count.
func (r *Repository) ListOpenListings(ctx context.Context, limit, offset int) ([]*models.Listing, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("status = ?", models.ListingStatusInProgress).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var listings []*models.Listing
	err = r.db.WithContext(ctx).
		Where("status = ?", models.ListingStatusInProgress).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// ListExpiredOpenListings retrieves IN_PROGRESS listings whose bidding window
// closed at or before the given height.
func (r *Repository) ListExpiredOpenListings(ctx context.Context, height int64, limit int) ([]*models.Listing, error) {
	var listings []*models.Listing
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_height <= ?", models.ListingStatusInProgress, height).
		Order("end_height ASC").
		Limit(limit).
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// CreateBid appends an accepted bid record.
func (r *Repository) CreateBid(ctx context.Context, bid *models.ListingBid) error {
	return r.db.WithContext(ctx).Create(bid).Error
}

// BidsForListing retrieves a listing's accepted bids in insertion order.
func (r *Repository) BidsForListing(ctx context.Context, listingID int64) ([]models.ListingBid, error) {
	var bids []models.ListingBid
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("seq ASC").
		Find(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

// HasBid reports whether an account already has an accepted bid on a listing.
func (r *Repository) HasBid(ctx context.Context, listingID int64, bidder string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ListingBid{}).
		Where("listing_id = ? AND bidder = ?", listingID, bidder).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListingBidders returns the distinct bidder addresses of a listing in
// first-bid order.
func (r *Repository) ListingBidders(ctx context.Context, listingID int64) ([]string, error) {
	bids, err := r.BidsForListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	bidders := make([]string, 0, len(bids))
	seen := make(map[string]struct{}, len(bids))
	for _, bid := range bids {
		if _, ok := seen[bid.Bidder]; ok {
			continue
		}
		seen[bid.Bidder] = struct{}{}
		bidders = append(bidders, bid.Bidder)
	}
	return bidders, nil
}

// ============================================================================
// Escrow transactions
// ============================================================================

// CreateEscrowTransaction records an external transfer instruction.
func (r *Repository) CreateEscrowTransaction(ctx context.Context, tx *models.EscrowTransaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(tx).Error
}

// ListEscrowTransactions retrieves escrow transactions for an account.
func (r *Repository) ListEscrowTransactions(ctx context.Context, address string, limit int) ([]models.EscrowTransaction, error) {
	var txs []models.EscrowTransaction
	query := r.db.WithContext(ctx).Where("address = ?", address).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// ============================================================================
// Seller statistics
// ============================================================================

// GetSellerStats retrieves seller statistics for an address, returning a
// zero-valued row when none exists yet.
func (r *Repository) GetSellerStats(ctx context.Context, address string) (*models.SellerStats, error) {
	var stats models.SellerStats
	err := r.db.WithContext(ctx).Where("address = ?", address).First(&stats).Error
	if err == gorm.ErrRecordNotFound {
		return &models.SellerStats{ID: uuid.New(), Address: address}, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// IncrementSellerStats updates seller counters with an atomic upsert.
func (r *Repository) IncrementSellerStats(
	ctx context.Context,
	address string,
	openedIncr int64,
	soldIncr int64,
	passedIncr int64,
	volumeIncr int64,
) error {
	initial := models.SellerStats{
		ID:             uuid.New(),
		Address:        address,
		ListingsOpened: openedIncr,
		ListingsSold:   soldIncr,
		ListingsPassed: passedIncr,
		GrossVolume:    volumeIncr,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"listings_opened": gorm.Expr("seller_stats.listings_opened + ?", openedIncr),
			"listings_sold":   gorm.Expr("seller_stats.listings_sold + ?", soldIncr),
			"listings_passed": gorm.Expr("seller_stats.listings_passed + ?", passedIncr),
			"gross_volume":    gorm.Expr("seller_stats.gross_volume + ?", volumeIncr),
			"updated_at":      gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&initial).Error
}
