package jobs

import (
	"context"
	"log"
	"time"

	"auction-house/internal/repository"
	"auction-house/internal/services"
)

// ListingWatcher periodically reports listings whose bidding window has
// expired but which are still awaiting settlement by their creator.
// Settlement itself is always creator-initiated; the watcher only surfaces
// the backlog.
type ListingWatcher struct {
	repo     *repository.Repository
	chain    services.ChainInfo
	interval time.Duration
	stopChan chan struct{}
}

// NewListingWatcher creates a new listing watcher job
func NewListingWatcher(repo *repository.Repository, chain services.ChainInfo, interval time.Duration) *ListingWatcher {
	return &ListingWatcher{
		repo:     repo,
		chain:    chain,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the watch loop
func (lw *ListingWatcher) Start() {
	log.Printf("[ListingWatcher] Starting listing watch job (interval: %v)", lw.interval)

	ticker := time.NewTicker(lw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lw.reportExpiredListings()
		case <-lw.stopChan:
			log.Println("[ListingWatcher] Stopping listing watch job")
			return
		}
	}
}

// Stop stops the watch loop
func (lw *ListingWatcher) Stop() {
	close(lw.stopChan)
}

// reportExpiredListings logs every open listing whose window has closed
func (lw *ListingWatcher) reportExpiredListings() {
	ctx := context.Background()

	height, err := lw.chain.CurrentHeight(ctx)
	if err != nil {
		log.Printf("[ListingWatcher] Error reading chain height: %v", err)
		return
	}

	listings, err := lw.repo.ListExpiredOpenListings(ctx, height, 100)
	if err != nil {
		log.Printf("[ListingWatcher] Error fetching expired listings: %v", err)
		return
	}

	if len(listings) == 0 {
		return
	}

	log.Printf("[ListingWatcher] %d listings awaiting settlement at height %d", len(listings), height)
	for _, listing := range listings {
		log.Printf("[ListingWatcher] Listing %d (creator %s) expired at height %d, highest bid %d",
			listing.ListingID, listing.CreatorAddress, listing.EndHeight, listing.HighestBid)
	}
}
