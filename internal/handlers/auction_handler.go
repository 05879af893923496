package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"auction-house/internal/auth"
	"auction-house/internal/blockchain"
	"auction-house/internal/models"
	"auction-house/internal/services"
)

// AuctionHandler exposes the listing lifecycle endpoints.
type AuctionHandler struct {
	marketplace *services.MarketplaceService
	auction     *services.AuctionService
	escrow      *blockchain.EscrowContract
}

func NewAuctionHandler(marketplace *services.MarketplaceService, auction *services.AuctionService, escrow *blockchain.EscrowContract) *AuctionHandler {
	return &AuctionHandler{
		marketplace: marketplace,
		auction:     auction,
		escrow:      escrow,
	}
}

// CreateListing opens an auction for an escrowed asset.
// POST /api/listings
func (h *AuctionHandler) CreateListing(c *gin.Context) {
	address, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.marketplace.Execute(c.Request.Context(), address, services.CreateListingCommand{Request: &req})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// PlaceBid bids on an open listing.
// POST /api/listings/:id/bids
func (h *AuctionHandler) PlaceBid(c *gin.Context) {
	address, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}

	var req models.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.marketplace.Execute(c.Request.Context(), address, services.PlaceBidCommand{
		ListingID: listingID,
		Request:   &req,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CloseListing settles an expired listing owned by the caller.
// POST /api/listings/:id/close
func (h *AuctionHandler) CloseListing(c *gin.Context) {
	address, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}

	result, err := h.marketplace.Execute(c.Request.Context(), address, services.CloseListingCommand{ListingID: listingID})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetListing retrieves a listing by its public id.
// GET /api/listings/:id
func (h *AuctionHandler) GetListing(c *gin.Context) {
	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}

	listing, err := h.auction.GetListing(c.Request.Context(), listingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// GetListingEscrow reads the on-chain escrow state backing a listing.
// GET /api/listings/:id/escrow
func (h *AuctionHandler) GetListingEscrow(c *gin.Context) {
	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}

	// Unknown listing ids respond 404 before touching the chain.
	if _, err := h.auction.GetListing(c.Request.Context(), listingID); err != nil {
		respondError(c, err)
		return
	}

	state, err := h.escrow.EscrowStateView(c.Request.Context(), listingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch escrow state"})
		return
	}

	c.JSON(http.StatusOK, state)
}

// ListOpenListings retrieves the page of currently open listings.
// GET /api/listings
func (h *AuctionHandler) ListOpenListings(c *gin.Context) {
	limit := 20
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	listings, total, err := h.auction.ListOpenListings(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": listings,
		"total":    total,
	})
}

// GetSellerStats retrieves listing outcome counters for an address.
// GET /api/sellers/:address/stats
func (h *AuctionHandler) GetSellerStats(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	stats, err := h.auction.SellerStats(c.Request.Context(), address)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
