package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auction-house/internal/services"
)

// MarketplaceHandler exposes the marketplace state endpoints.
type MarketplaceHandler struct {
	marketplace *services.MarketplaceService
}

func NewMarketplaceHandler(marketplace *services.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{
		marketplace: marketplace,
	}
}

// GetOverview returns the marketplace configuration and global counters.
// GET /api/marketplace
func (h *MarketplaceHandler) GetOverview(c *gin.Context) {
	state, err := h.marketplace.Overview(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"denom":         state.Denom,
		"owner":         state.OwnerAddress,
		"listing_count": state.ListingCount,
		"staked_tokens": state.StakedTokens,
	})
}
