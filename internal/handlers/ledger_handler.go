package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"auction-house/internal/auth"
	"auction-house/internal/models"
	"auction-house/internal/services"
)

// LedgerHandler exposes the staking ledger endpoints.
type LedgerHandler struct {
	marketplace *services.MarketplaceService
	ledger      *services.LedgerService
}

func NewLedgerHandler(marketplace *services.MarketplaceService, ledger *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		marketplace: marketplace,
		ledger:      ledger,
	}
}

// Stake credits a verified escrow deposit to the caller's staked balance.
// POST /api/ledger/stake
func (h *LedgerHandler) Stake(c *gin.Context) {
	address, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.StakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.marketplace.Execute(c.Request.Context(), address, services.StakeCommand{Request: &req})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Withdraw moves staked tokens back out of escrow. Body amount is optional;
// omitting it withdraws the entire balance.
// POST /api/ledger/withdraw
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	address, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.marketplace.Execute(c.Request.Context(), address, services.WithdrawCommand{Request: &req})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBalance returns the caller's staking position with active locks.
// GET /api/ledger/balance
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	address, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	balance, err := h.ledger.Balance(c.Request.Context(), address)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// GetAccountBalance returns the staking position of any address.
// GET /api/ledger/balance/:address
func (h *LedgerHandler) GetAccountBalance(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	balance, err := h.ledger.Balance(c.Request.Context(), address)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// GetParticipation lists the listings the caller has bid on.
// GET /api/ledger/participation
func (h *LedgerHandler) GetParticipation(c *gin.Context) {
	address, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	listingIDs, err := h.ledger.Participation(c.Request.Context(), address)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listing_ids": listingIDs,
		"total":       len(listingIDs),
	})
}

// GetHistory returns the caller's escrow transaction history.
// GET /api/ledger/history
func (h *LedgerHandler) GetHistory(c *gin.Context) {
	address, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}

	history, err := h.ledger.History(c.Request.Context(), address, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": history,
		"total":        len(history),
	})
}
