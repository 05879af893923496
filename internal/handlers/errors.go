package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"auction-house/internal/services"
)

// statusForError maps a service error onto an HTTP status: unknown resources
// are 404, precondition failures on live state are 409, and everything the
// caller could have validated up front is 400.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrListingNotFound),
		errors.Is(err, services.ErrNothingStaked):
		return http.StatusNotFound

	case errors.Is(err, services.ErrListingNotInProgress),
		errors.Is(err, services.ErrNotCreator),
		errors.Is(err, services.ErrBiddingNotStarted),
		errors.Is(err, services.ErrBiddingNotExpired),
		errors.Is(err, services.ErrBidTooLow),
		errors.Is(err, services.ErrDuplicateBid):
		return http.StatusConflict

	case errors.Is(err, services.ErrDescriptionTooShort),
		errors.Is(err, services.ErrDescriptionTooLong),
		errors.Is(err, services.ErrEndHeightInPast),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrStakeTooSmall),
		errors.Is(err, services.ErrInsufficientStake),
		errors.Is(err, services.ErrOverWithdraw),
		errors.Is(err, services.ErrNoAssetAttached),
		errors.Is(err, services.ErrDepositNotConfirmed):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes the error response for a failed service call. Internal
// failures are not echoed back to the client.
func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
