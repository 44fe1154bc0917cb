package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"buspay/internal/ledger" // Ledger core errors

	"github.com/gin-gonic/gin" // Gin web framework
)

// riderIDFromContext extracts the authenticated rider's ID set by the JWT middleware
func riderIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get("riderID") // Get riderID from context
	if !exists {
		return 0, false // Not authenticated
	}
	riderID, ok := value.(uint) // Assert to uint
	return riderID, ok
}

// respondLedgerError maps typed ledger errors onto HTTP responses.
// Validation failures and rejections are 4xx with their details; anything
// else (store failures included) is a plain 500.
func respondLedgerError(c *gin.Context, err error) {
	var balanceErr *ledger.InsufficientBalanceError
	var seatsErr *ledger.InsufficientSeatsError
	switch {
	case errors.As(err, &balanceErr):
		// Rejected fare or debit: report required vs. available
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Insufficient balance",
			"required":  balanceErr.Required,
			"available": balanceErr.Available,
		})
	case errors.As(err, &seatsErr):
		// Rejected booking: report the actual available count
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Insufficient seats",
			"available": seatsErr.Available,
		})
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidSeatCount),
		errors.Is(err, ledger.ErrInvalidPayload),
		errors.Is(err, ledger.ErrInvalidFeedback):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrRiderNotFound),
		errors.Is(err, ledger.ErrBusNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
