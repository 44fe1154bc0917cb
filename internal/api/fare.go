package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes

	"buspay/internal/ledger" // Ledger core
	"buspay/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// ScanRequest carries the decoded QR payload bytes from the rider's device
type ScanRequest struct {
	Payload string `json:"payload" binding:"required"` // Raw scan payload (JSON)
}

// ScanFareHandler settles a fare for a scanned bus QR code
func ScanFareHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		riderID, ok := riderIDFromContext(c) // Get riderID from context
		// Check if riderID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req ScanRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Settle the scan through the ledger state machine
		settlement, err := svc.Settle(c.Request.Context(), riderID, []byte(req.Payload))
		if err != nil {
			respondLedgerError(c, err) // Map typed rejections to HTTP
			return
		}
		// Invalidate account and transaction history cache after the debit
		if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
			utils.InvalidateRiderCache(context.Background(), rdb, riderID)
		}
		// Return the settlement confirmation
		c.JSON(http.StatusOK, gin.H{
			"message":     settlement.Message,
			"fare":        settlement.Fare,
			"bus_number":  settlement.BusNumber,
			"location":    settlement.Location,
			"new_balance": settlement.NewBalance,
		})
	}
}

// QRPayloadHandler returns the canonical scan payload for a bus and
// location; rendering it as an image is the QR collaborator's concern
func QRPayloadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		busNumber := c.Query("bus_number") // Bus number from the query
		location := c.Query("location")    // Location from the query
		// Encode the payload through the ledger schema
		payload, err := ledger.EncodeScanPayload(busNumber, location)
		if err != nil {
			respondLedgerError(c, err) // Map typed errors to HTTP
			return
		}
		// Return the payload string to encode into a QR image
		c.JSON(http.StatusOK, gin.H{"payload": string(payload)})
	}
}
