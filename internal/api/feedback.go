package api

import (
	"net/http" // HTTP status codes

	"buspay/internal/ledger" // Ledger core

	"github.com/gin-gonic/gin" // Gin web framework
)

// FeedbackRequest represents a rider feedback submission
type FeedbackRequest struct {
	Category string `json:"category" binding:"required"`           // service, bus, driver, schedule or other
	Rating   int    `json:"rating" binding:"required,gte=1,lte=5"` // Bounded rating
	Text     string `json:"text" binding:"required"`               // Free-text feedback
}

// SubmitFeedbackHandler records rider feedback
func SubmitFeedbackHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		riderID, ok := riderIDFromContext(c) // Get riderID from context
		// Check if riderID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req FeedbackRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Record the feedback
		if err := svc.SubmitFeedback(c.Request.Context(), riderID, req.Category, req.Rating, req.Text); err != nil {
			respondLedgerError(c, err) // Map typed errors to HTTP
			return
		}
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "Thank you for your feedback!"})
	}
}
