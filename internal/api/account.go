package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"buspay/internal/domain" // Importing domain models
	"buspay/internal/ledger" // Ledger core
	"buspay/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// AccountView is the rider profile returned by GET /account
type AccountView struct {
	ID        uint    `json:"id"`         // Rider ID
	USN       string  `json:"usn"`        // Student/user number
	Name      string  `json:"name"`       // Full name
	Phone     string  `json:"phone"`      // Contact phone
	Email     string  `json:"email"`      // Contact email
	BusNumber string  `json:"bus_number"` // Assigned home bus number
	Address   string  `json:"address"`    // Home address
	Balance   float64 `json:"balance"`    // Stored balance
}

// TopupRequest represents a balance top-up request
type TopupRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"` // Top-up amount
	PaymentMethod string  `json:"payment_method"`                 // Top-up channel, defaults to UPI
}

// GetAccountHandler returns profile and balance for the authenticated rider
func GetAccountHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		riderID, ok := riderIDFromContext(c) // Get riderID from context
		// Check if riderID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()               // Context for Redis operations
		cacheKey := utils.AccountCacheKey(riderID) // Cache key for the account view
		var view AccountView
		found, err := utils.GetCache(ctx, rdb, cacheKey, &view) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"account": view, "cached": true})
			return
		}
		var rider domain.Rider // Fetch rider from database
		if err := db.First(&rider, riderID).Error; err != nil {
			// Return not found if rider doesn't exist
			c.JSON(http.StatusNotFound, gin.H{"error": "Rider not found"})
			return
		}
		view = AccountView{
			ID:        rider.ID,
			USN:       rider.USN,
			Name:      rider.Name,
			Phone:     rider.Phone,
			Email:     rider.Email,
			BusNumber: rider.BusNumber,
			Address:   rider.Address,
			Balance:   rider.Balance,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, view, 60*time.Second)  // Cache the view for 60 seconds
		c.JSON(http.StatusOK, gin.H{"account": view, "cached": false}) // Return account info
	}
}

// TopupHandler credits the rider's balance through the ledger
func TopupHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		riderID, ok := riderIDFromContext(c) // Get riderID from context
		// Check if riderID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req TopupRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		// Credit the balance; the ledger appends the transaction atomically
		newBalance, err := svc.Credit(c.Request.Context(), riderID, req.Amount, req.PaymentMethod)
		if err != nil {
			respondLedgerError(c, err) // Map typed errors to HTTP
			return
		}
		// Invalidate account and transaction history cache
		if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
			utils.InvalidateRiderCache(context.Background(), rdb, riderID)
		}
		// Return success response with the new balance
		c.JSON(http.StatusOK, gin.H{"message": "Top up successful", "balance": newBalance})
	}
}

// TransactionHistoryHandler returns the rider's transactions newest first
func TransactionHistoryHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		riderID, ok := riderIDFromContext(c) // Get riderID from context
		// Check if riderID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page := 1      // Default page
		pageSize := 20 // Default page size
		// If page exists in query
		if p := c.Query("page"); p != "" {
			// Convert page to integer
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// If page_size exists in query
		if ps := c.Query("page_size"); ps != "" {
			// Convert page_size to integer
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size if valid
			}
		}
		offset := (page - 1) * pageSize                           // Calculate offset
		cacheKey := utils.HistoryCacheKey(riderID, page, pageSize) // Redis cache key
		ctx := context.Background()                               // Context for Redis operations
		var cached struct {
			Transactions []domain.Transaction `json:"transactions"` // List of transactions
			Page         int                  `json:"page"`         // Current page
			PageSize     int                  `json:"page_size"`    // Page size
			Total        int64                `json:"total"`        // Total transactions
			TotalPages   int                  `json:"total_pages"`  // Total pages
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // Cached transactions
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total transactions
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,
			})
			return
		}
		// Fetch paginated history from the ledger
		transactions, total, err := svc.History(c.Request.Context(), riderID, offset, pageSize)
		if err != nil {
			respondLedgerError(c, err) // Map typed errors to HTTP
			return
		}
		// Calculate total pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"transactions": transactions, // List of transactions
			"page":         page,         // Current page
			"page_size":    pageSize,     // Page size
			"total":        total,        // Total transactions
			"total_pages":  totalPages,   // Total pages
			"cached":       false,        // Not from cache
		}
		// Cache the result for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp) // Return transaction history
	}
}
