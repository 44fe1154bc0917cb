package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"buspay/internal/domain" // Importing domain models
	"buspay/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// RiderAdminResponse represents the rider data returned to admin
type RiderAdminResponse struct {
	ID        uint    `json:"id"`         // Rider ID
	USN       string  `json:"usn"`        // Student/user number
	Name      string  `json:"name"`       // Full name
	Role      string  `json:"role"`       // Rider role
	BusNumber string  `json:"bus_number"` // Assigned home bus number
	Balance   float64 `json:"balance"`    // Stored balance
}

// pageParams extracts pagination query parameters with defaults
func pageParams(c *gin.Context) (int, int) {
	page := 1      // Default page number
	pageSize := 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		// If valid, set page size
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
	}
	return page, pageSize
}

// ListRidersHandler returns all riders with their balances
func ListRidersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on pagination parameters
		cacheKey := "admin:riders:page=" + c.DefaultQuery("page", "1") + ":size=" + c.DefaultQuery("page_size", "20")
		// Try to get cached response
		var cached struct {
			Riders     []RiderAdminResponse `json:"riders"`      // List of riders
			Page       int                  `json:"page"`        // Current page
			PageSize   int                  `json:"page_size"`   // Page size
			Total      int64                `json:"total"`       // Total number of riders
			TotalPages int                  `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"riders":      cached.Riders,     // List of riders
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of riders
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page, pageSize := pageParams(c) // Pagination parameters
		offset := (page - 1) * pageSize // Calculate offset for pagination
		var total int64                 // Total rider count
		// Fetch total rider count
		if err := db.Model(&domain.Rider{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count riders"}) // Return on error
			return
		}
		var riders []domain.Rider // Slice to hold riders
		// Apply offset and limit for pagination
		if err := db.Offset(offset).Limit(pageSize).Find(&riders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch riders"}) // Return on error
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize // Calculate total pages
		// Prepare response data
		resp := make([]RiderAdminResponse, len(riders))
		// Map riders to response format
		for i, r := range riders {
			resp[i] = RiderAdminResponse{
				ID:        r.ID,        // Rider ID
				USN:       r.USN,       // Student/user number
				Name:      r.Name,      // Full name
				Role:      r.Role,      // Rider role
				BusNumber: r.BusNumber, // Assigned home bus number
				Balance:   r.Balance,   // Stored balance
			}
		}
		// Prepare final response data
		respData := gin.H{
			"riders":      resp,       // List of riders
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of riders
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// ListTransactionsHandler returns all transactions, with optional filtering by rider or kind
func ListTransactionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on filters and pagination parameters
		cacheKey := "admin:transactions:rider=" + c.DefaultQuery("rider_id", "") +
			":kind=" + c.DefaultQuery("kind", "") +
			":page=" + c.DefaultQuery("page", "1") +
			":size=" + c.DefaultQuery("page_size", "20")
		// Try to get cached response
		var cached struct {
			Transactions []domain.Transaction `json:"transactions"` // List of transactions
			Page         int                  `json:"page"`         // Current page
			PageSize     int                  `json:"page_size"`    // Page size
			Total        int64                `json:"total"`        // Total transactions
			TotalPages   int                  `json:"total_pages"`  // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // Cached transactions
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total transactions
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,                // Indicate response is from cache
			})
			return
		}
		page, pageSize := pageParams(c) // Pagination parameters
		offset := (page - 1) * pageSize // Calculate offset for pagination
		query := db.Model(&domain.Transaction{}) // Base query
		// Optional filter by rider
		if riderID := c.Query("rider_id"); riderID != "" {
			query = query.Where("rider_id = ?", riderID)
		}
		// Optional filter by kind (credit or debit)
		if kind := c.Query("kind"); kind != "" {
			query = query.Where("kind = ?", kind)
		}
		var total int64 // Total transaction count
		// Count matching transactions for pagination
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"}) // Return on error
			return
		}
		var transactions []domain.Transaction // Slice to hold transactions
		// Fetch paginated transactions newest first
		if err := query.Order("created_at desc, id desc").Offset(offset).Limit(pageSize).Find(&transactions).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"}) // Return on error
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize // Calculate total pages
		// Prepare final response data
		respData := gin.H{
			"transactions": transactions, // List of transactions
			"page":         page,         // Current page
			"page_size":    pageSize,     // Page size
			"total":        total,        // Total transactions
			"total_pages":  totalPages,   // Total pages
			"cached":       false,        // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// BusRequest represents bus creation and maintenance input
type BusRequest struct {
	BusNumber  string  `json:"bus_number" binding:"required"`        // Bus number
	RouteFrom  string  `json:"route_from" binding:"required"`        // Route starting point
	RouteTo    string  `json:"route_to" binding:"required"`          // Route ending point
	TotalSeats int     `json:"total_seats" binding:"required,gte=1"` // Total seat capacity
	Fare       float64 `json:"fare" binding:"required,gte=0"`        // Fare per scan
}

// CreateBusHandler registers a new bus with all seats available
func CreateBusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BusRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// New buses start with every seat available
		bus := domain.Bus{
			BusNumber:      req.BusNumber,
			RouteFrom:      req.RouteFrom,
			RouteTo:        req.RouteTo,
			TotalSeats:     req.TotalSeats,
			AvailableSeats: req.TotalSeats,
			Fare:           req.Fare,
		}
		// Attempt to create the bus in the database
		if err := db.Create(&bus).Error; err != nil {
			// If creation fails (e.g., duplicate number), return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Bus number already exists"})
			return
		}
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "Bus created", "bus": bus})
	}
}

// UpdateBusHandler maintains a bus's route, capacity and fare. Available
// seats are not writable here; they change only through the seat inventory,
// clamped below whenever the capacity shrinks under them.
func UpdateBusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RouteFrom  string  `json:"route_from"`  // Route starting point
			RouteTo    string  `json:"route_to"`    // Route ending point
			TotalSeats int     `json:"total_seats"` // Total seat capacity
			Fare       float64 `json:"fare"`        // Fare per scan
		}
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		updates := map[string]any{} // Only set the provided fields
		if req.RouteFrom != "" {
			updates["route_from"] = req.RouteFrom
		}
		if req.RouteTo != "" {
			updates["route_to"] = req.RouteTo
		}
		if req.TotalSeats > 0 {
			updates["total_seats"] = req.TotalSeats
		}
		if req.Fare > 0 {
			updates["fare"] = req.Fare
		}
		if len(updates) == 0 {
			// Nothing to change
			c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
			return
		}
		// Apply the update
		result := db.Model(&domain.Bus{}).Where("bus_number = ?", c.Param("number")).Updates(updates)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update bus"}) // Return on error
			return
		}
		if result.RowsAffected == 0 {
			// No bus matched the number
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
			return
		}
		if req.TotalSeats > 0 {
			// A shrunk capacity must never leave available seats above it
			db.Model(&domain.Bus{}).
				Where("bus_number = ? AND available_seats > total_seats", c.Param("number")).
				Update("available_seats", gorm.Expr("total_seats"))
		}
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Bus updated"})
	}
}
