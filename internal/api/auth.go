package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"buspay/internal/domain" // Importing domain models
	"buspay/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for registration
type RegisterRequest struct {
	USN       string `json:"usn" binding:"required"`      // Student/user number must be provided
	Name      string `json:"name" binding:"required"`     // Full name must be provided
	Phone     string `json:"phone"`                       // Contact phone
	Email     string `json:"email"`                       // Contact email
	Password  string `json:"password" binding:"required"` // Password must be provided
	BusNumber string `json:"bus_number"`                  // Assigned home bus number
	Address   string `json:"address" binding:"required"`  // Home address
}

// Request struct for login
type LoginRequest struct {
	USN      string `json:"usn" binding:"required"`      // Student/user number must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// Known stop distances from campus in kilometres
var stopDistances = map[string]float64{
	"kundapura": 30,
	"udupi":     8.5,
	"manipal":   12,
	"brahmavar": 15,
	"mangalore": 25,
}

// distanceForAddress derives the rider's distance from the address text
func distanceForAddress(address string) float64 {
	lower := strings.ToLower(address)
	for stop, distance := range stopDistances {
		if strings.Contains(lower, stop) {
			return distance // First matching known stop wins
		}
	}
	return 10 // Default distance when no known stop matches
}

// isValidPassword checks if the password length is between 8 and 15 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 15 // Return true if length is valid
}

// RegisterHandler creates a rider account with a zero starting balance
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate password length
		if !isValidPassword(req.Password) {
			// If password is invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-15 characters"})
			return
		}
		// Hash the password and create the rider
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		// Create rider with uppercase USN to ensure uniqueness
		rider := domain.Rider{
			USN:        strings.ToUpper(strings.TrimSpace(req.USN)),
			Name:       req.Name,
			Phone:      req.Phone,
			Email:      req.Email,
			Password:   string(hash),
			BusNumber:  req.BusNumber,
			Address:    req.Address,
			DistanceKM: distanceForAddress(req.Address),
		}
		// Attempt to create the rider in the database
		if err := db.Create(&rider).Error; err != nil {
			// If creation fails (e.g., duplicate USN), return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "USN already registered"})
			return
		}
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "Registration successful"})
	}
}

// LoginHandler authenticates a rider and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var rider domain.Rider // Fetch rider from database
		if err := db.Where("usn = ?", strings.ToUpper(strings.TrimSpace(req.USN))).First(&rider).Error; err != nil {
			// If rider not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid USN or password"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(rider.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid USN or password"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(rider.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}
