package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"buspay/internal/domain" // Importing domain models
	"buspay/internal/ledger" // Ledger core

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// SeatRequest carries a seat count for booking and release
type SeatRequest struct {
	Seats int `json:"seats" binding:"required,gte=1"` // Number of seats
}

// ListBusesHandler returns buses that still have seats available
func ListBusesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buses []domain.Bus // Slice to hold buses
		// Query buses with seats left, as shown on the dashboard
		if err := db.Where("available_seats > 0").Order("bus_number").Find(&buses).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch buses"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"buses": buses}) // Return bus list
	}
}

// GetBusHandler returns a single bus by number
func GetBusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bus domain.Bus // Bus struct to hold data
		// Query the bus by its number
		if err := db.Where("bus_number = ?", c.Param("number")).First(&bus).Error; err != nil {
			// Return not found if the bus doesn't exist
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"bus": bus}) // Return bus info
	}
}

// BookSeatsHandler reserves seats on a bus. Booking is seat-only: the fare
// is charged separately when the rider scans the QR code at boarding.
func BookSeatsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := riderIDFromContext(c); !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req SeatRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || req.Seats < 1 {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid number of seats"})
			return
		}
		busNumber := c.Param("number") // Bus number from the path
		// Reserve the seats through the ledger
		remaining, err := svc.Reserve(c.Request.Context(), busNumber, req.Seats)
		if err != nil {
			respondLedgerError(c, err) // Map typed errors to HTTP
			return
		}
		// Return success response with the remaining seat count
		c.JSON(http.StatusOK, gin.H{
			"message":         "Booking successful. Remember to scan the QR code at the bus stop to pay the fare.",
			"bus_number":      busNumber,
			"seats_booked":    req.Seats,
			"available_seats": remaining,
		})
	}
}

// ConfirmSeatHandler reserves a single seat for the boarding-notification
// flow; when the bus is full it responds with alternative buses on the
// same route.
func ConfirmSeatHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := riderIDFromContext(c); !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		busNumber := c.Param("number") // Bus number from the path
		// Reserve one seat through the ledger
		remaining, err := svc.ReserveOne(c.Request.Context(), busNumber)
		if err == nil {
			// Seat confirmed
			c.JSON(http.StatusOK, gin.H{
				"message":         "Your seat has been confirmed!",
				"bus_number":      busNumber,
				"available_seats": remaining,
			})
			return
		}
		// When the regular bus is full, offer alternatives on the route
		if errors.Is(err, ledger.ErrInsufficientSeats) {
			alternatives, altErr := svc.Alternatives(c.Request.Context(), busNumber)
			if altErr != nil {
				respondLedgerError(c, altErr)
				return
			}
			c.JSON(http.StatusConflict, gin.H{
				"message":      "Your regular bus is full. Please select an alternative bus.",
				"alternatives": alternatives,
			})
			return
		}
		respondLedgerError(c, err) // Map remaining typed errors to HTTP
	}
}

// ReleaseSeatsHandler returns previously reserved seats to a bus
func ReleaseSeatsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := riderIDFromContext(c); !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req SeatRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || req.Seats < 1 {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid number of seats"})
			return
		}
		busNumber := c.Param("number") // Bus number from the path
		// Release the seats through the ledger, clamped at the bus total
		available, err := svc.Release(c.Request.Context(), busNumber, req.Seats)
		if err != nil {
			respondLedgerError(c, err) // Map typed errors to HTTP
			return
		}
		// Return success response with the resulting seat count
		c.JSON(http.StatusOK, gin.H{
			"message":         "Seats released",
			"bus_number":      busNumber,
			"available_seats": available,
		})
	}
}
