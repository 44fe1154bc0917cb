package domain

// Bus Model
type Bus struct {
	BusNumber      string  `gorm:"primaryKey"` // Bus number is the natural key
	RouteFrom      string  // Route starting point
	RouteTo        string  // Route ending point
	TotalSeats     int     `gorm:"not null"`           // Total seat capacity
	AvailableSeats int     `gorm:"not null"`           // Unreserved seats, 0..TotalSeats
	Fare           float64 `gorm:"not null;default:0"` // Fare charged per scan
}
