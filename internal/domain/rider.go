package domain

// Rider Model
type Rider struct {
	ID         uint    `gorm:"primaryKey"`         // Primary key
	USN        string  `gorm:"unique;not null"`    // Unique student/user number
	Name       string  `gorm:"not null"`           // Full name
	Phone      string  // Contact phone
	Email      string  // Contact email
	Password   string  `gorm:"not null"`           // Hashed password
	Role       string  `gorm:"default:rider"`      // Role: rider or admin
	BusNumber  string  // Assigned home bus number
	Address    string  // Home address
	DistanceKM float64 // Distance from campus, derived from address
	Balance    float64 `gorm:"not null;default:0"` // Stored balance, never negative
}
