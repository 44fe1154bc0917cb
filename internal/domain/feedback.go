package domain

// Feedback Model
type Feedback struct {
	ID        uint   `gorm:"primaryKey"`     // Primary key
	RiderID   uint   `gorm:"index;not null"` // Foreign key to Rider
	Category  string `gorm:"not null"`       // service, bus, driver, schedule or other
	Rating    int    `gorm:"not null"`       // 1..5
	Text      string `gorm:"not null"`       // Free-text feedback
	CreatedAt int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}
