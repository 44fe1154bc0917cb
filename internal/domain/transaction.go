package domain

// Transaction kinds
const (
	TransactionCredit = "credit" // Balance increased (top-up)
	TransactionDebit  = "debit"  // Balance decreased (fare payment)
)

// NoBus marks transactions not tied to any bus (top-ups)
const NoBus = "N/A"

// Transaction Model. Rows are append-only: never updated or deleted.
type Transaction struct {
	ID          uint    `gorm:"primaryKey"`     // Primary key
	RiderID     uint    `gorm:"index;not null"` // Foreign key to Rider
	Amount      float64 `gorm:"not null"`       // Always positive; Kind carries the sign
	Kind        string  `gorm:"not null"`       // credit or debit
	Description string  // Human-readable context (top-up channel, fare note)
	BusNumber   string  // Bus the debit relates to, or "N/A"
	Location    string  // Scan location, or "N/A"
	CreatedAt   int64   `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}
