package ledger

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the ledger service.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrRiderNotFound       = errors.New("rider not found")
	ErrBusNotFound         = errors.New("bus not found")
	ErrInsufficientSeats   = errors.New("insufficient seats")
	ErrInvalidPayload      = errors.New("invalid scan payload")
	ErrInvalidSeatCount    = errors.New("invalid seat count")
	ErrInvalidFeedback     = errors.New("invalid feedback")
	ErrStoreUnavailable    = errors.New("store unavailable")
)

// InsufficientBalanceError reports how much was required versus available.
type InsufficientBalanceError struct {
	Required  float64
	Available float64
}

// Error returns the formatted error message.
func (balanceError *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %.2f, available %.2f", balanceError.Required, balanceError.Available)
}

// Is matches the ErrInsufficientBalance sentinel.
func (balanceError *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// InsufficientSeatsError reports the actual available seat count.
type InsufficientSeatsError struct {
	Available int
}

// Error returns the formatted error message.
func (seatsError *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("insufficient seats: only %d available", seatsError.Available)
}

// Is matches the ErrInsufficientSeats sentinel.
func (seatsError *InsufficientSeatsError) Is(target error) bool {
	return target == ErrInsufficientSeats
}
