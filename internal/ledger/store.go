package ledger

import (
	"context"

	"buspay/internal/domain"
)

// Store is the persistence contract used by Service.
//
// Implementations must make WithTx an all-or-nothing unit and must make the
// guarded mutations (DebitBalance, TakeSeats) atomic per row so that
// concurrent read-check-write sequences cannot lose updates. Point reads
// return ErrRiderNotFound / ErrBusNotFound for unresolved keys and wrap any
// connectivity failure with ErrStoreUnavailable.
type Store interface {
	// WithTx runs fn against a transactional view of the store. The unit
	// commits only when fn returns nil; any error rolls everything back.
	WithTx(ctx context.Context, fn func(txStore Store) error) error

	RiderByID(ctx context.Context, riderID uint) (domain.Rider, error)
	BusByNumber(ctx context.Context, busNumber string) (domain.Bus, error)

	// CreditBalance adds amount to the rider's balance and returns the new
	// balance.
	CreditBalance(ctx context.Context, riderID uint, amount float64) (float64, error)

	// DebitBalance subtracts amount only while balance >= amount. The second
	// return reports whether the guard held; false means the balance was
	// short and nothing changed.
	DebitBalance(ctx context.Context, riderID uint, amount float64) (float64, bool, error)

	// TakeSeats decrements available seats only while enough remain,
	// returning the remaining count and whether the guard held.
	TakeSeats(ctx context.Context, busNumber string, count int) (int, bool, error)

	// ReturnSeats increments available seats, clamped at the bus's total,
	// and returns the resulting count.
	ReturnSeats(ctx context.Context, busNumber string, count int) (int, error)

	// AlternativeBuses lists other buses on the same route that still have
	// seats available.
	AlternativeBuses(ctx context.Context, routeFrom, routeTo, excludeBus string) ([]domain.Bus, error)

	// AppendTransaction inserts an immutable ledger entry.
	AppendTransaction(ctx context.Context, entry *domain.Transaction) error

	// TransactionsByRider returns the rider's entries newest first.
	TransactionsByRider(ctx context.Context, riderID uint, offset, limit int) ([]domain.Transaction, int64, error)

	AppendFeedback(ctx context.Context, entry *domain.Feedback) error
}
