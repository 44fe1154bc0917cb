package gormstore

import (
	"context"
	"errors"
	"fmt"

	"buspay/internal/domain"
	"buspay/internal/ledger"

	"gorm.io/gorm"
)

// GormStore implements ledger.Store over a gorm database handle (MySQL in
// production, sqlite in tests).
type GormStore struct {
	db *gorm.DB
}

// New wraps a gorm handle as a ledger store.
func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// storeErr wraps infrastructure failures so callers can match
// ledger.ErrStoreUnavailable without depending on driver error types.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ledger.ErrStoreUnavailable, err)
}

// WithTx runs fn inside a database transaction; fn sees a store bound to
// the transaction handle. Any error from fn rolls the whole unit back.
func (store *GormStore) WithTx(ctx context.Context, fn func(txStore ledger.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// RiderByID fetches a rider by primary key.
func (store *GormStore) RiderByID(ctx context.Context, riderID uint) (domain.Rider, error) {
	var rider domain.Rider
	if err := store.db.WithContext(ctx).First(&rider, riderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Rider{}, ledger.ErrRiderNotFound
		}
		return domain.Rider{}, storeErr(err)
	}
	return rider, nil
}

// BusByNumber fetches a bus by its number.
func (store *GormStore) BusByNumber(ctx context.Context, busNumber string) (domain.Bus, error) {
	var bus domain.Bus
	if err := store.db.WithContext(ctx).Where("bus_number = ?", busNumber).First(&bus).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Bus{}, ledger.ErrBusNotFound
		}
		return domain.Bus{}, storeErr(err)
	}
	return bus, nil
}

// CreditBalance adds amount to the rider's balance in place and returns the
// new balance.
func (store *GormStore) CreditBalance(ctx context.Context, riderID uint, amount float64) (float64, error) {
	result := store.db.WithContext(ctx).Model(&domain.Rider{}).
		Where("id = ?", riderID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return 0, storeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, ledger.ErrRiderNotFound
	}
	return store.riderBalance(ctx, riderID)
}

// DebitBalance subtracts amount behind a balance guard: the update matches
// only while balance >= amount, so two concurrent debits can never both
// apply against the same funds.
func (store *GormStore) DebitBalance(ctx context.Context, riderID uint, amount float64) (float64, bool, error) {
	result := store.db.WithContext(ctx).Model(&domain.Rider{}).
		Where("id = ? AND balance >= ?", riderID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return 0, false, storeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, false, nil
	}
	balance, err := store.riderBalance(ctx, riderID)
	if err != nil {
		return 0, false, err
	}
	return balance, true, nil
}

func (store *GormStore) riderBalance(ctx context.Context, riderID uint) (float64, error) {
	var rider domain.Rider
	if err := store.db.WithContext(ctx).Select("balance").First(&rider, riderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ledger.ErrRiderNotFound
		}
		return 0, storeErr(err)
	}
	return rider.Balance, nil
}

// TakeSeats decrements available seats behind a capacity guard.
func (store *GormStore) TakeSeats(ctx context.Context, busNumber string, count int) (int, bool, error) {
	result := store.db.WithContext(ctx).Model(&domain.Bus{}).
		Where("bus_number = ? AND available_seats >= ?", busNumber, count).
		Update("available_seats", gorm.Expr("available_seats - ?", count))
	if result.Error != nil {
		return 0, false, storeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, false, nil
	}
	available, err := store.busSeats(ctx, busNumber)
	if err != nil {
		return 0, false, err
	}
	return available, true, nil
}

// ReturnSeats increments available seats, clamping at the bus's total when
// the compensation would overshoot capacity.
func (store *GormStore) ReturnSeats(ctx context.Context, busNumber string, count int) (int, error) {
	result := store.db.WithContext(ctx).Model(&domain.Bus{}).
		Where("bus_number = ? AND available_seats + ? <= total_seats", busNumber, count).
		Update("available_seats", gorm.Expr("available_seats + ?", count))
	if result.Error != nil {
		return 0, storeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		clamp := store.db.WithContext(ctx).Model(&domain.Bus{}).
			Where("bus_number = ?", busNumber).
			Update("available_seats", gorm.Expr("total_seats"))
		if clamp.Error != nil {
			return 0, storeErr(clamp.Error)
		}
		// No RowsAffected check here: MySQL reports zero affected rows for
		// a no-op update on an already-full bus. The read below surfaces
		// ErrBusNotFound when the bus truly does not exist.
	}
	return store.busSeats(ctx, busNumber)
}

func (store *GormStore) busSeats(ctx context.Context, busNumber string) (int, error) {
	var bus domain.Bus
	if err := store.db.WithContext(ctx).Select("available_seats").Where("bus_number = ?", busNumber).First(&bus).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ledger.ErrBusNotFound
		}
		return 0, storeErr(err)
	}
	return bus.AvailableSeats, nil
}

// AlternativeBuses lists other buses on the same route with seats left.
func (store *GormStore) AlternativeBuses(ctx context.Context, routeFrom, routeTo, excludeBus string) ([]domain.Bus, error) {
	var buses []domain.Bus
	err := store.db.WithContext(ctx).
		Where("route_from = ? AND route_to = ? AND bus_number <> ? AND available_seats > 0", routeFrom, routeTo, excludeBus).
		Find(&buses).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return buses, nil
}

// AppendTransaction inserts one immutable ledger entry.
func (store *GormStore) AppendTransaction(ctx context.Context, entry *domain.Transaction) error {
	if err := store.db.WithContext(ctx).Create(entry).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

// TransactionsByRider returns the rider's entries newest first with the
// total count for pagination.
func (store *GormStore) TransactionsByRider(ctx context.Context, riderID uint, offset, limit int) ([]domain.Transaction, int64, error) {
	var total int64
	if err := store.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("rider_id = ?", riderID).
		Count(&total).Error; err != nil {
		return nil, 0, storeErr(err)
	}
	var transactions []domain.Transaction
	query := store.db.WithContext(ctx).
		Where("rider_id = ?", riderID).
		Order("created_at desc, id desc")
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&transactions).Error; err != nil {
		return nil, 0, storeErr(err)
	}
	return transactions, total, nil
}

// AppendFeedback inserts one feedback row.
func (store *GormStore) AppendFeedback(ctx context.Context, entry *domain.Feedback) error {
	if err := store.db.WithContext(ctx).Create(entry).Error; err != nil {
		return storeErr(err)
	}
	return nil
}
