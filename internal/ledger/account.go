package ledger

import (
	"context"

	"buspay/internal/domain"

	"github.com/sirupsen/logrus"
)

// DebitContext tags a debit with the bus and location it settles.
type DebitContext struct {
	BusNumber   string // Bus the fare belongs to, or "N/A"
	Location    string // Scan location, or "N/A"
	Description string // Free-text description recorded in the ledger
}

// Credit increases the rider's balance by amount and appends a credit
// transaction naming the top-up channel. The balance write and the ledger
// insert commit as one unit. Returns the new balance.
func (service *Service) Credit(ctx context.Context, riderID uint, amount float64, channel string) (float64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if channel == "" {
		channel = "UPI"
	}
	var newBalance float64
	err := service.store.WithTx(ctx, func(txStore Store) error {
		balance, creditErr := txStore.CreditBalance(ctx, riderID, amount)
		if creditErr != nil {
			return creditErr
		}
		newBalance = balance
		entry := domain.Transaction{
			RiderID:     riderID,
			Amount:      amount,
			Kind:        domain.TransactionCredit,
			Description: "Top up via " + channel,
			BusNumber:   domain.NoBus,
			Location:    domain.NoBus,
		}
		return txStore.AppendTransaction(ctx, &entry)
	})
	if err != nil {
		return 0, err
	}
	logrus.WithFields(logrus.Fields{
		"rider_id": riderID,
		"amount":   amount,
		"type":     domain.TransactionCredit,
		"channel":  channel,
		"balance":  newBalance,
	}).Info("Balance credited")
	return newBalance, nil
}

// Debit decreases the rider's balance by amount and appends a debit
// transaction tagged with debitContext. Fails with InsufficientBalance
// (carrying required vs. available) when the balance is short; nothing is
// written in that case.
func (service *Service) Debit(ctx context.Context, riderID uint, amount float64, debitContext DebitContext) (float64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var newBalance float64
	err := service.store.WithTx(ctx, func(txStore Store) error {
		rider, riderErr := txStore.RiderByID(ctx, riderID)
		if riderErr != nil {
			return riderErr
		}
		if rider.Balance < amount {
			return &InsufficientBalanceError{Required: amount, Available: rider.Balance}
		}
		balance, ok, debitErr := txStore.DebitBalance(ctx, riderID, amount)
		if debitErr != nil {
			return debitErr
		}
		if !ok {
			// A concurrent debit drained the balance between the read and
			// the guarded write. Re-read for an accurate error.
			rider, riderErr = txStore.RiderByID(ctx, riderID)
			if riderErr != nil {
				return riderErr
			}
			return &InsufficientBalanceError{Required: amount, Available: rider.Balance}
		}
		newBalance = balance
		entry := domain.Transaction{
			RiderID:     riderID,
			Amount:      amount,
			Kind:        domain.TransactionDebit,
			Description: debitContext.Description,
			BusNumber:   debitContext.BusNumber,
			Location:    debitContext.Location,
		}
		return txStore.AppendTransaction(ctx, &entry)
	})
	if err != nil {
		return 0, err
	}
	logrus.WithFields(logrus.Fields{
		"rider_id": riderID,
		"amount":   amount,
		"type":     domain.TransactionDebit,
		"bus":      debitContext.BusNumber,
		"location": debitContext.Location,
		"balance":  newBalance,
	}).Info("Balance debited")
	return newBalance, nil
}

// History returns the rider's transactions newest first, with the total
// count for pagination.
func (service *Service) History(ctx context.Context, riderID uint, offset, limit int) ([]domain.Transaction, int64, error) {
	return service.store.TransactionsByRider(ctx, riderID, offset, limit)
}
