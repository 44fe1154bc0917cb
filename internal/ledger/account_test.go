package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"buspay/internal/domain"
)

func TestCreditRejectsInvalidAmounts(t *testing.T) {
	store := newStubStore()
	store.addRider(1, 50)
	svc := mustService(t, store)

	for _, amount := range []float64{0, -10} {
		if _, err := svc.Credit(context.Background(), 1, amount, "UPI"); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %v: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if got := store.riderBalance(t, 1); got != 50 {
		t.Fatalf("balance changed on rejected credit: %v", got)
	}
	if len(store.transactions) != 0 {
		t.Fatalf("transactions written on rejected credit: %d", len(store.transactions))
	}
}

func TestCreditAppendsMatchingTransaction(t *testing.T) {
	store := newStubStore()
	store.addRider(1, 25)
	svc := mustService(t, store)

	newBalance, err := svc.Credit(context.Background(), 1, 100, "Card")
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if newBalance != 125 {
		t.Fatalf("expected balance 125, got %v", newBalance)
	}
	if len(store.transactions) != 1 {
		t.Fatalf("expected exactly one transaction, got %d", len(store.transactions))
	}
	entry := store.transactions[0]
	if entry.RiderID != 1 || entry.Amount != 100 || entry.Kind != domain.TransactionCredit {
		t.Fatalf("transaction does not match credit: %+v", entry)
	}
	if entry.Description != "Top up via Card" {
		t.Fatalf("unexpected description: %q", entry.Description)
	}
	if entry.BusNumber != domain.NoBus {
		t.Fatalf("top-up should carry no bus, got %q", entry.BusNumber)
	}
}

func TestCreditDefaultsChannel(t *testing.T) {
	store := newStubStore()
	store.addRider(1, 0)
	svc := mustService(t, store)

	if _, err := svc.Credit(context.Background(), 1, 10, ""); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if got := store.transactions[0].Description; got != "Top up via UPI" {
		t.Fatalf("unexpected description: %q", got)
	}
}

func TestCreditUnknownRider(t *testing.T) {
	store := newStubStore()
	svc := mustService(t, store)

	if _, err := svc.Credit(context.Background(), 9, 10, "UPI"); !errors.Is(err, ErrRiderNotFound) {
		t.Fatalf("expected ErrRiderNotFound, got %v", err)
	}
}

func TestDebitAppendsMatchingTransaction(t *testing.T) {
	store := newStubStore()
	store.addRider(1, 100)
	svc := mustService(t, store)

	newBalance, err := svc.Debit(context.Background(), 1, 30, DebitContext{
		BusNumber:   "5",
		Location:    "Udupi",
		Description: "Bus fare payment - Udupi",
	})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if newBalance != 70 {
		t.Fatalf("expected balance 70, got %v", newBalance)
	}
	if len(store.transactions) != 1 {
		t.Fatalf("expected exactly one transaction, got %d", len(store.transactions))
	}
	entry := store.transactions[0]
	if entry.Kind != domain.TransactionDebit || entry.Amount != 30 || entry.BusNumber != "5" || entry.Location != "Udupi" {
		t.Fatalf("transaction does not match debit: %+v", entry)
	}
}

func TestDebitInsufficientBalanceReportsAmounts(t *testing.T) {
	store := newStubStore()
	store.addRider(1, 20)
	svc := mustService(t, store)

	_, err := svc.Debit(context.Background(), 1, 30, DebitContext{BusNumber: "5", Location: "Udupi"})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	var balanceErr *InsufficientBalanceError
	if !errors.As(err, &balanceErr) {
		t.Fatalf("expected InsufficientBalanceError, got %T", err)
	}
	if balanceErr.Required != 30 || balanceErr.Available != 20 {
		t.Fatalf("wrong amounts in error: %+v", balanceErr)
	}
	if got := store.riderBalance(t, 1); got != 20 {
		t.Fatalf("balance changed on rejected debit: %v", got)
	}
	if len(store.transactions) != 0 {
		t.Fatalf("transactions written on rejected debit: %d", len(store.transactions))
	}
}

func TestDebitRejectsInvalidAmounts(t *testing.T) {
	store := newStubStore()
	store.addRider(1, 50)
	svc := mustService(t, store)

	for _, amount := range []float64{0, -5} {
		if _, err := svc.Debit(context.Background(), 1, amount, DebitContext{}); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %v: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestDebitUnknownRider(t *testing.T) {
	store := newStubStore()
	svc := mustService(t, store)

	if _, err := svc.Debit(context.Background(), 9, 10, DebitContext{}); !errors.Is(err, ErrRiderNotFound) {
		t.Fatalf("expected ErrRiderNotFound, got %v", err)
	}
}

func TestDebitRollsBackWhenAppendFails(t *testing.T) {
	store := newStubStore()
	store.addRider(1, 100)
	store.appendErr = errors.New("insert failed")
	svc := mustService(t, store)

	if _, err := svc.Debit(context.Background(), 1, 30, DebitContext{}); err == nil {
		t.Fatal("expected error when the ledger insert fails")
	}
	// The balance write must roll back with the failed insert.
	if got := store.riderBalance(t, 1); got != 100 {
		t.Fatalf("balance not rolled back: %v", got)
	}
}

func TestCreditStoreErrorsPropagate(t *testing.T) {
	storeFailure := errors.New("store down")
	store := newStubStore()
	store.addRider(1, 10)
	store.creditErr = storeFailure
	svc := mustService(t, store)

	if _, err := svc.Credit(context.Background(), 1, 10, "UPI"); !errors.Is(err, storeFailure) {
		t.Fatalf("expected store failure to propagate, got %v", err)
	}
}

func TestBalanceNeverNegativeAcrossSequence(t *testing.T) {
	store := newStubStore()
	store.addRider(1, 0)
	svc := mustService(t, store)
	ctx := context.Background()

	ops := []struct {
		kind   string
		amount float64
	}{
		{"credit", 50}, {"debit", 20}, {"debit", 40}, {"credit", 15}, {"debit", 45}, {"debit", 1},
	}
	for _, op := range ops {
		if op.kind == "credit" {
			_, _ = svc.Credit(ctx, 1, op.amount, "UPI")
		} else {
			_, _ = svc.Debit(ctx, 1, op.amount, DebitContext{})
		}
		if balance := store.riderBalance(t, 1); balance < 0 {
			t.Fatalf("balance went negative after %s %v: %v", op.kind, op.amount, balance)
		}
	}
	// Every store balance mutation must have exactly one ledger entry.
	var credits, debits float64
	for _, entry := range store.transactions {
		switch entry.Kind {
		case domain.TransactionCredit:
			credits += entry.Amount
		case domain.TransactionDebit:
			debits += entry.Amount
		}
	}
	if got := store.riderBalance(t, 1); got != credits-debits {
		t.Fatalf("ledger does not reconcile: balance %v, credits %v, debits %v", got, credits, debits)
	}
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	const (
		startBalance = 50
		debitAmount  = 40
		attempts     = 10
	)
	store := newStubStore()
	store.addRider(1, startBalance)
	svc := mustService(t, store)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Debit(context.Background(), 1, debitAmount, DebitContext{})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientBalance):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// floor(50/40) = 1 debit can succeed regardless of interleaving.
	if succeeded != 1 {
		t.Fatalf("expected exactly 1 successful debit, got %d", succeeded)
	}
	if rejected != attempts-1 {
		t.Fatalf("expected %d rejections, got %d", attempts-1, rejected)
	}
	if got := store.riderBalance(t, 1); got != startBalance-debitAmount {
		t.Fatalf("expected final balance %v, got %v", startBalance-debitAmount, got)
	}
	if len(store.transactions) != 1 {
		t.Fatalf("expected one ledger entry, got %d", len(store.transactions))
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	store := newStubStore()
	store.addRider(1, 0)
	svc := mustService(t, store)
	ctx := context.Background()

	if _, err := svc.Credit(ctx, 1, 100, "UPI"); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := svc.Debit(ctx, 1, 30, DebitContext{BusNumber: "5", Location: "Udupi"}); err != nil {
		t.Fatalf("debit: %v", err)
	}

	transactions, total, err := svc.History(ctx, 1, 0, 20)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 2 || len(transactions) != 2 {
		t.Fatalf("expected 2 entries, got total %d len %d", total, len(transactions))
	}
	if transactions[0].Kind != domain.TransactionDebit || transactions[1].Kind != domain.TransactionCredit {
		t.Fatalf("history not newest first: %+v", transactions)
	}
	if transactions[0].CreatedAt < transactions[1].CreatedAt {
		t.Fatalf("timestamps out of order: %+v", transactions)
	}
}
