package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"buspay/internal/domain"
)

func testBus(number string, total, available int) domain.Bus {
	return domain.Bus{
		BusNumber:      number,
		RouteFrom:      "Campus",
		RouteTo:        "Udupi",
		TotalSeats:     total,
		AvailableSeats: available,
		Fare:           30,
	}
}

func TestReserveDecrementsSeats(t *testing.T) {
	store := newStubStore()
	store.addBus(testBus("5", 10, 10))
	svc := mustService(t, store)

	remaining, err := svc.Reserve(context.Background(), "5", 2)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if remaining != 8 {
		t.Fatalf("expected 8 seats remaining, got %d", remaining)
	}
	// Seat reservation is seat-only: no ledger entry is written.
	if len(store.transactions) != 0 {
		t.Fatalf("reserve wrote %d transactions", len(store.transactions))
	}
}

func TestReserveRejectsInvalidCounts(t *testing.T) {
	store := newStubStore()
	store.addBus(testBus("5", 10, 10))
	svc := mustService(t, store)

	for _, count := range []int{0, -3} {
		if _, err := svc.Reserve(context.Background(), "5", count); !errors.Is(err, ErrInvalidSeatCount) {
			t.Fatalf("count %d: expected ErrInvalidSeatCount, got %v", count, err)
		}
	}
}

func TestReserveInsufficientSeatsReportsAvailable(t *testing.T) {
	store := newStubStore()
	store.addBus(testBus("5", 10, 3))
	svc := mustService(t, store)

	_, err := svc.Reserve(context.Background(), "5", 5)
	if !errors.Is(err, ErrInsufficientSeats) {
		t.Fatalf("expected ErrInsufficientSeats, got %v", err)
	}
	var seatsErr *InsufficientSeatsError
	if !errors.As(err, &seatsErr) {
		t.Fatalf("expected InsufficientSeatsError, got %T", err)
	}
	if seatsErr.Available != 3 {
		t.Fatalf("expected available 3 in error, got %d", seatsErr.Available)
	}
	if got := store.busSeats(t, "5"); got != 3 {
		t.Fatalf("seat count changed on rejected booking: %d", got)
	}
}

func TestReserveUnknownBus(t *testing.T) {
	store := newStubStore()
	svc := mustService(t, store)

	if _, err := svc.Reserve(context.Background(), "99", 1); !errors.Is(err, ErrBusNotFound) {
		t.Fatalf("expected ErrBusNotFound, got %v", err)
	}
}

func TestReserveOneTakesSingleSeat(t *testing.T) {
	store := newStubStore()
	store.addBus(testBus("5", 10, 1))
	svc := mustService(t, store)

	remaining, err := svc.ReserveOne(context.Background(), "5")
	if err != nil {
		t.Fatalf("reserve one: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected 0 seats remaining, got %d", remaining)
	}
	// The next rider finds the bus full.
	if _, err := svc.ReserveOne(context.Background(), "5"); !errors.Is(err, ErrInsufficientSeats) {
		t.Fatalf("expected ErrInsufficientSeats on full bus, got %v", err)
	}
}

func TestReleaseRestoresReservedSeats(t *testing.T) {
	store := newStubStore()
	store.addBus(testBus("5", 10, 10))
	svc := mustService(t, store)
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, "5", 4); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	available, err := svc.Release(ctx, "5", 4)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	// Releasing what was reserved returns the count to its prior value.
	if available != 10 {
		t.Fatalf("expected 10 seats after release, got %d", available)
	}
}

func TestReleaseClampsAtTotalSeats(t *testing.T) {
	store := newStubStore()
	store.addBus(testBus("5", 10, 9))
	svc := mustService(t, store)

	available, err := svc.Release(context.Background(), "5", 5)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if available != 10 {
		t.Fatalf("release exceeded total seats: %d", available)
	}
}

func TestReleaseUnknownBus(t *testing.T) {
	store := newStubStore()
	svc := mustService(t, store)

	if _, err := svc.Release(context.Background(), "99", 1); !errors.Is(err, ErrBusNotFound) {
		t.Fatalf("expected ErrBusNotFound, got %v", err)
	}
}

func TestConcurrentReservationsNeverOverbook(t *testing.T) {
	const (
		totalSeats = 10
		attempts   = 25
	)
	store := newStubStore()
	store.addBus(testBus("5", totalSeats, totalSeats))
	svc := mustService(t, store)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ReserveOne(context.Background(), "5")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientSeats):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != totalSeats {
		t.Fatalf("expected %d successful reservations, got %d", totalSeats, succeeded)
	}
	if got := store.busSeats(t, "5"); got != 0 {
		t.Fatalf("expected 0 seats left, got %d", got)
	}
}

func TestAlternativesListsSameRouteWithSeats(t *testing.T) {
	store := newStubStore()
	store.addBus(testBus("5", 10, 0))
	store.addBus(testBus("7", 10, 4))
	store.addBus(testBus("9", 10, 0))
	other := testBus("12", 10, 6)
	other.RouteTo = "Manipal"
	store.addBus(other)
	svc := mustService(t, store)

	alternatives, err := svc.Alternatives(context.Background(), "5")
	if err != nil {
		t.Fatalf("alternatives: %v", err)
	}
	if len(alternatives) != 1 || alternatives[0].BusNumber != "7" {
		t.Fatalf("unexpected alternatives: %+v", alternatives)
	}
}
