package ledger

import (
	"context"
	"sort"
	"sync"
	"testing"

	"buspay/internal/domain"
)

// stubStore is an in-memory Store for service tests. WithTx holds a mutex
// for the whole unit and restores a snapshot on error, which gives the
// same serialized, all-or-nothing behavior the real store provides.
type stubStore struct {
	mu           sync.Mutex
	riders       map[uint]domain.Rider
	buses        map[string]domain.Bus
	transactions []domain.Transaction
	feedback     []domain.Feedback
	nextTxID     uint
	clockMillis  int64

	riderErr    error
	busErr      error
	creditErr   error
	debitErr    error
	takeErr     error
	returnErr   error
	appendErr   error
	listErr     error
	feedbackErr error
}

func newStubStore() *stubStore {
	return &stubStore{
		riders: map[uint]domain.Rider{},
		buses:  map[string]domain.Bus{},
	}
}

func (s *stubStore) addRider(id uint, balance float64) {
	s.riders[id] = domain.Rider{ID: id, USN: "USN", Balance: balance}
}

func (s *stubStore) addBus(bus domain.Bus) {
	s.buses[bus.BusNumber] = bus
}

type storeSnapshot struct {
	riders       map[uint]domain.Rider
	buses        map[string]domain.Bus
	transactions []domain.Transaction
	feedback     []domain.Feedback
	nextTxID     uint
}

func (s *stubStore) snapshot() storeSnapshot {
	riders := make(map[uint]domain.Rider, len(s.riders))
	for id, rider := range s.riders {
		riders[id] = rider
	}
	buses := make(map[string]domain.Bus, len(s.buses))
	for number, bus := range s.buses {
		buses[number] = bus
	}
	return storeSnapshot{
		riders:       riders,
		buses:        buses,
		transactions: append([]domain.Transaction(nil), s.transactions...),
		feedback:     append([]domain.Feedback(nil), s.feedback...),
		nextTxID:     s.nextTxID,
	}
}

func (s *stubStore) restore(snap storeSnapshot) {
	s.riders = snap.riders
	s.buses = snap.buses
	s.transactions = snap.transactions
	s.feedback = snap.feedback
	s.nextTxID = snap.nextTxID
}

func (s *stubStore) WithTx(_ context.Context, fn func(txStore Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *stubStore) RiderByID(_ context.Context, riderID uint) (domain.Rider, error) {
	if s.riderErr != nil {
		return domain.Rider{}, s.riderErr
	}
	rider, ok := s.riders[riderID]
	if !ok {
		return domain.Rider{}, ErrRiderNotFound
	}
	return rider, nil
}

func (s *stubStore) BusByNumber(_ context.Context, busNumber string) (domain.Bus, error) {
	if s.busErr != nil {
		return domain.Bus{}, s.busErr
	}
	bus, ok := s.buses[busNumber]
	if !ok {
		return domain.Bus{}, ErrBusNotFound
	}
	return bus, nil
}

func (s *stubStore) CreditBalance(_ context.Context, riderID uint, amount float64) (float64, error) {
	if s.creditErr != nil {
		return 0, s.creditErr
	}
	rider, ok := s.riders[riderID]
	if !ok {
		return 0, ErrRiderNotFound
	}
	rider.Balance += amount
	s.riders[riderID] = rider
	return rider.Balance, nil
}

func (s *stubStore) DebitBalance(_ context.Context, riderID uint, amount float64) (float64, bool, error) {
	if s.debitErr != nil {
		return 0, false, s.debitErr
	}
	rider, ok := s.riders[riderID]
	if !ok || rider.Balance < amount {
		return 0, false, nil
	}
	rider.Balance -= amount
	s.riders[riderID] = rider
	return rider.Balance, true, nil
}

func (s *stubStore) TakeSeats(_ context.Context, busNumber string, count int) (int, bool, error) {
	if s.takeErr != nil {
		return 0, false, s.takeErr
	}
	bus, ok := s.buses[busNumber]
	if !ok || bus.AvailableSeats < count {
		return 0, false, nil
	}
	bus.AvailableSeats -= count
	s.buses[busNumber] = bus
	return bus.AvailableSeats, true, nil
}

func (s *stubStore) ReturnSeats(_ context.Context, busNumber string, count int) (int, error) {
	if s.returnErr != nil {
		return 0, s.returnErr
	}
	bus, ok := s.buses[busNumber]
	if !ok {
		return 0, ErrBusNotFound
	}
	bus.AvailableSeats += count
	if bus.AvailableSeats > bus.TotalSeats {
		bus.AvailableSeats = bus.TotalSeats
	}
	s.buses[busNumber] = bus
	return bus.AvailableSeats, nil
}

func (s *stubStore) AlternativeBuses(_ context.Context, routeFrom, routeTo, excludeBus string) ([]domain.Bus, error) {
	var buses []domain.Bus
	for _, bus := range s.buses {
		if bus.BusNumber == excludeBus || bus.RouteFrom != routeFrom || bus.RouteTo != routeTo || bus.AvailableSeats <= 0 {
			continue
		}
		buses = append(buses, bus)
	}
	sort.Slice(buses, func(i, j int) bool { return buses[i].BusNumber < buses[j].BusNumber })
	return buses, nil
}

func (s *stubStore) AppendTransaction(_ context.Context, entry *domain.Transaction) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.nextTxID++
	s.clockMillis++
	entry.ID = s.nextTxID
	entry.CreatedAt = s.clockMillis
	s.transactions = append(s.transactions, *entry)
	return nil
}

func (s *stubStore) TransactionsByRider(_ context.Context, riderID uint, offset, limit int) ([]domain.Transaction, int64, error) {
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	var matched []domain.Transaction
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if s.transactions[i].RiderID == riderID {
			matched = append(matched, s.transactions[i])
		}
	}
	total := int64(len(matched))
	if offset > 0 {
		if offset >= len(matched) {
			return nil, total, nil
		}
		matched = matched[offset:]
	}
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (s *stubStore) AppendFeedback(_ context.Context, entry *domain.Feedback) error {
	if s.feedbackErr != nil {
		return s.feedbackErr
	}
	entry.ID = uint(len(s.feedback) + 1)
	s.feedback = append(s.feedback, *entry)
	return nil
}

func mustService(t *testing.T, store Store) *Service {
	t.Helper()
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func (s *stubStore) riderBalance(t *testing.T, riderID uint) float64 {
	t.Helper()
	rider, ok := s.riders[riderID]
	if !ok {
		t.Fatalf("rider %d not in store", riderID)
	}
	return rider.Balance
}

func (s *stubStore) busSeats(t *testing.T, busNumber string) int {
	t.Helper()
	bus, ok := s.buses[busNumber]
	if !ok {
		t.Fatalf("bus %s not in store", busNumber)
	}
	return bus.AvailableSeats
}
