package ledger

import (
	"context"

	"buspay/internal/domain"

	"github.com/sirupsen/logrus"
)

// Reserve takes seatCount seats on the bus, failing with InsufficientSeats
// (carrying the actual available count) when not enough remain. Reserving a
// seat writes no transaction: the fare is charged separately at scan time.
// Returns the remaining seat count.
func (service *Service) Reserve(ctx context.Context, busNumber string, seatCount int) (int, error) {
	if seatCount < 1 {
		return 0, ErrInvalidSeatCount
	}
	var remaining int
	err := service.store.WithTx(ctx, func(txStore Store) error {
		bus, busErr := txStore.BusByNumber(ctx, busNumber)
		if busErr != nil {
			return busErr
		}
		if bus.AvailableSeats < seatCount {
			return &InsufficientSeatsError{Available: bus.AvailableSeats}
		}
		left, ok, takeErr := txStore.TakeSeats(ctx, busNumber, seatCount)
		if takeErr != nil {
			return takeErr
		}
		if !ok {
			// Lost the race to a concurrent booking; report the fresh count.
			bus, busErr = txStore.BusByNumber(ctx, busNumber)
			if busErr != nil {
				return busErr
			}
			return &InsufficientSeatsError{Available: bus.AvailableSeats}
		}
		remaining = left
		return nil
	})
	if err != nil {
		return 0, err
	}
	logrus.WithFields(logrus.Fields{
		"bus":       busNumber,
		"seats":     seatCount,
		"remaining": remaining,
	}).Info("Seats reserved")
	return remaining, nil
}

// ReserveOne reserves a single seat; used by the boarding-notification flow.
func (service *Service) ReserveOne(ctx context.Context, busNumber string) (int, error) {
	return service.Reserve(ctx, busNumber, 1)
}

// Release returns seatCount seats to the bus, clamped at its total capacity.
// Returns the resulting available count.
func (service *Service) Release(ctx context.Context, busNumber string, seatCount int) (int, error) {
	if seatCount < 1 {
		return 0, ErrInvalidSeatCount
	}
	var available int
	err := service.store.WithTx(ctx, func(txStore Store) error {
		if _, busErr := txStore.BusByNumber(ctx, busNumber); busErr != nil {
			return busErr
		}
		count, returnErr := txStore.ReturnSeats(ctx, busNumber, seatCount)
		if returnErr != nil {
			return returnErr
		}
		available = count
		return nil
	})
	if err != nil {
		return 0, err
	}
	logrus.WithFields(logrus.Fields{
		"bus":       busNumber,
		"seats":     seatCount,
		"available": available,
	}).Info("Seats released")
	return available, nil
}

// Alternatives lists other buses covering the same route as busNumber that
// still have seats, for riders whose regular bus is full.
func (service *Service) Alternatives(ctx context.Context, busNumber string) ([]domain.Bus, error) {
	bus, err := service.store.BusByNumber(ctx, busNumber)
	if err != nil {
		return nil, err
	}
	return service.store.AlternativeBuses(ctx, bus.RouteFrom, bus.RouteTo, busNumber)
}
