package ledger

import "errors"

// Service contains the balance-and-seat ledger logic over a Store.
type Service struct {
	store Store
}

// NewService wires a Service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("ledger: store dependency is nil")
	}
	return &Service{store: store}, nil
}
