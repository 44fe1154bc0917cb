package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ScanPayload is the structure a boarding QR code decodes to. The image
// format is the QR collaborator's concern; the ledger only sees the decoded
// bytes.
type ScanPayload struct {
	BusNumber string `json:"bus_number"`
	Location  string `json:"location"`
}

// Settlement is the successful outcome of a fare scan.
type Settlement struct {
	Fare       float64 `json:"fare"`
	BusNumber  string  `json:"bus_number"`
	Location   string  `json:"location"`
	NewBalance float64 `json:"new_balance"`
	Message    string  `json:"message"`
}

// DecodeScanPayload validates raw scan bytes against the payload schema.
// Anything that does not decode to a payload naming a bus is rejected with
// ErrInvalidPayload.
func DecodeScanPayload(raw []byte) (ScanPayload, error) {
	var payload ScanPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ScanPayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	payload.BusNumber = strings.TrimSpace(payload.BusNumber)
	if payload.BusNumber == "" {
		return ScanPayload{}, fmt.Errorf("%w: missing bus_number", ErrInvalidPayload)
	}
	if strings.TrimSpace(payload.Location) == "" {
		payload.Location = "Unknown"
	}
	return payload, nil
}

// EncodeScanPayload produces the canonical payload bytes for a bus and
// location, for the QR collaborator to render.
func EncodeScanPayload(busNumber, location string) ([]byte, error) {
	if strings.TrimSpace(busNumber) == "" {
		return nil, fmt.Errorf("%w: missing bus_number", ErrInvalidPayload)
	}
	return json.Marshal(ScanPayload{BusNumber: busNumber, Location: location})
}

// Settle processes one fare scan: decode the payload, resolve the bus and
// its fare, then debit the rider. A short balance rejects the scan with
// InsufficientBalance before anything is written. Re-submitting the same
// payload debits again; scans are not deduplicated.
func (service *Service) Settle(ctx context.Context, riderID uint, raw []byte) (Settlement, error) {
	payload, err := DecodeScanPayload(raw)
	if err != nil {
		return Settlement{}, err
	}
	bus, err := service.store.BusByNumber(ctx, payload.BusNumber)
	if err != nil {
		return Settlement{}, err
	}
	newBalance, err := service.Debit(ctx, riderID, bus.Fare, DebitContext{
		BusNumber:   bus.BusNumber,
		Location:    payload.Location,
		Description: "Bus fare payment - " + payload.Location,
	})
	if err != nil {
		return Settlement{}, err
	}
	logrus.WithFields(logrus.Fields{
		"rider_id": riderID,
		"bus":      bus.BusNumber,
		"location": payload.Location,
		"fare":     bus.Fare,
	}).Info("Fare settled")
	return Settlement{
		Fare:       bus.Fare,
		BusNumber:  bus.BusNumber,
		Location:   payload.Location,
		NewBalance: newBalance,
		Message:    fmt.Sprintf("Fare of ₹%.2f deducted successfully for Bus %s from %s", bus.Fare, bus.BusNumber, payload.Location),
	}, nil
}
