package ledger

import (
	"context"
	"fmt"
	"strings"

	"buspay/internal/domain"
)

// Feedback categories accepted from riders.
var feedbackCategories = map[string]bool{
	"service":  true,
	"bus":      true,
	"driver":   true,
	"schedule": true,
	"other":    true,
}

// SubmitFeedback records rider feedback. Feedback is independent of the
// ledger invariants; it shares the store only.
func (service *Service) SubmitFeedback(ctx context.Context, riderID uint, category string, rating int, text string) error {
	category = strings.ToLower(strings.TrimSpace(category))
	if !feedbackCategories[category] {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidFeedback, category)
	}
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be 1..5", ErrInvalidFeedback)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidFeedback)
	}
	entry := domain.Feedback{
		RiderID:  riderID,
		Category: category,
		Rating:   rating,
		Text:     text,
	}
	return service.store.AppendFeedback(ctx, &entry)
}
