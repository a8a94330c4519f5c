package service

import (
	"context"

	"crm/internal/notifier"
)

// Notifier delivers customer emails. Both sends are best-effort.
type Notifier interface {
	SendQuote(ctx context.Context, data notifier.QuoteEmail) bool
	SendSaleConfirmation(ctx context.Context, data notifier.SaleEmail) bool
	QuoteLink(id string) string
}
