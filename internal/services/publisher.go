package services

import (
	"context"

	"github.com/shopspring/decimal"

	"gst-service/internal/models"
)

// EventPublisher publishes tax domain events
type EventPublisher interface {
	PublishTaxCalculated(ctx context.Context, tenantID, calculationID, orderID, customerID string, taxableAmount, taxAmount decimal.Decimal, currency string) error
	PublishCategoryCreated(ctx context.Context, category *models.ProductTaxCategory, actorID, actorName string) error
	PublishCategoryUpdated(ctx context.Context, category *models.ProductTaxCategory, actorID, actorName string) error
}

// Actor identifies who triggered a change
type Actor struct {
	ID   string
	Name string
}

type noopPublisher struct{}

func (noopPublisher) PublishTaxCalculated(context.Context, string, string, string, string, decimal.Decimal, decimal.Decimal, string) error {
	return nil
}

func (noopPublisher) PublishCategoryCreated(context.Context, *models.ProductTaxCategory, string, string) error {
	return nil
}

func (noopPublisher) PublishCategoryUpdated(context.Context, *models.ProductTaxCategory, string, string) error {
	return nil
}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
