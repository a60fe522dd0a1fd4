package events

import (
	"context"
	"sync"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"gst-service/internal/models"
)

var (
	publisher     *Publisher
	publisherOnce sync.Once
	publisherMu   sync.RWMutex
)

// Publisher wraps the shared events publisher for GST events
type Publisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// InitPublisher initializes the singleton NATS publisher
func InitPublisher(natsURL string, logger *logrus.Logger) error {
	var initErr error
	publisherOnce.Do(func() {
		if natsURL == "" {
			logger.Warn("NATS_URL not set, event publishing disabled")
			return
		}

		config := events.DefaultPublisherConfig(natsURL)
		config.Name = "gst-service"

		pub, err := events.NewPublisher(config, logger)
		if err != nil {
			initErr = err
			return
		}

		ctx := context.Background()
		if err := pub.EnsureStream(ctx, events.StreamTax, []string{"tax.>"}); err != nil {
			logger.WithError(err).Warn("Failed to ensure TAX_EVENTS stream")
		}

		publisherMu.Lock()
		publisher = &Publisher{
			publisher: pub,
			logger:    logger.WithField("component", "events.publisher"),
		}
		publisherMu.Unlock()

		logger.Info("NATS events publisher initialized for gst-service")
	})
	return initErr
}

// GetPublisher returns the singleton publisher instance
func GetPublisher() *Publisher {
	publisherMu.RLock()
	defer publisherMu.RUnlock()
	return publisher
}

// PublishTaxCalculated publishes a tax calculated event
func (p *Publisher) PublishTaxCalculated(ctx context.Context, tenantID, calculationID, orderID, customerID string, taxableAmount, taxAmount decimal.Decimal, currency string) error {
	event := events.NewTaxEvent(events.TaxCalculated, tenantID)
	event.CalculationID = calculationID
	event.OrderID = orderID
	event.CustomerID = customerID
	event.TaxableAmount = taxableAmount.InexactFloat64()
	event.TaxAmount = taxAmount.InexactFloat64()
	event.Currency = currency

	return p.publisher.Publish(ctx, event)
}

// PublishCategoryCreated publishes a rate created event for a new HSN/SAC category
func (p *Publisher) PublishCategoryCreated(ctx context.Context, category *models.ProductTaxCategory, actorID, actorName string) error {
	event := events.NewTaxEvent(events.TaxRateCreated, category.TenantID)
	event.TaxRateID = category.ID.String()
	event.TaxRate = category.EffectiveSlab().InexactFloat64()
	event.ActorID = actorID
	event.ActorName = actorName

	return p.publisher.Publish(ctx, event)
}

// PublishCategoryUpdated publishes a rate updated event for a changed HSN/SAC category
func (p *Publisher) PublishCategoryUpdated(ctx context.Context, category *models.ProductTaxCategory, actorID, actorName string) error {
	event := events.NewTaxEvent(events.TaxRateUpdated, category.TenantID)
	event.TaxRateID = category.ID.String()
	event.TaxRate = category.EffectiveSlab().InexactFloat64()
	event.ActorID = actorID
	event.ActorName = actorName

	return p.publisher.Publish(ctx, event)
}

// IsConnected returns true if connected to NATS
func (p *Publisher) IsConnected() bool {
	return p != nil && p.publisher != nil && p.publisher.IsConnected()
}

// Close closes the publisher connection
func (p *Publisher) Close() {
	if p != nil && p.publisher != nil {
		p.publisher.Close()
	}
}

// Deferred resolves the singleton publisher on each call, so it can be
// handed to services before InitPublisher has connected. Events are dropped
// while no publisher is available.
type Deferred struct{}

func (Deferred) PublishTaxCalculated(ctx context.Context, tenantID, calculationID, orderID, customerID string, taxableAmount, taxAmount decimal.Decimal, currency string) error {
	p := GetPublisher()
	if p == nil {
		return nil
	}
	return p.PublishTaxCalculated(ctx, tenantID, calculationID, orderID, customerID, taxableAmount, taxAmount, currency)
}

func (Deferred) PublishCategoryCreated(ctx context.Context, category *models.ProductTaxCategory, actorID, actorName string) error {
	p := GetPublisher()
	if p == nil {
		return nil
	}
	return p.PublishCategoryCreated(ctx, category, actorID, actorName)
}

func (Deferred) PublishCategoryUpdated(ctx context.Context, category *models.ProductTaxCategory, actorID, actorName string) error {
	p := GetPublisher()
	if p == nil {
		return nil
	}
	return p.PublishCategoryUpdated(ctx, category, actorID, actorName)
}
