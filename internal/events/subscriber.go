package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"gst-service/internal/gst"
	"gst-service/internal/models"
	"gst-service/internal/repository"
)

// TenantCreatedEvent represents the event published when a tenant is created
type TenantCreatedEvent struct {
	EventType     string    `json:"event_type"`
	TenantID      string    `json:"tenant_id"`
	SessionID     string    `json:"session_id"`
	Product       string    `json:"product"`
	BusinessName  string    `json:"business_name"`
	Slug          string    `json:"slug"`
	Email         string    `json:"email"`
	Country       string    `json:"country,omitempty"`
	StateProvince string    `json:"state_province,omitempty"`
	City          string    `json:"city,omitempty"`
	PostalCode    string    `json:"postal_code,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// ProfileStore is the part of the repository the subscriber writes to
type ProfileStore interface {
	CreateProfileIfMissing(ctx context.Context, profile *models.TenantTaxProfile) (bool, error)
}

var _ ProfileStore = (*repository.TaxRepository)(nil)

// Subscriber handles NATS event subscriptions for the GST service
type Subscriber struct {
	conn   *nats.Conn
	store  ProfileStore
	logger *logrus.Entry
}

// NewSubscriber creates a new event subscriber
func NewSubscriber(natsURL string, store ProfileStore, logger *logrus.Logger) (*Subscriber, error) {
	if natsURL == "" {
		return nil, fmt.Errorf("NATS_URL not set")
	}

	conn, err := nats.Connect(natsURL,
		nats.Name("gst-service-subscriber"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Subscriber{
		conn:   conn,
		store:  store,
		logger: logger.WithField("component", "events.subscriber"),
	}, nil
}

// Start begins listening for events
func (s *Subscriber) Start() error {
	_, err := s.conn.Subscribe("tenant.created", func(msg *nats.Msg) {
		s.handleTenantCreated(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to tenant.created: %w", err)
	}

	s.logger.Info("Subscribed to tenant.created events for tax profile provisioning")
	return nil
}

func (s *Subscriber) handleTenantCreated(data []byte) {
	var event TenantCreatedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.WithError(err).Error("Failed to unmarshal tenant.created event")
		return
	}

	log := s.logger.WithFields(logrus.Fields{
		"tenant_id": event.TenantID,
		"country":   event.Country,
		"state":     event.StateProvince,
	})

	profile, ok := profileForTenant(event)
	if !ok {
		log.Debug("Tenant is not located in a GST state, skipping tax profile")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created, err := s.store.CreateProfileIfMissing(ctx, profile)
	if err != nil {
		log.WithError(err).Error("Failed to provision tax profile for tenant")
		return
	}
	if created {
		log.WithField("state_code", profile.StateCode).Info("Provisioned tax profile")
	}
}

// profileForTenant builds an unregistered supplier profile for tenants based
// in India. The tenant adds a GSTIN later through the profile API.
func profileForTenant(event TenantCreatedEvent) (*models.TenantTaxProfile, bool) {
	if event.TenantID == "" || !isIndia(event.Country) {
		return nil, false
	}
	state, ok := gst.LookupState(event.StateProvince)
	if !ok {
		return nil, false
	}
	return &models.TenantTaxProfile{
		ID:             uuid.New(),
		TenantID:       event.TenantID,
		LegalName:      event.BusinessName,
		StateCode:      string(state),
		IsRegistered:   false,
		InvoicePrefix:  "INV",
		NextInvoiceSeq: 1,
		Currency:       "INR",
	}, true
}

func isIndia(country string) bool {
	switch strings.ToLower(strings.TrimSpace(country)) {
	case "in", "ind", "india", "bharat":
		return true
	}
	return false
}

// Close closes the subscriber connection
func (s *Subscriber) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}
