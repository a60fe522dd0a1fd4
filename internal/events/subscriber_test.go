package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gst-service/internal/models"
	"gst-service/internal/repository/mocks"
)

func newTestSubscriber(store ProfileStore) *Subscriber {
	return &Subscriber{store: store, logger: logrus.NewEntry(logrus.New())}
}

func TestProfileForTenant(t *testing.T) {
	tests := []struct {
		name  string
		event TenantCreatedEvent
		state string
		ok    bool
	}{
		{"state name", TenantCreatedEvent{TenantID: "t1", Country: "India", StateProvince: "Maharashtra"}, "MH", true},
		{"iso country and gst code", TenantCreatedEvent{TenantID: "t1", Country: "IN", StateProvince: "29"}, "KA", true},
		{"abbreviation", TenantCreatedEvent{TenantID: "t1", Country: "in", StateProvince: "dl"}, "DL", true},
		{"foreign tenant", TenantCreatedEvent{TenantID: "t1", Country: "US", StateProvince: "CA"}, "", false},
		{"unknown state", TenantCreatedEvent{TenantID: "t1", Country: "IN", StateProvince: "Atlantis"}, "", false},
		{"missing tenant", TenantCreatedEvent{Country: "IN", StateProvince: "MH"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, ok := profileForTenant(tt.event)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Nil(t, profile)
				return
			}
			assert.Equal(t, tt.state, profile.StateCode)
			assert.Equal(t, "INV", profile.InvoicePrefix)
			assert.Equal(t, int64(1), profile.NextInvoiceSeq)
			assert.Equal(t, "INR", profile.Currency)
			assert.False(t, profile.IsRegistered)
		})
	}
}

func TestHandleTenantCreated_ProvisionsProfile(t *testing.T) {
	store := new(mocks.MockTaxRepository)
	store.On("CreateProfileIfMissing", mock.Anything, mock.MatchedBy(func(p *models.TenantTaxProfile) bool {
		return p.TenantID == "tenant-1" && p.StateCode == "KA" && p.LegalName == "Acme Traders"
	})).Return(true, nil)

	data, err := json.Marshal(TenantCreatedEvent{
		EventType:     "tenant.created",
		TenantID:      "tenant-1",
		BusinessName:  "Acme Traders",
		Country:       "India",
		StateProvince: "Karnataka",
	})
	require.NoError(t, err)

	newTestSubscriber(store).handleTenantCreated(data)

	store.AssertExpectations(t)
}

func TestHandleTenantCreated_SkipsForeignTenant(t *testing.T) {
	store := new(mocks.MockTaxRepository)

	data, _ := json.Marshal(TenantCreatedEvent{TenantID: "tenant-2", Country: "GB", StateProvince: "London"})
	newTestSubscriber(store).handleTenantCreated(data)

	store.AssertNotCalled(t, "CreateProfileIfMissing", mock.Anything, mock.Anything)
}

func TestHandleTenantCreated_StoreErrorAndBadPayload(t *testing.T) {
	store := new(mocks.MockTaxRepository)
	store.On("CreateProfileIfMissing", mock.Anything, mock.Anything).Return(false, errors.New("db down"))
	s := newTestSubscriber(store)

	data, _ := json.Marshal(TenantCreatedEvent{TenantID: "tenant-3", Country: "IN", StateProvince: "MH"})
	assert.NotPanics(t, func() { s.handleTenantCreated(data) })
	assert.NotPanics(t, func() { s.handleTenantCreated([]byte("{not json")) })

	store.AssertNumberOfCalls(t, "CreateProfileIfMissing", 1)
}

func TestNewSubscriber_RequiresURL(t *testing.T) {
	_, err := NewSubscriber("", new(mocks.MockTaxRepository), logrus.New())
	assert.Error(t, err)
}

func TestDeferred_DropsWithoutPublisher(t *testing.T) {
	var d Deferred
	assert.NoError(t, d.PublishCategoryCreated(context.Background(), &models.ProductTaxCategory{}, "", ""))
	assert.False(t, GetPublisher().IsConnected())
}
