package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gst-service/internal/models"
)

const (
	tenantID = "tenant-1"
	mhGSTIN  = "27AAPFU0939F1ZV"
	kaGSTIN  = "29AABCU9603R1ZM"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func decEq(s string) interface{} {
	want := dec(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func testLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

// mhProfile is a registered Maharashtra supplier
func mhProfile() *models.TenantTaxProfile {
	return &models.TenantTaxProfile{
		TenantID:       tenantID,
		LegalName:      "Acme Traders Pvt Ltd",
		GSTIN:          mhGSTIN,
		StateCode:      "MH",
		IsRegistered:   true,
		InvoicePrefix:  "ACME",
		NextInvoiceSeq: 1,
		Currency:       "INR",
	}
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

var _ EventPublisher = (*MockPublisher)(nil)

func (m *MockPublisher) PublishTaxCalculated(ctx context.Context, tenantID, calculationID, orderID, customerID string, taxableAmount, taxAmount decimal.Decimal, currency string) error {
	args := m.Called(ctx, tenantID, calculationID, orderID, customerID, taxableAmount, taxAmount, currency)
	return args.Error(0)
}

func (m *MockPublisher) PublishCategoryCreated(ctx context.Context, category *models.ProductTaxCategory, actorID, actorName string) error {
	args := m.Called(ctx, category, actorID, actorName)
	return args.Error(0)
}

func (m *MockPublisher) PublishCategoryUpdated(ctx context.Context, category *models.ProductTaxCategory, actorID, actorName string) error {
	args := m.Called(ctx, category, actorID, actorName)
	return args.Error(0)
}
