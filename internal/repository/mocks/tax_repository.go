// Package mocks provides testify mocks of the repository layer
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"gst-service/internal/models"
	"gst-service/internal/repository"
)

// MockTaxRepository is a mock implementation of repository.TaxRepositoryInterface
type MockTaxRepository struct {
	mock.Mock
}

var _ repository.TaxRepositoryInterface = (*MockTaxRepository)(nil)

func (m *MockTaxRepository) GetProfile(ctx context.Context, tenantID string) (*models.TenantTaxProfile, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TenantTaxProfile), args.Error(1)
}

func (m *MockTaxRepository) SaveProfile(ctx context.Context, profile *models.TenantTaxProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockTaxRepository) CreateProfileIfMissing(ctx context.Context, profile *models.TenantTaxProfile) (bool, error) {
	args := m.Called(ctx, profile)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaxRepository) ListProductCategories(ctx context.Context, tenantID string) ([]models.ProductTaxCategory, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProductTaxCategory), args.Error(1)
}

func (m *MockTaxRepository) GetProductCategory(ctx context.Context, tenantID string, categoryID uuid.UUID) (*models.ProductTaxCategory, error) {
	args := m.Called(ctx, tenantID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductTaxCategory), args.Error(1)
}

func (m *MockTaxRepository) CreateProductCategory(ctx context.Context, category *models.ProductTaxCategory) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockTaxRepository) UpdateProductCategory(ctx context.Context, category *models.ProductTaxCategory) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockTaxRepository) DeleteProductCategory(ctx context.Context, tenantID string, categoryID uuid.UUID) error {
	args := m.Called(ctx, tenantID, categoryID)
	return args.Error(0)
}

func (m *MockTaxRepository) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockTaxRepository) GetInvoice(ctx context.Context, tenantID string, invoiceID uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockTaxRepository) ListInvoices(ctx context.Context, tenantID string, filter models.InvoiceFilter) ([]models.Invoice, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockTaxRepository) ListInvoicesForPeriod(ctx context.Context, tenantID string, from, to time.Time) ([]models.Invoice, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *MockTaxRepository) CancelInvoice(ctx context.Context, invoice *models.Invoice, reason string) error {
	args := m.Called(ctx, invoice, reason)
	return args.Error(0)
}

func (m *MockTaxRepository) SaveFiling(ctx context.Context, filing *models.GSTR1Filing) error {
	args := m.Called(ctx, filing)
	return args.Error(0)
}

func (m *MockTaxRepository) GetFiling(ctx context.Context, tenantID string, filingID uuid.UUID) (*models.GSTR1Filing, error) {
	args := m.Called(ctx, tenantID, filingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GSTR1Filing), args.Error(1)
}

func (m *MockTaxRepository) ListFilings(ctx context.Context, tenantID string) ([]models.GSTR1Filing, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GSTR1Filing), args.Error(1)
}

func (m *MockTaxRepository) MarkFiled(ctx context.Context, filing *models.GSTR1Filing) error {
	args := m.Called(ctx, filing)
	return args.Error(0)
}
