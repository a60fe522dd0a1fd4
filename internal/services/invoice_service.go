package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gst-service/internal/gst"
	"gst-service/internal/models"
	"gst-service/internal/repository"
)

// InvoiceService issues and cancels tax invoices
type InvoiceService struct {
	repo       repository.TaxRepositoryInterface
	calculator *TaxCalculator
	logger     *logrus.Entry
	now        func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(repo repository.TaxRepositoryInterface, calculator *TaxCalculator, logger *logrus.Logger) *InvoiceService {
	return &InvoiceService{
		repo:       repo,
		calculator: calculator,
		logger:     logger.WithField("component", "services.invoice"),
		now:        time.Now,
	}
}

// CreateInvoice computes the tax for the request and stores the invoice.
// Without an explicit number the invoice is numbered from the tenant profile.
func (s *InvoiceService) CreateInvoice(ctx context.Context, tenantID string, req models.CreateInvoiceRequest) (*models.Invoice, error) {
	comp, err := s.calculator.Compute(ctx, tenantID, req.Context, req.Lines, req.Discount)
	if err != nil {
		return nil, err
	}

	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" && comp.Profile == nil {
		return nil, invalidf("invoiceNumber is required until a tax profile is configured")
	}

	invoiceDate := s.now()
	if req.InvoiceDate != nil {
		invoiceDate = *req.InvoiceDate
	}
	currency := req.Currency
	if currency == "" {
		currency = profileCurrency(comp.Profile)
	}

	taxCtx := comp.Context
	invoice := &models.Invoice{
		ID:                 uuid.New(),
		TenantID:           tenantID,
		InvoiceNumber:      number,
		InvoiceDate:        invoiceDate,
		Status:             models.InvoiceStatusIssued,
		Currency:           currency,
		CustomerID:         req.CustomerID,
		CustomerName:       req.CustomerName,
		CustomerGSTIN:      taxCtx.BuyerGSTIN,
		BuyerState:         string(taxCtx.BuyerState),
		BuyerRegistered:    taxCtx.BuyerRegistered,
		BuyerIsSEZ:         taxCtx.BuyerIsSEZ,
		IsExport:           taxCtx.IsExport,
		SupplierGSTIN:      taxCtx.SupplierGSTIN,
		SupplierState:      string(taxCtx.SupplierState),
		SupplierRegistered: taxCtx.SupplierRegistered,
	}
	invoice.ApplySummary(comp.Summary)
	invoice.GSTR1Category = gst.CategorizeForGSTR1(invoice.Facts())

	invoice.Lines = make([]models.InvoiceLine, len(comp.Lines))
	for i := range comp.Lines {
		invoice.Lines[i] = models.NewInvoiceLine(i+1, req.Lines[i].Description, comp.Items[i], comp.Lines[i])
		invoice.Lines[i].ID = uuid.New()
		invoice.Lines[i].InvoiceID = invoice.ID
	}

	if err := s.repo.CreateInvoice(ctx, invoice); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, invalidf("invoice number %q is already in use", invoice.InvoiceNumber)
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":      tenantID,
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.InvoiceNumber,
		"gstr1_category": invoice.GSTR1Category,
		"grand_total":    invoice.GrandTotal.String(),
	}).Info("Invoice issued")

	return invoice, nil
}

// GetInvoice gets an invoice with its lines
func (s *InvoiceService) GetInvoice(ctx context.Context, tenantID string, invoiceID uuid.UUID) (*models.Invoice, error) {
	return s.repo.GetInvoice(ctx, tenantID, invoiceID)
}

// ListInvoices lists a page of invoices and the total count
func (s *InvoiceService) ListInvoices(ctx context.Context, tenantID string, filter models.InvoiceFilter) ([]models.Invoice, int64, error) {
	return s.repo.ListInvoices(ctx, tenantID, filter)
}

// CancelInvoice cancels an issued invoice. The invoice moves to the other
// GSTR-1 bucket and stays on record.
func (s *InvoiceService) CancelInvoice(ctx context.Context, tenantID string, invoiceID uuid.UUID, reason string) (*models.Invoice, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalidf("a cancellation reason is required")
	}

	invoice, err := s.repo.GetInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.IsCancelled() {
		return nil, ErrAlreadyCancelled
	}

	facts := invoice.Facts()
	facts.IsCancelled = true
	invoice.GSTR1Category = gst.CategorizeForGSTR1(facts)

	if err := s.repo.CancelInvoice(ctx, invoice, reason); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyCancelled
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":      tenantID,
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.InvoiceNumber,
	}).Info("Invoice cancelled")

	return invoice, nil
}
