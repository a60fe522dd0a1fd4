package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"gst-service/internal/gst"
	"gst-service/internal/models"
	"gst-service/internal/repository"
)

const defaultCurrency = "INR"

// TaxCalculator resolves tenant defaults and rate overrides around the GST engine
type TaxCalculator struct {
	repo      repository.TaxRepositoryInterface
	publisher EventPublisher
	logger    *logrus.Entry
}

// NewTaxCalculator creates a new tax calculator
func NewTaxCalculator(repo repository.TaxRepositoryInterface, publisher EventPublisher, logger *logrus.Logger) *TaxCalculator {
	return &TaxCalculator{
		repo:      repo,
		publisher: publisherOrNoop(publisher),
		logger:    logger.WithField("component", "services.tax_calculator"),
	}
}

// Computation is the engine output for a set of lines plus the inputs it was computed from
type Computation struct {
	Context gst.TaxContext
	Profile *models.TenantTaxProfile // nil when the tenant has no profile yet
	Items   []gst.LineItem
	Lines   []gst.TaxBreakdown
	Summary gst.InvoiceTaxSummary
}

// Compute validates the lines and runs them through the engine with the
// tenant's rate table
func (c *TaxCalculator) Compute(ctx context.Context, tenantID string, in models.TaxContextInput, lines []models.LineItemInput, discount decimal.Decimal) (*Computation, error) {
	if err := ValidateLineInputs(lines); err != nil {
		return nil, err
	}

	profile, err := c.profile(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	taxCtx, err := ResolveContext(in, profile)
	if err != nil {
		return nil, err
	}

	categories, err := c.repo.ListProductCategories(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax categories: %w", err)
	}
	items, err := buildLineItems(lines, categories)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}
	if err := validateDiscount(discount, subtotal); err != nil {
		return nil, err
	}

	calc := gst.NewCalculator(RateTableFor(categories))
	breakdowns, summary := calc.ComputeInvoice(items, taxCtx, discount)

	return &Computation{
		Context: taxCtx,
		Profile: profile,
		Items:   items,
		Lines:   breakdowns,
		Summary: summary,
	}, nil
}

// CalculateLine computes the tax for a single line
func (c *TaxCalculator) CalculateLine(ctx context.Context, tenantID string, req models.CalculateLineRequest) (*gst.TaxBreakdown, error) {
	comp, err := c.Compute(ctx, tenantID, req.Context, []models.LineItemInput{req.Line}, decimal.Zero)
	if err != nil {
		return nil, err
	}
	return &comp.Lines[0], nil
}

// CalculateTax computes every line plus the invoice summary without
// persisting anything, and announces the result on the event bus
func (c *TaxCalculator) CalculateTax(ctx context.Context, tenantID string, req models.CalculateTaxRequest) (*models.CalculateTaxResponse, error) {
	comp, err := c.Compute(ctx, tenantID, req.Context, req.Lines, req.Discount)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = profileCurrency(comp.Profile)
	}
	response := &models.CalculateTaxResponse{
		CalculationID: uuid.New().String(),
		Lines:         comp.Lines,
		Summary:       comp.Summary,
		Currency:      currency,
	}

	if err := c.publisher.PublishTaxCalculated(ctx, tenantID, response.CalculationID, req.OrderID, req.CustomerID,
		comp.Summary.TaxableAmount, comp.Summary.TotalTax, currency); err != nil {
		c.logger.WithError(err).WithField("tenant_id", tenantID).Warn("Failed to publish tax.calculated event")
	}

	return response, nil
}

func (c *TaxCalculator) profile(ctx context.Context, tenantID string) (*models.TenantTaxProfile, error) {
	profile, err := c.repo.GetProfile(ctx, tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tax profile: %w", err)
	}
	return profile, nil
}

// ResolveContext builds the engine context from request fields, falling back
// to the tenant profile for the supplier side. GSTINs and state codes are
// validated here so the engine only sees well-formed values.
func ResolveContext(in models.TaxContextInput, profile *models.TenantTaxProfile) (gst.TaxContext, error) {
	var taxCtx gst.TaxContext

	supplierGSTIN := strings.ToUpper(strings.TrimSpace(in.SupplierGSTIN))
	supplierState := in.SupplierState
	fromProfile := supplierGSTIN == "" && strings.TrimSpace(supplierState) == "" && profile != nil
	if fromProfile {
		supplier := profile.SupplierContext()
		supplierGSTIN = supplier.SupplierGSTIN
		supplierState = string(supplier.SupplierState)
		taxCtx.SupplierRegistered = supplier.SupplierRegistered
	}
	if supplierGSTIN != "" && !gst.ValidateGSTIN(supplierGSTIN) {
		return taxCtx, invalidf("supplier GSTIN %q is not valid", supplierGSTIN)
	}
	if supplierState == "" {
		supplierState = gst.StateFromGSTIN(supplierGSTIN)
	}

	switch {
	case in.SupplierRegistered != nil:
		taxCtx.SupplierRegistered = *in.SupplierRegistered
	case !fromProfile:
		taxCtx.SupplierRegistered = supplierGSTIN != ""
	}

	buyerGSTIN := strings.ToUpper(strings.TrimSpace(in.BuyerGSTIN))
	if buyerGSTIN != "" && !gst.ValidateGSTIN(buyerGSTIN) {
		return taxCtx, invalidf("buyer GSTIN %q is not valid", buyerGSTIN)
	}
	buyerState := in.BuyerState
	if buyerState == "" {
		buyerState = gst.StateFromGSTIN(buyerGSTIN)
	}

	var err error
	if taxCtx.SupplierState, err = parseState("supplier", supplierState); err != nil {
		return taxCtx, err
	}
	if taxCtx.BuyerState, err = parseState("buyer", buyerState); err != nil {
		return taxCtx, err
	}
	if taxCtx.SupplierState == "" {
		return taxCtx, invalidf("supplier state or GSTIN is required")
	}

	taxCtx.SupplierGSTIN = supplierGSTIN
	taxCtx.BuyerGSTIN = buyerGSTIN
	taxCtx.BuyerRegistered = in.BuyerRegistered
	taxCtx.BuyerIsSEZ = in.BuyerIsSEZ
	taxCtx.IsExport = in.IsExport
	return taxCtx, nil
}

func parseState(party, s string) (gst.StateCode, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	code, ok := gst.ParseStateCode(s)
	if !ok || !code.Known() {
		return "", invalidf("%s state %q is not a known GST state code", party, s)
	}
	return code, nil
}

// RateTableFor layers tenant and global categories over the compiled HSN
// rates. Later categories win, so tenant rows must follow global ones.
func RateTableFor(categories []models.ProductTaxCategory) *gst.RateTable {
	if len(categories) == 0 {
		return gst.DefaultRateTable()
	}
	overrides := make([]gst.RateOverride, 0, len(categories))
	for i := range categories {
		if categories[i].Code() == "" {
			continue
		}
		overrides = append(overrides, categories[i].RateOverride())
	}
	return gst.DefaultRateTable().WithOverrides(overrides)
}

// buildLineItems converts request lines into engine items. A line that names
// a category takes its code from the category when it has none of its own,
// and its rate from the category unless an explicit rate was given.
func buildLineItems(lines []models.LineItemInput, categories []models.ProductTaxCategory) ([]gst.LineItem, error) {
	byID := make(map[uuid.UUID]*models.ProductTaxCategory, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}

	items := make([]gst.LineItem, 0, len(lines))
	for i, line := range lines {
		item := gst.LineItem{
			Amount:    line.TaxableAmount(),
			TaxRate:   line.TaxRate,
			HSNCode:   normalizeCode(line.Code()),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}

		if line.CategoryID != nil && *line.CategoryID != uuid.Nil {
			category, ok := byID[*line.CategoryID]
			if !ok {
				return nil, invalidf("line %d: unknown tax category %s", i+1, *line.CategoryID)
			}
			if item.HSNCode == "" {
				item.HSNCode = normalizeCode(category.Code())
			}
			if item.TaxRate == nil {
				rate := category.EffectiveSlab()
				item.TaxRate = &rate
			}
		}

		items = append(items, item)
	}
	return items, nil
}

func profileCurrency(profile *models.TenantTaxProfile) string {
	if profile != nil && profile.Currency != "" {
		return profile.Currency
	}
	return defaultCurrency
}
