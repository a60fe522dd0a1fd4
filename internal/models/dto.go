package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gst-service/internal/gst"
)

// TaxContextInput describes the parties of an invoice. Supplier fields left
// empty are filled from the tenant tax profile.
type TaxContextInput struct {
	SupplierState      string `json:"supplierState"`
	SupplierGSTIN      string `json:"supplierGstin"`
	SupplierRegistered *bool  `json:"supplierRegistered"`
	BuyerState         string `json:"buyerState"`
	BuyerGSTIN         string `json:"buyerGstin"`
	BuyerRegistered    bool   `json:"buyerRegistered"`
	BuyerIsSEZ         bool   `json:"buyerIsSez"`
	IsExport           bool   `json:"isExport"`
}

// LineItemInput represents a line item for tax calculation
type LineItemInput struct {
	Description string           `json:"description"`
	CategoryID  *uuid.UUID       `json:"categoryId"`
	HSNCode     string           `json:"hsnCode"` // Harmonized System Nomenclature (goods)
	SACCode     string           `json:"sacCode"` // Services Accounting Code
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unitPrice"`
	Discount    decimal.Decimal  `json:"discount"`
	Amount      *decimal.Decimal `json:"amount"`  // taxable amount; quantity * unitPrice - discount when omitted
	TaxRate     *decimal.Decimal `json:"taxRate"` // explicit GST rate, overrides the HSN slab
}

// Code returns the HSN code, or the SAC code for services
func (l LineItemInput) Code() string {
	if l.HSNCode != "" {
		return l.HSNCode
	}
	return l.SACCode
}

// TaxableAmount is the explicit amount, or quantity * unit price less the line discount
func (l LineItemInput) TaxableAmount() decimal.Decimal {
	if l.Amount != nil {
		return *l.Amount
	}
	return l.Quantity.Mul(l.UnitPrice).Sub(l.Discount).Round(2)
}

// CalculateLineRequest represents a request to calculate tax for one line
type CalculateLineRequest struct {
	Context TaxContextInput `json:"context"`
	Line    LineItemInput   `json:"line" binding:"required"`
}

// CalculateTaxRequest represents a request to calculate tax for a whole invoice
type CalculateTaxRequest struct {
	Context    TaxContextInput `json:"context"`
	Lines      []LineItemInput `json:"lines" binding:"required,min=1"`
	Discount   decimal.Decimal `json:"discount"`
	OrderID    string          `json:"orderId"`
	CustomerID string          `json:"customerId"`
	Currency   string          `json:"currency"`
}

// CalculateTaxResponse represents the response from tax calculation
type CalculateTaxResponse struct {
	CalculationID string                `json:"calculationId"`
	Lines         []gst.TaxBreakdown    `json:"lines"`
	Summary       gst.InvoiceTaxSummary `json:"summary"`
	Currency      string                `json:"currency"`
}

// CreateInvoiceRequest represents a request to issue an invoice
type CreateInvoiceRequest struct {
	InvoiceNumber string          `json:"invoiceNumber"` // generated from the profile prefix when empty
	InvoiceDate   *time.Time      `json:"invoiceDate"`
	CustomerID    *uuid.UUID      `json:"customerId"`
	CustomerName  string          `json:"customerName"`
	Context       TaxContextInput `json:"context"`
	Lines         []LineItemInput `json:"lines" binding:"required,min=1"`
	Discount      decimal.Decimal `json:"discount"`
	Currency      string          `json:"currency"`
}

// CancelInvoiceRequest represents a request to cancel an invoice
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	From   time.Time
	To     time.Time
	Status InvoiceStatus
	Limit  int
	Offset int
}

// ValidateGSTINRequest represents a request to validate a GSTIN
type ValidateGSTINRequest struct {
	GSTIN string `json:"gstin" binding:"required"`
}

// ValidateGSTINResponse represents the response from GSTIN validation
type ValidateGSTINResponse struct {
	GSTIN     string `json:"gstin"`
	IsValid   bool   `json:"isValid"`
	StateCode string `json:"stateCode,omitempty"`
	StateName string `json:"stateName,omitempty"`
}

// UpdateProfileRequest represents a request to set the tenant tax profile
type UpdateProfileRequest struct {
	LegalName           string `json:"legalName"`
	GSTIN               string `json:"gstin"`
	StateCode           string `json:"stateCode"`
	IsRegistered        *bool  `json:"isRegistered"`
	IsCompositionScheme bool   `json:"isCompositionScheme"`
	InvoicePrefix       string `json:"invoicePrefix"`
	Currency            string `json:"currency"`
}

// CategoryRequest represents a request to create or update an HSN/SAC category
type CategoryRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	HSNCode     string          `json:"hsnCode"`
	SACCode     string          `json:"sacCode"`
	GSTSlab     decimal.Decimal `json:"gstSlab"`
	CessRate    decimal.Decimal `json:"cessRate"`
	IsTaxExempt bool            `json:"isTaxExempt"`
	IsNilRated  bool            `json:"isNilRated"`
}

// GSTR1Request identifies a filing period
type GSTR1Request struct {
	From string `json:"from" form:"from" binding:"required"` // YYYY-MM-DD
	To   string `json:"to" form:"to" binding:"required"`     // YYYY-MM-DD
}

// FileGSTR1Request marks a saved GSTR-1 as filed
type FileGSTR1Request struct {
	ARN     string `json:"arn"`
	FiledBy string `json:"filedBy"`
}
