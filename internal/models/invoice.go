package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"gst-service/internal/gst"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusIssued    InvoiceStatus = "ISSUED"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// Invoice is an issued tax invoice with its computed GST
type Invoice struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID      string        `json:"tenantId" gorm:"type:varchar(255);not null;uniqueIndex:idx_invoice_number,priority:1;index:idx_invoice_period,priority:1"`
	InvoiceNumber string        `json:"invoiceNumber" gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_number,priority:2"`
	InvoiceDate   time.Time     `json:"invoiceDate" gorm:"not null;index:idx_invoice_period,priority:2"`
	Status        InvoiceStatus `json:"status" gorm:"type:varchar(20);not null;default:'ISSUED'"`
	Currency      string        `json:"currency" gorm:"type:varchar(3);default:'INR'"`

	// Buyer
	CustomerID      *uuid.UUID `json:"customerId" gorm:"type:uuid"`
	CustomerName    string     `json:"customerName" gorm:"type:varchar(255)"`
	CustomerGSTIN   string     `json:"customerGstin" gorm:"type:varchar(15)"`
	BuyerState      string     `json:"buyerState" gorm:"type:varchar(2)"`
	BuyerRegistered bool       `json:"buyerRegistered" gorm:"default:false"`
	BuyerIsSEZ      bool       `json:"buyerIsSez" gorm:"default:false"`
	IsExport        bool       `json:"isExport" gorm:"default:false"`

	// Supplier, copied from the tenant profile at issue time
	SupplierGSTIN      string `json:"supplierGstin" gorm:"type:varchar(15)"`
	SupplierState      string `json:"supplierState" gorm:"type:varchar(2)"`
	SupplierRegistered bool   `json:"supplierRegistered" gorm:"default:false"`

	// Computed tax
	PlaceOfSupply   string          `json:"placeOfSupply" gorm:"type:varchar(20)"`
	IsIntraState    bool            `json:"isIntraState"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:decimal(14,2);not null"`
	Discount        decimal.Decimal `json:"discount" gorm:"type:decimal(14,2);default:0"`
	TaxableAmount   decimal.Decimal `json:"taxableAmount" gorm:"type:decimal(14,2);not null"`
	CGST            decimal.Decimal `json:"cgst" gorm:"column:cgst;type:decimal(14,2);default:0"`
	SGST            decimal.Decimal `json:"sgst" gorm:"column:sgst;type:decimal(14,2);default:0"`
	IGST            decimal.Decimal `json:"igst" gorm:"column:igst;type:decimal(14,2);default:0"`
	Cess            decimal.Decimal `json:"cess" gorm:"type:decimal(14,2);default:0"`
	TDS             decimal.Decimal `json:"tds" gorm:"column:tds;type:decimal(14,2);default:0"`
	TotalTax        decimal.Decimal `json:"totalTax" gorm:"type:decimal(14,2);not null"`
	GrandTotal      decimal.Decimal `json:"grandTotal" gorm:"type:decimal(14,2);not null"`
	ComplianceFlags pq.StringArray  `json:"complianceFlags" gorm:"type:text[]"`
	GSTR1Category   gst.Category    `json:"gstr1Category" gorm:"column:gstr1_category;type:varchar(10);index"`

	CancelledAt  *time.Time `json:"cancelledAt"`
	CancelReason string     `json:"cancelReason,omitempty" gorm:"type:text"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	// Relationships
	Lines []InvoiceLine `json:"lines,omitempty" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// InvoiceLine is one line of an invoice with its tax breakdown
type InvoiceLine struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	InvoiceID   uuid.UUID       `json:"invoiceId" gorm:"type:uuid;not null;index"`
	LineNumber  int             `json:"lineNumber" gorm:"not null"`
	Description string          `json:"description" gorm:"type:varchar(500)"`
	HSNCode     string          `json:"hsnCode" gorm:"type:varchar(10)"`
	Quantity    decimal.Decimal `json:"quantity" gorm:"type:decimal(14,3);default:0"`
	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"type:decimal(14,2);default:0"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	CGSTRate    decimal.Decimal `json:"cgstRate" gorm:"column:cgst_rate;type:decimal(6,3);default:0"`
	SGSTRate    decimal.Decimal `json:"sgstRate" gorm:"column:sgst_rate;type:decimal(6,3);default:0"`
	IGSTRate    decimal.Decimal `json:"igstRate" gorm:"column:igst_rate;type:decimal(5,2);default:0"`
	CGST        decimal.Decimal `json:"cgst" gorm:"column:cgst;type:decimal(14,2);default:0"`
	SGST        decimal.Decimal `json:"sgst" gorm:"column:sgst;type:decimal(14,2);default:0"`
	IGST        decimal.Decimal `json:"igst" gorm:"column:igst;type:decimal(14,2);default:0"`
	CessRate    decimal.Decimal `json:"cessRate" gorm:"type:decimal(5,2);default:0"`
	Cess        decimal.Decimal `json:"cess" gorm:"type:decimal(14,2);default:0"`
	TDS         decimal.Decimal `json:"tds" gorm:"column:tds;type:decimal(14,2);default:0"`
	TotalTax    decimal.Decimal `json:"totalTax" gorm:"type:decimal(14,2);not null"`
}

// IsCancelled reports whether the invoice was cancelled
func (inv *Invoice) IsCancelled() bool {
	return inv.Status == InvoiceStatusCancelled
}

// Facts returns the attributes that decide the invoice's GSTR-1 bucket
func (inv *Invoice) Facts() gst.InvoiceFacts {
	return gst.InvoiceFacts{
		CustomerGSTIN: inv.CustomerGSTIN,
		IsExport:      inv.IsExport,
		IsSEZ:         inv.BuyerIsSEZ,
		IsCancelled:   inv.IsCancelled(),
	}
}

// ApplySummary copies computed invoice totals onto the invoice
func (inv *Invoice) ApplySummary(s gst.InvoiceTaxSummary) {
	inv.PlaceOfSupply = s.PlaceOfSupply
	inv.IsIntraState = s.IsIntraState
	inv.Subtotal = s.Subtotal
	inv.Discount = s.Discount
	inv.TaxableAmount = s.TaxableAmount
	inv.CGST = s.CGST
	inv.SGST = s.SGST
	inv.IGST = s.IGST
	inv.Cess = s.Cess
	inv.TDS = s.TDS
	inv.TotalTax = s.TotalTax
	inv.GrandTotal = s.GrandTotal
	inv.ComplianceFlags = pq.StringArray(s.Flags.Strings())
}

// Summary rebuilds the invoice tax summary from the stored columns
func (inv *Invoice) Summary() gst.InvoiceTaxSummary {
	flags := make([]gst.Flag, len(inv.ComplianceFlags))
	for i, f := range inv.ComplianceFlags {
		flags[i] = gst.Flag(f)
	}
	return gst.InvoiceTaxSummary{
		Subtotal:      inv.Subtotal,
		Discount:      inv.Discount,
		TaxableAmount: inv.TaxableAmount,
		CGST:          inv.CGST,
		SGST:          inv.SGST,
		IGST:          inv.IGST,
		Cess:          inv.Cess,
		TDS:           inv.TDS,
		TotalTax:      inv.TotalTax,
		GrandTotal:    inv.GrandTotal,
		PlaceOfSupply: inv.PlaceOfSupply,
		IsIntraState:  inv.IsIntraState,
		Flags:         gst.NewFlags(flags...),
	}
}

// FilingInvoice converts the invoice into its GSTR-1 report form
func (inv *Invoice) FilingInvoice() gst.FilingInvoice {
	lines := make([]gst.FilingLine, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, gst.FilingLine{
			HSNCode:       l.HSNCode,
			Quantity:      l.Quantity,
			TaxableAmount: l.Amount,
			CGST:          l.CGST,
			SGST:          l.SGST,
			IGST:          l.IGST,
			Cess:          l.Cess,
		})
	}
	return gst.FilingInvoice{
		InvoiceFacts:  inv.Facts(),
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		Summary:       inv.Summary(),
		Lines:         lines,
	}
}

// NewInvoiceLine builds a persisted line from its input and computed breakdown
func NewInvoiceLine(number int, description string, item gst.LineItem, b gst.TaxBreakdown) InvoiceLine {
	return InvoiceLine{
		LineNumber:  number,
		Description: description,
		HSNCode:     item.HSNCode,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Amount:      b.TaxableAmount,
		CGSTRate:    b.CGSTRate,
		SGSTRate:    b.SGSTRate,
		IGSTRate:    b.IGSTRate,
		CGST:        b.CGST,
		SGST:        b.SGST,
		IGST:        b.IGST,
		CessRate:    b.CessRate,
		Cess:        b.Cess,
		TDS:         b.TDS,
		TotalTax:    b.TotalTax,
	}
}
