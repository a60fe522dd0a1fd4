package gst

import "github.com/shopspring/decimal"

// SummarizeInvoice folds line breakdowns into invoice totals. Component taxes
// are plain sums of the already-rounded line amounts; nothing is re-derived
// from the totals. The discount is an invoice-level reduction of the taxable
// amount and does not change the line taxes.
func SummarizeInvoice(lines []TaxBreakdown, ctx TaxContext, discount decimal.Decimal) InvoiceTaxSummary {
	place := ResolvePlace(ctx)
	s := InvoiceTaxSummary{
		Subtotal:      decimal.Zero,
		Discount:      discount,
		CGST:          decimal.Zero,
		SGST:          decimal.Zero,
		IGST:          decimal.Zero,
		Cess:          decimal.Zero,
		TDS:           decimal.Zero,
		PlaceOfSupply: place.PlaceOfSupply,
		IsIntraState:  place.IsIntraState,
		Flags:         NewFlags(),
	}

	for _, l := range lines {
		s.Subtotal = s.Subtotal.Add(l.TaxableAmount)
		s.CGST = s.CGST.Add(l.CGST)
		s.SGST = s.SGST.Add(l.SGST)
		s.IGST = s.IGST.Add(l.IGST)
		s.Cess = s.Cess.Add(l.Cess)
		s.TDS = s.TDS.Add(l.TDS)
		s.Flags = s.Flags.Union(l.Flags)
	}

	s.TaxableAmount = s.Subtotal.Sub(discount)
	s.TotalTax = s.CGST.Add(s.SGST).Add(s.IGST).Add(s.Cess).Add(s.TDS)
	s.GrandTotal = s.TaxableAmount.Add(s.TotalTax)
	return s
}

// ComputeInvoice computes every line with c and summarises them.
func (c *Calculator) ComputeInvoice(items []LineItem, ctx TaxContext, discount decimal.Decimal) ([]TaxBreakdown, InvoiceTaxSummary) {
	lines := make([]TaxBreakdown, 0, len(items))
	for _, item := range items {
		lines = append(lines, c.ComputeLine(item, ctx))
	}
	return lines, SummarizeInvoice(lines, ctx, discount)
}

// Category is a GSTR-1 reporting bucket.
type Category string

const (
	CategoryB2B    Category = "b2b"
	CategoryB2C    Category = "b2c"
	CategoryExport Category = "export"
	CategorySEZ    Category = "sez"
	CategoryOther  Category = "other"
)

// Categories lists the GSTR-1 buckets in report order.
var Categories = []Category{CategoryB2B, CategoryB2C, CategoryExport, CategorySEZ, CategoryOther}

// InvoiceFacts are the invoice attributes that decide its GSTR-1 bucket.
type InvoiceFacts struct {
	CustomerGSTIN string `json:"customerGstin,omitempty"`
	IsExport      bool   `json:"isExport"`
	IsSEZ         bool   `json:"isSez"`
	IsCancelled   bool   `json:"isCancelled"`
}

// CategorizeForGSTR1 assigns an invoice to its GSTR-1 bucket. Cancelled
// invoices are reported as other. Export and SEZ take precedence over
// registration, so an export invoice with a customer GSTIN is still export.
func CategorizeForGSTR1(inv InvoiceFacts) Category {
	switch {
	case inv.IsCancelled:
		return CategoryOther
	case inv.IsExport:
		return CategoryExport
	case inv.IsSEZ:
		return CategorySEZ
	case inv.CustomerGSTIN != "":
		return CategoryB2B
	default:
		return CategoryB2C
	}
}
