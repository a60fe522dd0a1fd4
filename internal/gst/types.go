// Package gst implements India GST computation: place-of-supply resolution,
// the CGST/SGST versus IGST split, cess and TDS, invoice summaries and
// GSTR-1 categorisation.
//
// Everything in this package is a pure function of its inputs. The only shared
// data are the compiled rate and state tables, which are never mutated after
// package initialisation, so all functions are safe for concurrent use.
package gst

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Place-of-supply markers for zero-rated and SEZ supplies.
const (
	PlaceExport = "Export"
	PlaceSEZ    = "SEZ"
)

// TaxContext describes the parties of a single invoice. It is built once per
// invoice and reused for every line.
type TaxContext struct {
	SupplierState      StateCode `json:"supplierState"`
	SupplierGSTIN      string    `json:"supplierGstin,omitempty"`
	SupplierRegistered bool      `json:"supplierRegistered"`
	BuyerState         StateCode `json:"buyerState"`
	BuyerGSTIN         string    `json:"buyerGstin,omitempty"`
	BuyerRegistered    bool      `json:"buyerRegistered"`
	BuyerIsSEZ         bool      `json:"buyerIsSez"`
	IsExport           bool      `json:"isExport"`
}

// LineItem is the taxable input for one invoice line. Amount is already net
// of any line-level discount and is authoritative; Quantity and UnitPrice are
// informational only.
type LineItem struct {
	Amount    decimal.Decimal  `json:"amount"`
	TaxRate   *decimal.Decimal `json:"taxRate,omitempty"`
	HSNCode   string           `json:"hsnCode,omitempty"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
}

// Place is the outcome of place-of-supply resolution.
type Place struct {
	PlaceOfSupply string `json:"placeOfSupply"`
	IsIntraState  bool   `json:"isIntraState"`
}

// TaxBreakdown holds the computed tax for one line.
type TaxBreakdown struct {
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	CGSTRate      decimal.Decimal `json:"cgstRate"`
	SGSTRate      decimal.Decimal `json:"sgstRate"`
	IGSTRate      decimal.Decimal `json:"igstRate"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	IGST          decimal.Decimal `json:"igst"`
	CessRate      decimal.Decimal `json:"cessRate"`
	Cess          decimal.Decimal `json:"cess"`
	TDS           decimal.Decimal `json:"tds"`
	TotalTax      decimal.Decimal `json:"totalTax"`
	IsIntraState  bool            `json:"isIntraState"`
	PlaceOfSupply string          `json:"placeOfSupply"`
	Flags         Flags           `json:"complianceFlags"`
}

// InvoiceTaxSummary aggregates the line breakdowns of an invoice.
type InvoiceTaxSummary struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	IGST          decimal.Decimal `json:"igst"`
	Cess          decimal.Decimal `json:"cess"`
	TDS           decimal.Decimal `json:"tds"`
	TotalTax      decimal.Decimal `json:"totalTax"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	PlaceOfSupply string          `json:"placeOfSupply"`
	IsIntraState  bool            `json:"isIntraState"`
	Flags         Flags           `json:"complianceFlags"`
}

// Flag is a machine-readable compliance tag attached to a computation.
type Flag string

const (
	FlagTDSApplicable                  Flag = "TDS_APPLICABLE_2.5%"
	FlagExportZeroGST                  Flag = "EXPORT_ZERO_GST"
	FlagExportRequiresEInvoice         Flag = "EXPORT_REQUIRES_E_INVOICE"
	FlagIntraStateUnregisteredSupplier Flag = "INTRA_STATE_UNREGISTERED_SUPPLIER"
)

// Flags is a set of compliance flags, kept sorted and free of duplicates.
type Flags []Flag

// NewFlags builds a set from fs.
func NewFlags(fs ...Flag) Flags {
	seen := make(map[Flag]struct{}, len(fs))
	out := make(Flags, 0, len(fs))
	for _, f := range fs {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Has reports whether f is in the set.
func (fs Flags) Has(f Flag) bool {
	for _, x := range fs {
		if x == f {
			return true
		}
	}
	return false
}

// Union returns a new set holding the flags of fs and other.
func (fs Flags) Union(other Flags) Flags {
	all := make([]Flag, 0, len(fs)+len(other))
	all = append(all, fs...)
	all = append(all, other...)
	return NewFlags(all...)
}

// Strings returns the flags as plain strings.
func (fs Flags) Strings() []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}
