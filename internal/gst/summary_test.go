package gst

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSummarizeInvoice(t *testing.T) {
	ctx := registeredIntraState()
	calc := NewCalculator(nil)
	lines, summary := calc.ComputeInvoice([]LineItem{
		{Amount: dec("1000"), TaxRate: ratePtr("18")},
		{Amount: dec("333"), TaxRate: ratePtr("5")},
		{Amount: dec("500"), HSNCode: "2202"},
	}, ctx, dec("100"))

	assert.Len(t, lines, 3)
	assertDecimal(t, "1833", summary.Subtotal)
	assertDecimal(t, "100", summary.Discount)
	assertDecimal(t, "1733", summary.TaxableAmount)
	// 90 + 8 + 70
	assertDecimal(t, "168", summary.CGST)
	assertDecimal(t, "168", summary.SGST)
	assertDecimal(t, "0", summary.IGST)
	assertDecimal(t, "60", summary.Cess)
	assertDecimal(t, "396", summary.TotalTax)
	assertDecimal(t, "2129", summary.GrandTotal)
	assert.Equal(t, "MH", summary.PlaceOfSupply)
	assert.True(t, summary.IsIntraState)
}

func TestSummarizeInvoice_ComponentsAreLineSums(t *testing.T) {
	ctx := TaxContext{SupplierState: "MH", SupplierRegistered: true, BuyerState: "MH"}
	items := []LineItem{
		{Amount: dec("333"), TaxRate: ratePtr("5")},
		{Amount: dec("333"), TaxRate: ratePtr("5")},
		{Amount: dec("333"), TaxRate: ratePtr("5")},
	}
	lines, summary := NewCalculator(nil).ComputeInvoice(items, ctx, decimal.Zero)

	cgst := decimal.Zero
	tds := decimal.Zero
	for _, l := range lines {
		cgst = cgst.Add(l.CGST)
		tds = tds.Add(l.TDS)
	}
	// Re-deriving from the 999 total would give 24.975 -> 25.
	assertDecimal(t, "24", cgst)
	assert.True(t, summary.CGST.Equal(cgst))
	assert.True(t, summary.TDS.Equal(tds))
	assert.True(t, summary.GrandTotal.Equal(summary.TaxableAmount.Add(summary.TotalTax)))
}

func TestSummarizeInvoice_GrandTotalInvariant(t *testing.T) {
	contexts := []TaxContext{
		registeredIntraState(),
		registeredInterState(),
		{SupplierState: "MH", SupplierRegistered: true, BuyerState: "KA"},
		{SupplierState: "MH", IsExport: true},
		{SupplierState: "MH", BuyerIsSEZ: true, BuyerRegistered: true, BuyerGSTIN: "27AAAAA0000A1Z5"},
	}
	items := []LineItem{
		{Amount: dec("0.49"), HSNCode: "8703"},
		{Amount: dec("12345.67"), TaxRate: ratePtr("12")},
		{Amount: dec("1"), HSNCode: "2106"},
		{Amount: dec("777.5")},
	}
	for _, ctx := range contexts {
		for _, discount := range []string{"0", "0.5", "500"} {
			_, s := NewCalculator(nil).ComputeInvoice(items, ctx, dec(discount))
			assert.True(t, s.GrandTotal.Equal(s.TaxableAmount.Add(s.TotalTax)))
			assert.True(t, s.TotalTax.Equal(s.CGST.Add(s.SGST).Add(s.IGST).Add(s.Cess).Add(s.TDS)))
		}
	}
}

func TestSummarizeInvoice_FlagsAreUnioned(t *testing.T) {
	ctx := TaxContext{SupplierState: "MH", SupplierRegistered: true, IsExport: true}
	lines := []TaxBreakdown{
		ComputeLine(LineItem{Amount: dec("10")}, ctx),
		ComputeLine(LineItem{Amount: dec("20")}, ctx),
	}
	s := SummarizeInvoice(lines, ctx, decimal.Zero)
	assert.Equal(t, NewFlags(FlagExportZeroGST, FlagExportRequiresEInvoice, FlagTDSApplicable), s.Flags)
}

func TestSummarizeInvoice_NoLines(t *testing.T) {
	s := SummarizeInvoice(nil, registeredIntraState(), decimal.Zero)
	assert.True(t, s.GrandTotal.IsZero())
	assert.NotNil(t, s.Flags)
	assert.Empty(t, s.Flags)
}

func TestCategorizeForGSTR1(t *testing.T) {
	tests := []struct {
		name string
		inv  InvoiceFacts
		want Category
	}{
		{"export beats GSTIN", InvoiceFacts{IsExport: true, CustomerGSTIN: "27AAAAA0000A1Z5"}, CategoryExport},
		{"export beats SEZ", InvoiceFacts{IsExport: true, IsSEZ: true}, CategoryExport},
		{"SEZ beats GSTIN", InvoiceFacts{IsSEZ: true, CustomerGSTIN: "27AAAAA0000A1Z5"}, CategorySEZ},
		{"GSTIN is b2b", InvoiceFacts{CustomerGSTIN: "27AAAAA0000A1Z5"}, CategoryB2B},
		{"no GSTIN is b2c", InvoiceFacts{}, CategoryB2C},
		{"cancelled is other", InvoiceFacts{IsCancelled: true, IsExport: true}, CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeForGSTR1(tt.inv))
		})
	}
}

func TestFlags(t *testing.T) {
	f := NewFlags(FlagTDSApplicable, FlagExportZeroGST, FlagTDSApplicable)
	assert.Equal(t, Flags{FlagExportZeroGST, FlagTDSApplicable}, f)
	assert.Equal(t, []string{"EXPORT_ZERO_GST", "TDS_APPLICABLE_2.5%"}, f.Strings())

	u := f.Union(NewFlags(FlagExportZeroGST, FlagIntraStateUnregisteredSupplier))
	assert.Len(t, u, 3)
	assert.True(t, u.Has(FlagIntraStateUnregisteredSupplier))
	// The receiver is unchanged.
	assert.Len(t, f, 2)
}
