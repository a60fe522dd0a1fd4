package gst

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Period is an inclusive filing period. A zero bound is open.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls within p.
func (p Period) Contains(t time.Time) bool {
	if !p.From.IsZero() && t.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && t.After(p.To) {
		return false
	}
	return true
}

// FilingLine is the per-line data needed for the HSN-wise summary.
type FilingLine struct {
	HSNCode       string          `json:"hsnCode"`
	Quantity      decimal.Decimal `json:"quantity"`
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	IGST          decimal.Decimal `json:"igst"`
	Cess          decimal.Decimal `json:"cess"`
}

// FilingInvoice is one invoice as seen by the GSTR-1 report.
type FilingInvoice struct {
	InvoiceFacts
	InvoiceNumber string            `json:"invoiceNumber"`
	InvoiceDate   time.Time         `json:"invoiceDate"`
	Summary       InvoiceTaxSummary `json:"summary"`
	Lines         []FilingLine      `json:"lines,omitempty"`
}

// TaxTotals is a running sum of taxable value and tax components.
type TaxTotals struct {
	InvoiceCount int             `json:"invoiceCount"`
	TaxableValue decimal.Decimal `json:"taxableValue"`
	CGST         decimal.Decimal `json:"cgst"`
	SGST         decimal.Decimal `json:"sgst"`
	IGST         decimal.Decimal `json:"igst"`
	Cess         decimal.Decimal `json:"cess"`
	TotalTax     decimal.Decimal `json:"totalTax"`
}

func zeroTotals() TaxTotals {
	return TaxTotals{
		TaxableValue: decimal.Zero,
		CGST:         decimal.Zero,
		SGST:         decimal.Zero,
		IGST:         decimal.Zero,
		Cess:         decimal.Zero,
		TotalTax:     decimal.Zero,
	}
}

func (t *TaxTotals) add(taxable, cgst, sgst, igst, cess decimal.Decimal) {
	t.TaxableValue = t.TaxableValue.Add(taxable)
	t.CGST = t.CGST.Add(cgst)
	t.SGST = t.SGST.Add(sgst)
	t.IGST = t.IGST.Add(igst)
	t.Cess = t.Cess.Add(cess)
	t.TotalTax = t.CGST.Add(t.SGST).Add(t.IGST).Add(t.Cess)
}

// CategoryTotals are the totals of one GSTR-1 bucket.
type CategoryTotals struct {
	Category Category `json:"category"`
	TaxTotals
	InvoiceNumbers []string `json:"invoiceNumbers"`
}

// HSNSummary is one row of the HSN-wise summary of outward supplies.
type HSNSummary struct {
	HSNCode  string          `json:"hsnCode"`
	Quantity decimal.Decimal `json:"quantity"`
	TaxTotals
}

// GSTR1Report is the period-level outward supply report.
type GSTR1Report struct {
	Period     Period           `json:"period"`
	Categories []CategoryTotals `json:"categories"`
	HSN        []HSNSummary     `json:"hsnSummary"`
	// Totals excludes the other bucket.
	Totals TaxTotals `json:"totals"`
}

// Category returns the totals for c.
func (r GSTR1Report) Category(c Category) CategoryTotals {
	for _, ct := range r.Categories {
		if ct.Category == c {
			return ct
		}
	}
	return CategoryTotals{Category: c, TaxTotals: zeroTotals()}
}

// BuildGSTR1Report buckets invoices dated within period by GSTR-1 category and
// sums their taxable value and tax. TDS is a withholding, not an output tax,
// and is left out of the report. Cancelled invoices land in the other bucket
// and are excluded from Totals and the HSN summary.
func BuildGSTR1Report(period Period, invoices []FilingInvoice) GSTR1Report {
	buckets := make(map[Category]*CategoryTotals, len(Categories))
	for _, c := range Categories {
		buckets[c] = &CategoryTotals{Category: c, TaxTotals: zeroTotals(), InvoiceNumbers: []string{}}
	}
	hsn := make(map[string]*HSNSummary)
	totals := zeroTotals()

	for _, inv := range invoices {
		if !period.Contains(inv.InvoiceDate) {
			continue
		}
		cat := CategorizeForGSTR1(inv.InvoiceFacts)
		b := buckets[cat]
		s := inv.Summary
		b.InvoiceCount++
		b.InvoiceNumbers = append(b.InvoiceNumbers, inv.InvoiceNumber)
		b.add(s.TaxableAmount, s.CGST, s.SGST, s.IGST, s.Cess)

		if cat == CategoryOther {
			continue
		}
		totals.InvoiceCount++
		totals.add(s.TaxableAmount, s.CGST, s.SGST, s.IGST, s.Cess)

		seen := make(map[string]bool, len(inv.Lines))
		for _, l := range inv.Lines {
			code := normalizeHSN(l.HSNCode)
			row, ok := hsn[code]
			if !ok {
				row = &HSNSummary{HSNCode: code, Quantity: decimal.Zero, TaxTotals: zeroTotals()}
				hsn[code] = row
			}
			if !seen[code] {
				seen[code] = true
				row.InvoiceCount++
			}
			row.Quantity = row.Quantity.Add(l.Quantity)
			row.add(l.TaxableAmount, l.CGST, l.SGST, l.IGST, l.Cess)
		}
	}

	report := GSTR1Report{
		Period:     period,
		Categories: make([]CategoryTotals, 0, len(Categories)),
		HSN:        make([]HSNSummary, 0, len(hsn)),
		Totals:     totals,
	}
	for _, c := range Categories {
		report.Categories = append(report.Categories, *buckets[c])
	}
	for _, row := range hsn {
		report.HSN = append(report.HSN, *row)
	}
	sort.Slice(report.HSN, func(i, j int) bool { return report.HSN[i].HSNCode < report.HSN[j].HSNCode })
	return report
}
