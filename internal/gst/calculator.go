package gst

import "github.com/shopspring/decimal"

// Calculator computes line-level GST against a rate table.
type Calculator struct {
	rates *RateTable
}

// NewCalculator creates a calculator backed by rates. A nil table falls back
// to the compiled defaults.
func NewCalculator(rates *RateTable) *Calculator {
	if rates == nil {
		rates = DefaultRateTable()
	}
	return &Calculator{rates: rates}
}

var defaultCalculator = NewCalculator(nil)

// ComputeLine computes a line against the compiled rate table.
func ComputeLine(item LineItem, ctx TaxContext) TaxBreakdown {
	return defaultCalculator.ComputeLine(item, ctx)
}

// EffectiveRate returns the GST rate that applies to item: the explicit rate
// when set, else the HSN table rate, else DefaultGSTRate.
func (c *Calculator) EffectiveRate(item LineItem) decimal.Decimal {
	if item.TaxRate != nil {
		return *item.TaxRate
	}
	if rate, ok := c.rates.GSTRate(item.HSNCode); ok {
		return rate
	}
	return DefaultGSTRate
}

// ComputeLine computes CGST/SGST/IGST, cess and TDS for one line. Every
// component is rounded on its own, so CGST+SGST can differ from a single
// rounding of the combined rate.
//
// Amounts and rates must be non-negative; callers validate this first.
func (c *Calculator) ComputeLine(item LineItem, ctx TaxContext) TaxBreakdown {
	place := ResolvePlace(ctx)
	rate := c.EffectiveRate(item)
	cessRate := c.rates.CessRate(item.HSNCode)

	b := TaxBreakdown{
		TaxableAmount: item.Amount,
		CGSTRate:      decimal.Zero,
		SGSTRate:      decimal.Zero,
		IGSTRate:      decimal.Zero,
		CGST:          decimal.Zero,
		SGST:          decimal.Zero,
		IGST:          decimal.Zero,
		CessRate:      decimal.Zero,
		Cess:          decimal.Zero,
		TDS:           decimal.Zero,
		IsIntraState:  place.IsIntraState,
		PlaceOfSupply: place.PlaceOfSupply,
	}

	var flags []Flag
	switch {
	case ctx.IsExport:
		// Zero-rated: no GST and no cess, whatever the nominal rate.
		flags = append(flags, FlagExportZeroGST)
		if ctx.BuyerGSTIN == "" {
			flags = append(flags, FlagExportRequiresEInvoice)
		}
	case place.IsIntraState:
		half := rate.Div(two)
		b.CGSTRate, b.SGSTRate = half, half
		b.CGST = percentOf(item.Amount, half)
		b.SGST = percentOf(item.Amount, half)
	default:
		b.IGSTRate = rate
		b.IGST = percentOf(item.Amount, rate)
	}

	if !ctx.IsExport {
		b.CessRate = cessRate
		b.Cess = percentOf(item.Amount, cessRate)
	}

	if !ctx.BuyerRegistered && ctx.SupplierRegistered {
		b.TDS = percentOf(item.Amount, TDSRate)
		flags = append(flags, FlagTDSApplicable)
	}

	if place.IsIntraState && ctx.SupplierGSTIN == "" {
		flags = append(flags, FlagIntraStateUnregisteredSupplier)
	}

	b.TotalTax = b.CGST.Add(b.SGST).Add(b.IGST).Add(b.Cess).Add(b.TDS)
	b.Flags = NewFlags(flags...)
	return b
}

// percentOf returns amount*rate/100 rounded to whole currency units.
func percentOf(amount, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() || amount.IsZero() {
		return decimal.Zero
	}
	return RoundCurrency(amount.Mul(rate).Div(hundred))
}

// RoundCurrency rounds d to whole currency units, halves rounding up.
// decimal.Round rounds halves away from zero, which is half-up for the
// non-negative amounts the engine accepts.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}
