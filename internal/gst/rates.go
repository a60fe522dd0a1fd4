package gst

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)

	// DefaultGSTRate applies when a line has neither an explicit rate nor a
	// recognised HSN/SAC code.
	DefaultGSTRate = decimal.NewFromInt(18)

	// TDSRate is withheld on supplies from a registered supplier to an
	// unregistered buyer.
	TDSRate = decimal.RequireFromString("2.5")
)

// hsnGSTRates maps HSN (goods) and SAC (services) codes to the combined GST
// rate in percent. Headings (4 digits) cover every sub-heading beneath them
// unless a longer code is listed.
var hsnGSTRates = map[string]string{
	// Nil-rated staples
	"0401": "0", // fresh milk
	"0701": "0", // potatoes
	"1001": "0", // wheat
	"1006": "0", // rice, unbranded
	"4901": "0", // printed books

	// 5%
	"0902": "5", // tea
	"0901": "5", // coffee
	"1701": "5", // sugar
	"1905": "5", // bread, pizza base
	"9963": "5", // restaurant and accommodation services
	"9964": "5", // passenger transport

	// 12%
	"3004":   "12", // medicaments
	"4820":   "12", // registers, notebooks
	"6109":   "12", // t-shirts
	"996311": "12", // hotel rooms

	// 18%
	"3401":   "18", // soap
	"6403":   "18", // footwear
	"9403":   "18", // furniture
	"8471":   "18", // computers
	"8517":   "18", // mobile phones
	"8528":   "18", // monitors, televisions
	"9983":   "18", // professional and technical services
	"998314": "18", // IT design and development
	"9954":   "18", // construction services
	"9971":   "18", // financial services
	"9973":   "18", // leasing and rental

	// 28%
	"2202": "28", // aerated beverages
	"2402": "28", // cigarettes
	"2106": "28", // pan masala
	"8703": "28", // motor cars
	"8711": "28", // motorcycles
	"8415": "28", // air conditioners
}

// hsnCessRates maps HSN codes to the compensation cess rate in percent.
var hsnCessRates = map[string]string{
	"2202": "12",
	"2106": "60",
	"2402": "5",
	"8703": "15",
	"8711": "3",
}

// RateTable resolves HSN/SAC codes to GST and cess rates. It is immutable
// after construction and safe for concurrent use.
type RateTable struct {
	gst  map[string]decimal.Decimal
	cess map[string]decimal.Decimal
}

// RateOverride replaces the table entry for a single HSN/SAC code.
type RateOverride struct {
	Code string
	Rate decimal.Decimal
	// Cess is left untouched when nil.
	Cess *decimal.Decimal
}

var defaultRateTable = newRateTableFromStrings(hsnGSTRates, hsnCessRates)

// DefaultRateTable returns the compiled HSN/SAC rate table.
func DefaultRateTable() *RateTable {
	return defaultRateTable
}

// NewRateTable builds a table from the given GST and cess maps. The maps are
// copied; later changes by the caller are not observed.
func NewRateTable(gstRates, cessRates map[string]decimal.Decimal) *RateTable {
	t := &RateTable{
		gst:  make(map[string]decimal.Decimal, len(gstRates)),
		cess: make(map[string]decimal.Decimal, len(cessRates)),
	}
	for code, rate := range gstRates {
		t.gst[normalizeHSN(code)] = rate
	}
	for code, rate := range cessRates {
		t.cess[normalizeHSN(code)] = rate
	}
	return t
}

func newRateTableFromStrings(gstRates, cessRates map[string]string) *RateTable {
	g := make(map[string]decimal.Decimal, len(gstRates))
	for code, rate := range gstRates {
		g[code] = decimal.RequireFromString(rate)
	}
	c := make(map[string]decimal.Decimal, len(cessRates))
	for code, rate := range cessRates {
		c[code] = decimal.RequireFromString(rate)
	}
	return NewRateTable(g, c)
}

// WithOverrides returns a new table with overrides layered on top of t.
// t itself is not modified.
func (t *RateTable) WithOverrides(overrides []RateOverride) *RateTable {
	next := NewRateTable(t.gst, t.cess)
	for _, o := range overrides {
		code := normalizeHSN(o.Code)
		if code == "" {
			continue
		}
		next.gst[code] = o.Rate
		if o.Cess != nil {
			next.cess[code] = *o.Cess
		}
	}
	return next
}

// GSTRate returns the combined GST rate for code and whether the code (or one
// of its 6/4-digit parents) was found.
func (t *RateTable) GSTRate(code string) (decimal.Decimal, bool) {
	return lookupHSN(t.gst, code)
}

// CessRate returns the cess rate for code, zero when none applies.
func (t *RateTable) CessRate(code string) decimal.Decimal {
	rate, ok := lookupHSN(t.cess, code)
	if !ok {
		return decimal.Zero
	}
	return rate
}

// lookupHSN tries an exact match first, then falls back from 8 to 6 to 4
// digit prefixes.
func lookupHSN(m map[string]decimal.Decimal, code string) (decimal.Decimal, bool) {
	code = normalizeHSN(code)
	if code == "" || len(m) == 0 {
		return decimal.Zero, false
	}
	if rate, ok := m[code]; ok {
		return rate, true
	}
	for _, prefixLen := range []int{6, 4} {
		if len(code) > prefixLen {
			if rate, ok := m[code[:prefixLen]]; ok {
				return rate, true
			}
		}
	}
	return decimal.Zero, false
}

func normalizeHSN(code string) string {
	code = strings.TrimSpace(code)
	code = strings.ReplaceAll(code, ".", "")
	return strings.ReplaceAll(code, " ", "")
}
