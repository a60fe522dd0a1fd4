package gst

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ratePtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

// registeredIntraState is a Maharashtra supplier billing a registered Maharashtra buyer.
func registeredIntraState() TaxContext {
	return TaxContext{
		SupplierState:      "MH",
		SupplierGSTIN:      "27BBBBB1111B1Z5",
		SupplierRegistered: true,
		BuyerState:         "MH",
		BuyerGSTIN:         "27AAAAA0000A1Z5",
		BuyerRegistered:    true,
	}
}

// registeredInterState is the same supplier billing a registered Karnataka buyer.
func registeredInterState() TaxContext {
	ctx := registeredIntraState()
	ctx.BuyerState = "KA"
	ctx.BuyerGSTIN = "29AAAAA0000A1Z5"
	return ctx
}
