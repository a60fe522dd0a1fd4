package gst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePlace(t *testing.T) {
	tests := []struct {
		name      string
		ctx       func() TaxContext
		wantPlace string
		wantIntra bool
	}{
		{
			name:      "registered buyer same state",
			ctx:       registeredIntraState,
			wantPlace: "MH",
			wantIntra: true,
		},
		{
			name:      "registered buyer other state",
			ctx:       registeredInterState,
			wantPlace: "KA",
			wantIntra: false,
		},
		{
			name: "export wins over everything",
			ctx: func() TaxContext {
				ctx := registeredIntraState()
				ctx.IsExport = true
				ctx.BuyerIsSEZ = true
				return ctx
			},
			wantPlace: PlaceExport,
			wantIntra: false,
		},
		{
			name: "SEZ buyer in the same state is still inter-state",
			ctx: func() TaxContext {
				ctx := registeredIntraState()
				ctx.BuyerIsSEZ = true
				return ctx
			},
			wantPlace: PlaceSEZ,
			wantIntra: false,
		},
		{
			name: "GSTIN decides intra-state but place echoes buyer state",
			ctx: func() TaxContext {
				ctx := registeredIntraState()
				ctx.BuyerState = "KA"
				return ctx
			},
			wantPlace: "KA",
			wantIntra: true,
		},
		{
			name: "GSTIN from another state overrides a matching state field",
			ctx: func() TaxContext {
				ctx := registeredIntraState()
				ctx.BuyerGSTIN = "29AAAAA0000A1Z5"
				return ctx
			},
			wantPlace: "MH",
			wantIntra: false,
		},
		{
			name: "unregistered buyer uses supplier state as place",
			ctx: func() TaxContext {
				return TaxContext{SupplierState: "MH", SupplierRegistered: true, BuyerState: "KA"}
			},
			wantPlace: "MH",
			wantIntra: false,
		},
		{
			name: "unregistered buyer in the supplier state",
			ctx: func() TaxContext {
				return TaxContext{SupplierState: "MH", BuyerState: "MH"}
			},
			wantPlace: "MH",
			wantIntra: true,
		},
		{
			name: "registered flag without GSTIN falls through to state comparison",
			ctx: func() TaxContext {
				return TaxContext{SupplierState: "MH", BuyerState: "GJ", BuyerRegistered: true}
			},
			wantPlace: "MH",
			wantIntra: false,
		},
		{
			name: "GSTIN on an unregistered buyer is ignored",
			ctx: func() TaxContext {
				return TaxContext{SupplierState: "MH", BuyerState: "KA", BuyerGSTIN: "27AAAAA0000A1Z5"}
			},
			wantPlace: "MH",
			wantIntra: false,
		},
		{
			name: "numeric and alphabetic state codes compare equal",
			ctx: func() TaxContext {
				return TaxContext{SupplierState: "27", BuyerState: "MH"}
			},
			wantPlace: "27",
			wantIntra: true,
		},
		{
			name: "missing buyer state is billed as local",
			ctx: func() TaxContext {
				return TaxContext{SupplierState: "MH"}
			},
			wantPlace: "MH",
			wantIntra: true,
		},
		{
			name: "registered buyer GSTIN against a missing supplier state is inter-state",
			ctx: func() TaxContext {
				return TaxContext{BuyerState: "KA", BuyerGSTIN: "29AAAAA0000A1Z5", BuyerRegistered: true}
			},
			wantPlace: "KA",
			wantIntra: false,
		},
		{
			name: "buyer state against a missing supplier state is inter-state",
			ctx: func() TaxContext {
				return TaxContext{BuyerState: "KA"}
			},
			wantPlace: "",
			wantIntra: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePlace(tt.ctx())
			assert.Equal(t, tt.wantPlace, got.PlaceOfSupply)
			assert.Equal(t, tt.wantIntra, got.IsIntraState)
		})
	}
}

func TestResolvePlace_Idempotent(t *testing.T) {
	ctx := registeredInterState()
	first := ResolvePlace(ctx)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ResolvePlace(ctx))
	}
}
