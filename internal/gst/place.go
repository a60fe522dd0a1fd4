package gst

// ResolvePlace decides the place of supply for ctx and whether the supply is
// intra-state. The first matching rule wins:
//
//  1. export: "Export", never intra-state
//  2. SEZ buyer: "SEZ", never intra-state
//  3. registered buyer with a GSTIN: the buyer state as supplied, intra-state
//     when the GSTIN's state prefix matches the supplier state
//  4. otherwise: the supplier state, intra-state when supplier and buyer
//     states match or the buyer has no state (walk-in sale)
//
// In rule 3 the GSTIN decides intra/inter while the place still echoes the
// BuyerState field, even when the two disagree. The GSTIN is what the filing
// is matched against; the state field is for display.
func ResolvePlace(ctx TaxContext) Place {
	switch {
	case ctx.IsExport:
		return Place{PlaceOfSupply: PlaceExport}
	case ctx.BuyerIsSEZ:
		return Place{PlaceOfSupply: PlaceSEZ}
	case ctx.BuyerRegistered && ctx.BuyerGSTIN != "":
		return Place{
			PlaceOfSupply: string(ctx.BuyerState),
			IsIntraState:  sameState(StateCode(ctx.BuyerGSTIN), ctx.SupplierState),
		}
	default:
		return Place{
			PlaceOfSupply: string(ctx.SupplierState),
			IsIntraState:  ctx.BuyerState == "" || sameState(ctx.SupplierState, ctx.BuyerState),
		}
	}
}
