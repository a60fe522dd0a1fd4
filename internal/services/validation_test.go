package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gst-service/internal/models"
)

func TestValidateLineInputs(t *testing.T) {
	tests := []struct {
		name    string
		lines   []models.LineItemInput
		wantErr string
	}{
		{"valid goods and services", []models.LineItemInput{
			{HSNCode: "8471", Quantity: dec("1"), UnitPrice: dec("100")},
			{SACCode: "998314", Amount: decPtr("5000"), TaxRate: decPtr("18")},
			{HSNCode: "0401", Amount: decPtr("0")},
		}, ""},
		{"no lines", nil, "at least one line item"},
		{"negative quantity", []models.LineItemInput{{Quantity: dec("-1")}}, "line 1: quantity"},
		{"negative price", []models.LineItemInput{{UnitPrice: dec("-5")}}, "unit price"},
		{"discount above line value", []models.LineItemInput{{Quantity: dec("1"), UnitPrice: dec("10"), Discount: dec("11")}}, "taxable amount"},
		{"negative explicit amount", []models.LineItemInput{{Amount: decPtr("-1")}}, "taxable amount"},
		{"rate above 100", []models.LineItemInput{{Amount: decPtr("1"), TaxRate: decPtr("100.5")}}, "tax rate"},
		{"negative rate", []models.LineItemInput{{Amount: decPtr("1"), TaxRate: decPtr("-1")}}, "tax rate"},
		{"bad HSN on second line", []models.LineItemInput{{Amount: decPtr("1")}, {Amount: decPtr("1"), HSNCode: "84A1"}}, "line 2: HSN code"},
		{"bad SAC", []models.LineItemInput{{Amount: decPtr("1"), SACCode: "99831"}}, "SAC code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLineInputs(tt.lines)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateDiscount(t *testing.T) {
	assert.NoError(t, validateDiscount(dec("0"), dec("0")))
	assert.NoError(t, validateDiscount(dec("100"), dec("100")))
	assert.ErrorIs(t, validateDiscount(dec("-1"), dec("100")), ErrInvalidInput)
	assert.ErrorIs(t, validateDiscount(dec("100.01"), dec("100")), ErrInvalidInput)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "84713010", normalizeCode(" 8471.30 10 "))
	assert.NoError(t, validateCode("8471.30"))
	assert.Error(t, validateCode("847"))
}
