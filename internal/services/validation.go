package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"gst-service/internal/models"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrAlreadyCancelled = errors.New("invoice already cancelled")
	ErrAlreadyFiled     = errors.New("GSTR-1 for this period is already filed")
)

var (
	hundred = decimal.NewFromInt(100)

	// HSN chapters are 2 digits, headings 4, sub-headings 6 and tariff items 8; SAC codes are 6
	hsnPattern = regexp.MustCompile(`^[0-9]{2}([0-9]{2}){0,3}$`)
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ValidateLineInputs rejects lines the GST engine must never see: negative
// amounts, rates outside 0-100 and malformed HSN/SAC codes.
func ValidateLineInputs(lines []models.LineItemInput) error {
	if len(lines) == 0 {
		return invalidf("at least one line item is required")
	}
	for i, line := range lines {
		n := i + 1
		if line.Quantity.IsNegative() {
			return invalidf("line %d: quantity must not be negative", n)
		}
		if line.UnitPrice.IsNegative() {
			return invalidf("line %d: unit price must not be negative", n)
		}
		if line.Discount.IsNegative() {
			return invalidf("line %d: discount must not be negative", n)
		}
		if line.TaxableAmount().IsNegative() {
			return invalidf("line %d: taxable amount must not be negative", n)
		}
		if line.TaxRate != nil && !validRate(*line.TaxRate) {
			return invalidf("line %d: tax rate must be between 0 and 100", n)
		}
		if err := validateCode(line.HSNCode); err != nil {
			return invalidf("line %d: HSN code %q: %v", n, line.HSNCode, err)
		}
		if err := validateCode(line.SACCode); err != nil {
			return invalidf("line %d: SAC code %q: %v", n, line.SACCode, err)
		}
	}
	return nil
}

// validateDiscount checks an invoice-level discount against the line subtotal
func validateDiscount(discount, subtotal decimal.Decimal) error {
	if discount.IsNegative() {
		return invalidf("discount must not be negative")
	}
	if discount.GreaterThan(subtotal) {
		return invalidf("discount %s exceeds subtotal %s", discount, subtotal)
	}
	return nil
}

func validRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(hundred)
}

func validateCode(code string) error {
	if code == "" {
		return nil
	}
	if !hsnPattern.MatchString(normalizeCode(code)) {
		return errors.New("must be 2, 4, 6 or 8 digits")
	}
	return nil
}

func normalizeCode(code string) string {
	code = strings.TrimSpace(code)
	code = strings.ReplaceAll(code, ".", "")
	return strings.ReplaceAll(code, " ", "")
}
