package usecase

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/prisonmarket/internal/domain/errors"
)

type field struct {
	name  string
	value string
}

// requireFields reports every blank field at once, in the given order.
func requireFields(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &domainErrors.ValidationError{Fields: missing}
	}
	return nil
}

// ParseAmount accepts a strictly positive decimal with at most two fractional digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount must be a decimal number", domainErrors.ErrInvalidInput)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", domainErrors.ErrInvalidInput)
	}
	if !amount.Equal(amount.Round(2)) {
		return decimal.Zero, fmt.Errorf("%w: amount must have at most two decimal places", domainErrors.ErrInvalidInput)
	}
	return amount, nil
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", domainErrors.ErrInvalidInput)
	}
	var bad []string
	for i, item := range items {
		if item.ProductID <= 0 || item.Quantity <= 0 {
			bad = append(bad, fmt.Sprintf("items[%d]", i))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%w: product id and a positive quantity are required for %s",
			domainErrors.ErrInvalidInput, strings.Join(bad, ", "))
	}
	return nil
}
