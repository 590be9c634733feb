package domain

import (
	"strconv"

	"github.com/shopspring/decimal"

	apperrors "farmmarket/internal/errors"
)

// MoneyScale is the number of decimal places a total or price may carry.
// Both stores hold money at this scale.
const MoneyScale = 2

// FitsMoneyScale reports whether d has no significant digits past MoneyScale.
// Trailing zeros are fine: 2.500 fits, 2.555 does not.
func FitsMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}

// MoneyScaleViolations lists every money field of d that does not fit
// MoneyScale.
func (d OrderDraft) MoneyScaleViolations() []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail

	if !FitsMoneyScale(d.Total) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "total",
			Message: "total must have at most 2 decimal places",
		})
	}

	for idx, item := range d.Products {
		if !FitsMoneyScale(item.Price) {
			details = append(details, apperrors.ValidationDetail{
				Field:   "products[" + strconv.Itoa(idx) + "].price",
				Message: "price must have at most 2 decimal places",
			})
		}
	}

	return details
}

// CheckMoneyScale returns a ValidationError naming the money fields of d that
// carry more than MoneyScale decimal places.
func (d OrderDraft) CheckMoneyScale() error {
	if details := d.MoneyScaleViolations(); len(details) > 0 {
		return apperrors.NewValidationError("money out of scale", details...)
	}
	return nil
}
