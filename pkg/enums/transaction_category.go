package enums

import "fmt"

// TransactionCategory classifies what kind of money movement a commission
// transaction records.
type TransactionCategory string

const (
	TransactionCategorySale       TransactionCategory = "sale"
	TransactionCategoryRefund     TransactionCategory = "refund"
	TransactionCategoryChargeback TransactionCategory = "chargeback"
	TransactionCategoryFee        TransactionCategory = "fee"
	TransactionCategoryAdjustment TransactionCategory = "adjustment"
	TransactionCategoryBonus      TransactionCategory = "bonus"
	TransactionCategoryTip        TransactionCategory = "tip"
)

var validTransactionCategories = []TransactionCategory{
	TransactionCategorySale,
	TransactionCategoryRefund,
	TransactionCategoryChargeback,
	TransactionCategoryFee,
	TransactionCategoryAdjustment,
	TransactionCategoryBonus,
	TransactionCategoryTip,
}

// String implements fmt.Stringer.
func (c TransactionCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known TransactionCategory.
func (c TransactionCategory) IsValid() bool {
	for _, candidate := range validTransactionCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseTransactionCategory converts raw input into a TransactionCategory.
func ParseTransactionCategory(value string) (TransactionCategory, error) {
	for _, candidate := range validTransactionCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction category %q", value)
}
