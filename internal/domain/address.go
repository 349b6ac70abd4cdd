package domain

import (
	"strings"

	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
)

// Postal code bounds of the national range served by the original system.
const (
	PostalCodeMin = 1000
	PostalCodeMax = 9999
)

// Address is a value object owned exclusively by the Site or User that
// references it. It has no identity and no independent lifecycle.
type Address struct {
	Street     string `json:"street"`
	Number     int    `json:"number"`
	PostalCode int    `json:"postal_code"`
	City       string `json:"city"`
}

// PostalCodeInRange reports whether the given code lies in the valid
// national range.
func PostalCodeInRange(code int) bool {
	return code >= PostalCodeMin && code <= PostalCodeMax
}

// addressFields accumulates address input inside the Site and User builders.
// The original system folds address violations into the owning entity's
// violation set, keyed by the plain field names.
type addressFields struct {
	street     string
	number     int
	hasNumber  bool
	postalCode int
	hasPostal  bool
	city       string
}

// collect appends the address rule violations to the owner's violation set.
func (a addressFields) collect(v map[string]apperrors.RuleCode) {
	if strings.TrimSpace(a.street) == "" {
		v["street"] = apperrors.RuleRequired
	}
	switch {
	case !a.hasNumber:
		v["number"] = apperrors.RuleRequired
	case a.number <= 0:
		v["number"] = apperrors.RuleNotPositive
	}
	switch {
	case !a.hasPostal:
		v["postalCode"] = apperrors.RuleRequired
	case !PostalCodeInRange(a.postalCode):
		v["postalCode"] = apperrors.RulePostalCodeRange
	}
	if strings.TrimSpace(a.city) == "" {
		v["city"] = apperrors.RuleRequired
	}
}

// toAddress materializes the accumulated fields. Only called after collect
// reported no violations.
func (a addressFields) toAddress() Address {
	return Address{
		Street:     strings.TrimSpace(a.street),
		Number:     a.number,
		PostalCode: a.postalCode,
		City:       strings.TrimSpace(a.city),
	}
}
