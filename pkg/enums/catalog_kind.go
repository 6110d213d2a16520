package enums

import (
	"fmt"
	"strings"
)

// CatalogKind selects between the two taxonomy tables managed by the same
// admin endpoints.
type CatalogKind string

const (
	CatalogKindCategory CatalogKind = "category"
	CatalogKindTag      CatalogKind = "tag"
)

func (k CatalogKind) String() string {
	return string(k)
}

func (k CatalogKind) IsValid() bool {
	return k == CatalogKindCategory || k == CatalogKindTag
}

func ParseCatalogKind(value string) (CatalogKind, error) {
	normalized := CatalogKind(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid type %q: must be category or tag", value)
}

// DiscountTarget names what a discount row points at.
type DiscountTarget string

const (
	DiscountTargetProduct  DiscountTarget = "product"
	DiscountTargetCategory DiscountTarget = "category"
	DiscountTargetTag      DiscountTarget = "tag"
)

func (d DiscountTarget) String() string {
	return string(d)
}

func (d DiscountTarget) IsValid() bool {
	switch d {
	case DiscountTargetProduct, DiscountTargetCategory, DiscountTargetTag:
		return true
	}
	return false
}

func ParseDiscountTarget(value string) (DiscountTarget, error) {
	normalized := DiscountTarget(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid discount type %q", value)
}

// Currency is fixed for every order.
const CurrencyEGP = "EGP"
