package enums

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	for _, raw := range []string{"pending", "processing", "shipped", "delivered", "cancelled", " Shipped "} {
		_, err := ParseOrderStatus(raw)
		require.NoError(t, err, raw)
	}

	_, err := ParseOrderStatus("paid")
	require.Error(t, err, "paid is report-only and cannot be assigned")

	_, err = ParseOrderStatus("refunded")
	require.Error(t, err)
}

func TestCouponUsageStatusesIncludePending(t *testing.T) {
	require.Contains(t, CouponUsageStatuses, OrderStatusPending)
	require.NotContains(t, SalesStatuses, OrderStatusPending)
	require.Len(t, CouponUsageStatuses, len(SalesStatuses)+1)
	require.Equal(t, []string{"paid", "processing", "shipped", "delivered"}, StatusStrings(SalesStatuses))
}

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("ADMIN")
	require.NoError(t, err)
	require.Equal(t, UserRoleAdmin, role)

	_, err = ParseUserRole("customer")
	require.Error(t, err)
}

func TestParseCatalogKindAndDiscountTarget(t *testing.T) {
	kind, err := ParseCatalogKind("tag")
	require.NoError(t, err)
	require.Equal(t, CatalogKindTag, kind)

	_, err = ParseCatalogKind("brand")
	require.Error(t, err)

	target, err := ParseDiscountTarget("category")
	require.NoError(t, err)
	require.Equal(t, DiscountTargetCategory, target)
}
