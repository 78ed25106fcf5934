package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssetCategory(t *testing.T) {
	got, err := ParseAssetCategory("laptop")
	require.NoError(t, err)
	assert.Equal(t, AssetCategoryLaptop, got)

	_, err = ParseAssetCategory("Laptop")
	assert.Error(t, err)
	assert.False(t, AssetCategory("spaceship").IsValid())
}

func TestRequestStatusClassification(t *testing.T) {
	active := map[RequestStatus]bool{
		RequestStatusPending:   true,
		RequestStatusApproved:  true,
		RequestStatusRejected:  false,
		RequestStatusCancelled: false,
		RequestStatusReturned:  false,
	}
	for status, want := range active {
		assert.Equal(t, want, status.IsActive(), "active for %s", status)
		assert.Equal(t, !want, status.IsTerminal(), "terminal for %s", status)
	}
	assert.Equal(t, []RequestStatus{RequestStatusPending, RequestStatusApproved}, ActiveRequestStatuses)
}

func TestParseReturnCondition(t *testing.T) {
	for _, raw := range []string{"good", "fair", "damaged", "lost"} {
		got, err := ParseReturnCondition(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, got.String())
	}
	_, err := ParseReturnCondition("new")
	assert.Error(t, err)
}

func TestUserRoleIsStaff(t *testing.T) {
	assert.True(t, UserRoleAdmin.IsStaff())
	assert.True(t, UserRoleStaff.IsStaff())
	assert.False(t, UserRoleNormal.IsStaff())

	_, err := ParseUserRole("agent")
	assert.Error(t, err)
}

func TestOutboxTypes(t *testing.T) {
	agg, err := ParseOutboxAggregateType("asset_request")
	require.NoError(t, err)
	assert.Equal(t, AggregateAssetRequest, agg)
	assert.True(t, EventRequestApproved.IsValid())
	assert.False(t, OutboxEventType("order_created").IsValid())
}
