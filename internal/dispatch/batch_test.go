package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swoopdelivery/swoopsim/internal/models"
)

func order(id string, hole int) *models.Order {
	return &models.Order{ID: id, HoleNumber: hole, Status: models.OrderStatusPending}
}

func holes(group []*models.Order) []int {
	out := make([]int, len(group))
	for i, o := range group {
		out[i] = o.HoleNumber
	}
	return out
}

func TestGroupOrdersClustersNearbyHoles(t *testing.T) {
	pending := []*models.Order{
		order("a", 4), order("b", 5), order("c", 12), order("d", 3), order("e", 13),
	}
	groups := GroupOrders(pending, 2, 3)
	require.Len(t, groups, 2)

	assert.Equal(t, []int{3, 4, 5}, holes(groups[0]))
	assert.Equal(t, []int{12, 13}, holes(groups[1]))
}

func TestGroupOrdersRespectsCap(t *testing.T) {
	pending := []*models.Order{
		order("a", 7), order("b", 7), order("c", 7), order("d", 7), order("e", 7),
	}
	groups := GroupOrders(pending, 2, 3)
	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 3)
	assert.Len(t, groups[1], 2)
}

func TestGroupOrdersThresholdIsFromSeed(t *testing.T) {
	// 6 is within 2 of seed 4; 8 is within 2 of 6 but not of the seed, so it
	// starts its own group
	pending := []*models.Order{order("a", 4), order("b", 6), order("c", 8)}
	groups := GroupOrders(pending, 2, 3)
	require.Len(t, groups, 2)
	assert.Equal(t, []int{4, 6}, holes(groups[0]))
	assert.Equal(t, []int{8}, holes(groups[1]))
}

func TestGroupOrdersSingleton(t *testing.T) {
	groups := GroupOrders([]*models.Order{order("a", 9)}, 2, 3)
	require.Len(t, groups, 1)
	assert.Equal(t, "a", groups[0][0].ID)
	assert.Nil(t, GroupOrders(nil, 2, 3))
}

func TestGroupOrdersSortsWithinGroup(t *testing.T) {
	pending := []*models.Order{order("late", 9), order("early", 8)}
	groups := GroupOrders(pending, 2, 3)
	require.Len(t, groups, 1)
	assert.Equal(t, []int{8, 9}, holes(groups[0]))
	assert.Equal(t, "early", groups[0][0].ID)
}

func TestGroupOrdersEqualHolesKeepArrivalOrder(t *testing.T) {
	pending := []*models.Order{order("first", 6), order("second", 6)}
	groups := GroupOrders(pending, 2, 3)
	require.Len(t, groups, 1)
	assert.Equal(t, "first", groups[0][0].ID)
	assert.Equal(t, "second", groups[0][1].ID)
}
