package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/model"
)

func TestUnitTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{consts.UnitAvailable, consts.UnitReserved, true},
		{consts.UnitAvailable, consts.UnitIssued, true},
		{consts.UnitAvailable, consts.UnitExpired, true},
		{consts.UnitReserved, consts.UnitAvailable, true},
		{consts.UnitReserved, consts.UnitIssued, true},
		{consts.UnitIssued, consts.UnitAvailable, false},
		{consts.UnitExpired, consts.UnitAvailable, false},
		{consts.UnitDiscarded, consts.UnitReserved, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, canTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestAvailableUnitsRecomputedFromLedger(t *testing.T) {
	inv := model.Inventory{
		Unit: []model.InventoryUnit{
			{BagNumber: "a", Status: consts.UnitAvailable},
			{BagNumber: "b", Status: consts.UnitReserved},
			{BagNumber: "c", Status: consts.UnitAvailable},
			{BagNumber: "d", Status: consts.UnitIssued},
			{BagNumber: "e", Status: consts.UnitExpired},
		},
	}

	assert.Equal(t, 2, inv.AvailableUnits())

	inv.Unit[0].Status = consts.UnitDiscarded
	assert.Equal(t, 1, inv.AvailableUnits())
}

func TestCrossedReorderFiresOnceAtThreshold(t *testing.T) {
	// 6 -> 5 with floor 5 crosses; 5 -> 4 is already below and must not
	assert.True(t, crossedReorder(6, 5, 5))
	assert.False(t, crossedReorder(5, 4, 5))
	assert.False(t, crossedReorder(10, 9, 5))
	assert.True(t, crossedReorder(8, 3, 5))
	assert.False(t, crossedReorder(4, 4, 5))
}
