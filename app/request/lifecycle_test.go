package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/model"
)

func fulfillment(units int) model.Fulfillment {
	return model.Fulfillment{
		Donor:       primitive.NewObjectID(),
		Units:       units,
		Status:      consts.FulfillmentCollected,
		FulfilledAt: time.Now(),
	}
}

func TestSumFulfilledRecomputesFromArray(t *testing.T) {
	assert.Equal(t, 0, SumFulfilled(nil))
	assert.Equal(t, 5, SumFulfilled([]model.Fulfillment{fulfillment(2), fulfillment(3)}))
}

func TestNextStatusTransitions(t *testing.T) {
	now := time.Now()
	deadline := now.Add(48 * time.Hour)

	tests := []struct {
		name          string
		unitsRequired int
		contributions []int
		status        string
		requiredBy    time.Time
		want          string
	}{
		{"no contributions stays open", 4, nil, consts.StatusOpen, deadline, consts.StatusOpen},
		{"partial sum", 4, []int{1, 2}, consts.StatusOpen, deadline, consts.StatusPartiallyFulfilled},
		{"exact sum fulfills", 4, []int{2, 2}, consts.StatusPartiallyFulfilled, deadline, consts.StatusFulfilled},
		{"over-delivery fulfills", 4, []int{3, 3}, consts.StatusPartiallyFulfilled, deadline, consts.StatusFulfilled},
		{"open past deadline expires", 4, nil, consts.StatusOpen, now.Add(-time.Hour), consts.StatusExpired},
		{"partial past deadline stays partial", 4, []int{1}, consts.StatusPartiallyFulfilled, now.Add(-time.Hour), consts.StatusPartiallyFulfilled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &model.Request{
				UnitsRequired: tt.unitsRequired,
				Status:        tt.status,
				RequiredBy:    tt.requiredBy,
			}
			for _, u := range tt.contributions {
				req.Fulfillments = append(req.Fulfillments, fulfillment(u))
			}
			assert.Equal(t, tt.want, NextStatus(req, now))
		})
	}
}

func TestIsTerminalStates(t *testing.T) {
	for _, status := range []string{consts.StatusFulfilled, consts.StatusCancelled, consts.StatusExpired} {
		req := &model.Request{Status: status}
		assert.True(t, req.IsTerminal(), status)
	}
	for _, status := range []string{consts.StatusOpen, consts.StatusPartiallyFulfilled} {
		req := &model.Request{Status: status}
		assert.False(t, req.IsTerminal(), status)
	}
}

func TestValidateCreate(t *testing.T) {
	base := func() *model.Request {
		return &model.Request{
			BloodType:     "O-",
			Component:     "plasma",
			UnitsRequired: 2,
			Urgency:       consts.UrgencyCritical,
			RequiredBy:    time.Now().Add(24 * time.Hour),
		}
	}

	assert.NoError(t, validateCreate(base()))

	bad := base()
	bad.BloodType = "O"
	assert.Error(t, validateCreate(bad))

	bad = base()
	bad.UnitsRequired = 0
	assert.Error(t, validateCreate(bad))

	bad = base()
	bad.RequiredBy = time.Now().Add(-time.Minute)
	assert.Error(t, validateCreate(bad))

	bad = base()
	bad.Urgency = "asap"
	assert.Error(t, validateCreate(bad))
}
