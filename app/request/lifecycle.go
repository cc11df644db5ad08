package request

import (
	"time"

	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/model"
)

// SumFulfilled recomputes the fulfilled-unit total from the array. The
// stored counter is never incremented in place.
func SumFulfilled(fulfillments []model.Fulfillment) int {
	total := 0
	for _, f := range fulfillments {
		total += f.Units
	}
	return total
}

// NextStatus applies the lifecycle transition rule to a non-terminal
// request and returns the status it should carry. Terminal states are
// sticky; callers guard them before calling.
//
//	fulfilled            when unitsFulfilled >= unitsRequired
//	partially-fulfilled  when 0 < unitsFulfilled < unitsRequired
//	expired              when still open past the requiredBy deadline
//	open                 otherwise
func NextStatus(r *model.Request, now time.Time) string {
	fulfilled := SumFulfilled(r.Fulfillments)

	switch {
	case fulfilled >= r.UnitsRequired && r.UnitsRequired > 0:
		return consts.StatusFulfilled
	case fulfilled > 0:
		return consts.StatusPartiallyFulfilled
	case r.Status == consts.StatusOpen && now.After(r.RequiredBy):
		return consts.StatusExpired
	default:
		return consts.StatusOpen
	}
}
