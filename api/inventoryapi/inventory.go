package inventoryapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/bloodlink-app/bloodlink-server/api/common"
	"github.com/bloodlink-app/bloodlink-server/app"
	"github.com/bloodlink-app/bloodlink-server/app/geo"
	"github.com/bloodlink-app/bloodlink-server/app/inventory"
	"github.com/bloodlink-app/bloodlink-server/apperr"
	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/util"
)

func operatorOnly(ctx *app.Context) error {
	switch ctx.Actor.Role {
	case consts.RoleBloodBank, consts.RoleAdmin:
		return nil
	}
	return apperr.NewForbidden("only blood banks may manage inventory")
}

// AddUnit - record one bag into a bank's ledger
func (a *api) AddUnit(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	if err := operatorOnly(ctx); err != nil {
		return err
	}

	var payload inventory.AddUnitInput
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		return errors.Wrap(err, "unable to decode payload json")
	}

	inv, err := a.App.InventoryService.AddUnit(payload, ctx.Actor)
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(inv, 1, "Inventory unit added"))
	return nil
}

// Search - public availability search
func (a *api) Search(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	center := geo.Point{}
	radius := 0.0
	if q.Get("lat") != "" || q.Get("lng") != "" {
		var err error
		center, radius, err = common.ParseGeoQuery(r)
		if err != nil {
			return err
		}
	}

	ledgers, err := a.App.InventoryService.Search(q.Get("bloodType"), q.Get("component"), center, radius)
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(ledgers, 1, "Inventory fetched"))
	return nil
}

// ListByBank - every ledger a bank holds
func (a *api) ListByBank(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	ledgers, err := a.App.InventoryService.ListByBank(ctx.Vars["bankID"])
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(ledgers, 1, "Bank inventory fetched"))
	return nil
}

// SetUnitStatus - move one bag through its lifecycle
func (a *api) SetUnitStatus(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	if err := operatorOnly(ctx); err != nil {
		return err
	}

	var payload struct {
		Status string `json:"status"`
	}
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		return errors.Wrap(err, "unable to decode payload json")
	}

	inv, err := a.App.InventoryService.SetUnitStatus(ctx.Vars["inventoryID"], ctx.Vars["bagNumber"], payload.Status)
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(inv, 1, "Unit status updated"))
	return nil
}

// ListLowStock - ledgers at or below their reorder level
func (a *api) ListLowStock(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	if err := operatorOnly(ctx); err != nil {
		return err
	}

	ledgers, err := a.App.InventoryService.ListLowStock()
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(ledgers, 1, "Low stock ledgers fetched"))
	return nil
}

// ListExpiring - bags inside the expiry horizon
func (a *api) ListExpiring(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	if err := operatorOnly(ctx); err != nil {
		return err
	}

	expiring, err := a.App.InventoryService.ListExpiring(time.Now())
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(expiring, 1, "Expiring units fetched"))
	return nil
}
