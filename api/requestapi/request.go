package requestapi

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/bloodlink-app/bloodlink-server/api/common"
	"github.com/bloodlink-app/bloodlink-server/app"
	"github.com/bloodlink-app/bloodlink-server/apperr"
	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/util"
)

// CreateRequest - open a new blood request
func (a *api) CreateRequest(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	switch ctx.Actor.Role {
	case consts.RoleHospital, consts.RoleBloodBank, consts.RoleAdmin:
	default:
		return apperr.NewForbidden("only hospitals and blood banks may open requests")
	}

	var payload model.Request
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		return errors.Wrap(err, "unable to decode payload json")
	}

	req, err := a.App.RequestService.CreateRequest(&payload, ctx.Actor)
	if err != nil {
		return err
	}

	json.NewEncoder(w).Encode(util.SetResponse(req, 1, "Blood request created"))
	return nil
}

// ListRequests - filterable request listing
func (a *api) ListRequests(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	requests, err := a.App.RequestService.ListRequests(q.Get("status"), q.Get("urgency"), q.Get("bloodType"))
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(requests, 1, "Blood requests fetched"))
	return nil
}

// ListNearby - open requests around the caller's coordinates
func (a *api) ListNearby(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	center, radius, err := common.ParseGeoQuery(r)
	if err != nil {
		return err
	}

	requests, err := a.App.RequestService.ListNearby(center, radius)
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(requests, 1, "Nearby blood requests fetched"))
	return nil
}

// GetRequest - fetch one request by id
func (a *api) GetRequest(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	req, err := a.App.RequestService.GetRequest(ctx.Vars["requestID"])
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(req, 1, "Blood request fetched"))
	return nil
}

// Respond - a donor states intent on a request
func (a *api) Respond(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	if ctx.Actor.Role != consts.RoleDonor {
		return apperr.NewForbidden("only donors may respond to requests")
	}

	var payload struct {
		Response string `json:"response"`
		Message  string `json:"message"`
	}
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		return errors.Wrap(err, "unable to decode payload json")
	}

	req, err := a.App.RequestService.Respond(ctx.Vars["requestID"], ctx.Actor, payload.Response, payload.Message)
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(req, 1, "Response recorded"))
	return nil
}

// CancelRequest - the requester withdraws an active request
func (a *api) CancelRequest(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	req, err := a.App.RequestService.CancelRequest(ctx.Vars["requestID"], ctx.Actor)
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(req, 1, "Blood request cancelled"))
	return nil
}
