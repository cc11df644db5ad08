package donorapi

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/bloodlink-app/bloodlink-server/api/common"
	"github.com/bloodlink-app/bloodlink-server/app"
	"github.com/bloodlink-app/bloodlink-server/app/donation"
	"github.com/bloodlink-app/bloodlink-server/app/geo"
	"github.com/bloodlink-app/bloodlink-server/apperr"
	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/util"
)

// SearchDonors - public donor search by type and area
func (a *api) SearchDonors(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
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

	donors, err := a.App.DonorService.SearchDonors(q.Get("bloodType"), center, radius)
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(donors, 1, "Donors fetched"))
	return nil
}

// ListEligible - donors currently cleared to donate
func (a *api) ListEligible(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	donors, err := a.App.DonorService.ListEligible()
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(donors, 1, "Eligible donors fetched"))
	return nil
}

// RecordDonation - an operator records a completed donation
func (a *api) RecordDonation(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	switch ctx.Actor.Role {
	case consts.RoleBloodBank, consts.RoleHospital, consts.RoleAdmin:
	default:
		return apperr.NewForbidden("only operators may record donations")
	}

	var payload donation.Input
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		return errors.Wrap(err, "unable to decode payload json")
	}

	result, err := a.App.DonationService.RecordDonation(payload)
	if err != nil {
		return err
	}

	message := "Donation recorded"
	if result.RequestError != "" {
		message = "Donation recorded; request update failed"
	}
	json.NewEncoder(w).Encode(util.SetResponse(result, 1, message))
	return nil
}

// GetDonor - fetch one donor profile
func (a *api) GetDonor(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	donor, err := a.App.DonorService.GetDonor(ctx.Vars["donorID"])
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(donor, 1, "Donor fetched"))
	return nil
}
