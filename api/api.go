package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bloodlink-app/bloodlink-server/api/common"
	donorApipk "github.com/bloodlink-app/bloodlink-server/api/donorapi"
	inventoryApipk "github.com/bloodlink-app/bloodlink-server/api/inventoryapi"
	notificationApipk "github.com/bloodlink-app/bloodlink-server/api/notificationapi"
	requestApipk "github.com/bloodlink-app/bloodlink-server/api/requestapi"
	"github.com/bloodlink-app/bloodlink-server/app"
	"github.com/bloodlink-app/bloodlink-server/cache"
	"github.com/bloodlink-app/bloodlink-server/util"
)

// API bloodlink api
type API struct {
	App    *app.App
	Config *common.Config
	Cache  *cache.Cache
}

// New creates a new api
func New(a *app.App) (api *API, err error) {
	api = &API{App: a}
	api.Config, err = common.InitConfig()
	if err != nil {
		return nil, err
	}
	return api, nil
}

func (a *API) Init(r *mux.Router) {
	r.Handle("/healthz", a.handler(a.Healthz, false)).Methods(http.MethodGet)
	r.HandleFunc("/ws", a.AttachWebsocket).Methods(http.MethodGet)

	/* ****************** REQUEST ****************** */
	requestAPI := requestApipk.New(a.Config, a.App.Repos, a.App)
	r.Handle("/request", a.handler(requestAPI.CreateRequest, true)).Methods(http.MethodPost)
	r.Handle("/request", a.handler(requestAPI.ListRequests, false)).Methods(http.MethodGet)
	r.Handle("/request/nearby", a.handler(requestAPI.ListNearby, true)).Methods(http.MethodGet)
	r.Handle("/request/{requestID}", a.handler(requestAPI.GetRequest, false)).Methods(http.MethodGet)
	r.Handle("/request/{requestID}/respond", a.handler(requestAPI.Respond, true)).Methods(http.MethodPost)
	r.Handle("/request/{requestID}/cancel", a.handler(requestAPI.CancelRequest, true)).Methods(http.MethodPut)

	/* ****************** DONOR ****************** */
	donorAPI := donorApipk.New(a.Config, a.App.Repos, a.App)
	r.Handle("/donor/search", a.handler(donorAPI.SearchDonors, false)).Methods(http.MethodGet)
	r.Handle("/donor/eligible", a.handler(donorAPI.ListEligible, true)).Methods(http.MethodGet)
	r.Handle("/donor/donation", a.handler(donorAPI.RecordDonation, true)).Methods(http.MethodPost)
	r.Handle("/donor/{donorID}", a.handler(donorAPI.GetDonor, true)).Methods(http.MethodGet)

	/* ****************** INVENTORY ****************** */
	inventoryAPI := inventoryApipk.New(a.Config, a.App.Repos, a.App)
	r.Handle("/inventory", a.handler(inventoryAPI.AddUnit, true)).Methods(http.MethodPost)
	r.Handle("/inventory/search", a.handler(inventoryAPI.Search, false)).Methods(http.MethodGet)
	r.Handle("/inventory/low-stock", a.handler(inventoryAPI.ListLowStock, true)).Methods(http.MethodGet)
	r.Handle("/inventory/expiring", a.handler(inventoryAPI.ListExpiring, true)).Methods(http.MethodGet)
	r.Handle("/inventory/bank/{bankID}", a.handler(inventoryAPI.ListByBank, false)).Methods(http.MethodGet)
	r.Handle("/inventory/{inventoryID}/unit/{bagNumber}", a.handler(inventoryAPI.SetUnitStatus, true)).Methods(http.MethodPut)

	/* ****************** NOTIFICATION ****************** */
	notificationAPI := notificationApipk.New(a.Config, a.App.Repos, a.App)
	r.Handle("/notification", a.handler(notificationAPI.ListNotifications, true)).Methods(http.MethodGet)
	r.Handle("/notification/read-all", a.handler(notificationAPI.MarkAllRead, true)).Methods(http.MethodPut)
	r.Handle("/notification/read/{notificationID}", a.handler(notificationAPI.MarkRead, true)).Methods(http.MethodPut)
	r.Handle("/notification/count", a.handler(notificationAPI.UnreadCount, true)).Methods(http.MethodGet)
	r.Handle("/notification/broadcast", a.handler(notificationAPI.Broadcast, true)).Methods(http.MethodPost)
	r.Handle("/notification/config", a.handler(notificationAPI.GetProviderConfig, true)).Methods(http.MethodGet)
	r.Handle("/notification/config", a.handler(notificationAPI.UpdateProviderConfig, true)).Methods(http.MethodPut)
	r.Handle("/notification/config/reload", a.handler(notificationAPI.ReloadProviderConfig, true)).Methods(http.MethodPost)
	r.Handle("/notification/config/test", a.handler(notificationAPI.TestProviderConfig, true)).Methods(http.MethodPost)
}

// Healthz liveness probe
func (a *API) Healthz(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	json.NewEncoder(w).Encode(util.SetResponse(nil, 1, "ok"))
	return nil
}

// AttachWebsocket upgrades the connection and registers the actor's
// session on the hub. Plain HandlerFunc: the upgrade needs the raw writer.
func (a *API) AttachWebsocket(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil || actor == nil {
		http.Error(w, "actor headers required", http.StatusUnauthorized)
		return
	}

	if err := a.App.Hub.Attach(w, r, actor.ID); err != nil {
		http.Error(w, "unable to upgrade connection", http.StatusBadRequest)
		return
	}
}
