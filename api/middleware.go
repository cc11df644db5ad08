package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/bloodlink-app/bloodlink-server/api/common"
	"github.com/bloodlink-app/bloodlink-server/app"
	"github.com/bloodlink-app/bloodlink-server/apperr"
	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/util"
)

// actorFromRequest reads the identity the gateway attached. The server
// never authenticates; it trusts the upstream headers.
func actorFromRequest(r *http.Request) (*model.Actor, error) {
	rawID := r.Header.Get("X-Actor-ID")
	role := r.Header.Get("X-Actor-Role")
	if rawID == "" || role == "" {
		return nil, nil
	}

	id, err := strconv.Atoi(rawID)
	if err != nil {
		return nil, fmt.Errorf("malformed X-Actor-ID %q", rawID)
	}
	switch role {
	case consts.RoleDonor, consts.RoleBloodBank, consts.RoleHospital, consts.RoleAdmin:
	default:
		return nil, fmt.Errorf("unrecognized X-Actor-Role %q", role)
	}
	return &model.Actor{ID: id, Role: role}, nil
}

func (a *API) handler(f common.HandlerFuncWithCTX, auth ...bool) http.HandlerFunc {
	checkAuth := auth[0]
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxContentSize*1024*1024)
		beginTime := time.Now()
		hijacker, _ := w.(http.Hijacker)
		ctx := a.App.NewContext().WithRemoteAddress(a.IPAddressForRequest(r))
		ctx = ctx.WithLogger(ctx.Logger.WithField("request_id", base64.RawURLEncoding.EncodeToString(util.NewID())))
		ctx.Vars = mux.Vars(r)

		w = &common.StatusCodeRecorder{
			ResponseWriter: w,
			Hijacker:       hijacker,
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			ctx.Logger.WithError(err).Error("rejecting actor headers")
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		if checkAuth && actor == nil {
			uerr := ctx.AuthorizationError(true)
			http.Error(w, uerr.Message, uerr.StatusCode)
			return
		}
		if actor != nil {
			ctx = ctx.WithActor(actor)
			ctx = ctx.WithLogger(ctx.Logger.WithField("actor_id", actor.ID))
		}

		defer func() {
			statusCode := w.(*common.StatusCodeRecorder).StatusCode
			if statusCode == 0 {
				statusCode = 200
			}
			duration := time.Since(beginTime)

			logger := ctx.Logger.WithFields(logrus.Fields{
				"duration":    duration,
				"status_code": statusCode,
				"remote":      ctx.RemoteAddress,
			})
			logger.Info(r.Method + " " + r.URL.RequestURI())
		}()

		defer func() {
			if localRecover := recover(); localRecover != nil {
				ctx.Logger.Error(fmt.Errorf("recovered from panic\n %v: %s", localRecover, debug.Stack()))
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(util.SetResponse(nil, 0, "server failed to process request"))
			}
		}()

		w.Header().Set("Content-Type", "application/json")

		if err := f(ctx, w, r); err != nil {
			a.writeError(ctx, w, err)
		}
	}
}

func (a *API) writeError(ctx *app.Context, w http.ResponseWriter, err error) {
	switch e := err.(type) {
	case *apperr.ValidationError:
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(util.SetResponse(e.Fields, 0, e.Message))
	case *apperr.NotFoundError:
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(util.SetResponse(nil, 0, e.Error()))
	case *apperr.ConflictError:
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(util.SetResponse(nil, 0, e.Message))
	case *apperr.UserError:
		w.WriteHeader(e.StatusCode)
		json.NewEncoder(w).Encode(util.SetResponse(nil, 0, e.Message))
	default:
		ctx.Logger.Error(err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(util.SetResponse(nil, 0, "internal server error"))
	}
}

// IPAddressForRequest determines IP address for request
func (a *API) IPAddressForRequest(r *http.Request) string {
	addr := r.RemoteAddr
	if a.Config.ProxyCount > 0 {
		h := r.Header.Get("X-Forwarded-For")
		if h != "" {
			clients := strings.Split(h, ",")
			if a.Config.ProxyCount > len(clients) {
				addr = clients[0]
			} else {
				addr = clients[len(clients)-a.Config.ProxyCount]
			}
		}
	}
	return strings.Split(strings.TrimSpace(addr), ":")[0]
}
