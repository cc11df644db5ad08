package app

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/bloodlink-app/bloodlink-server/apperr"
	"github.com/bloodlink-app/bloodlink-server/model"
)

// Context per request state
type Context struct {
	Logger        logrus.FieldLogger
	RemoteAddress string
	Actor         *model.Actor
	Vars          map[string]string
}

// WithLogger sets logger for context
func (ctx *Context) WithLogger(logger logrus.FieldLogger) *Context {
	ret := *ctx
	ret.Logger = logger
	return &ret
}

// WithRemoteAddress sets remote address for context
func (ctx *Context) WithRemoteAddress(address string) *Context {
	ret := *ctx
	ret.RemoteAddress = address
	return &ret
}

// WithActor sets the acting user for context
func (ctx *Context) WithActor(actor *model.Actor) *Context {
	ret := *ctx
	ret.Actor = actor
	return &ret
}

// AuthorizationError helper for when user is not authorized
func (ctx *Context) AuthorizationError(missing bool) *apperr.UserError {
	if missing {
		return &apperr.UserError{Message: "Actor is not present", StatusCode: http.StatusUnauthorized}
	}
	return &apperr.UserError{Message: "Invalid Credentials", StatusCode: http.StatusForbidden}
}
