package notificationapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/bloodlink-app/bloodlink-server/app"
	"github.com/bloodlink-app/bloodlink-server/app/notification"
	"github.com/bloodlink-app/bloodlink-server/apperr"
	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/util"
)

// ListNotifications - the actor's in-app notifications, newest first
func (a *api) ListNotifications(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)
	skip, _ := strconv.ParseInt(q.Get("skip"), 10, 64)

	notifications, err := a.App.NotificationService.GetNotificationList(ctx.Actor.ID, limit, skip)
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(notifications, 1, "Notifications fetched"))
	return nil
}

// MarkRead - flip one notification to read
func (a *api) MarkRead(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	err := a.App.NotificationService.MarkNotificationAsRead(ctx.Vars["notificationID"], ctx.Actor.ID)
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(nil, 1, "Notification marked as read"))
	return nil
}

// MarkAllRead - clear the actor's unread set
func (a *api) MarkAllRead(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	err := a.App.NotificationService.MarkAllNotificationAsRead(ctx.Actor.ID)
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(nil, 1, "All notifications marked as read"))
	return nil
}

// UnreadCount - the badge number
func (a *api) UnreadCount(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	count, err := a.App.NotificationService.GetUnreadCount(ctx.Actor.ID)
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(map[string]int64{"count": count}, 1, "Unread count fetched"))
	return nil
}

// Broadcast - admin sends a bulk notification to a role
func (a *api) Broadcast(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	if ctx.Actor.Role != consts.RoleAdmin {
		return apperr.NewForbidden("only admins may broadcast")
	}

	var payload struct {
		Title    string   `json:"title"`
		Message  string   `json:"message"`
		Priority string   `json:"priority"`
		Channels []string `json:"channels"`
		Roles    []string `json:"roles"`
	}
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		return errors.Wrap(err, "unable to decode payload json")
	}
	if payload.Title == "" || payload.Message == "" {
		return apperr.NewValidation("invalid broadcast", map[string]string{"title": "required", "message": "required"})
	}
	if payload.Priority == "" {
		payload.Priority = consts.PriorityMedium
	}
	if len(payload.Channels) == 0 {
		payload.Channels = []string{consts.ChannelInApp}
	}

	err = a.App.NotificationService.Broadcast(payload.Title, payload.Message, payload.Priority, payload.Channels, payload.Roles)
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(nil, 1, "Broadcast queued"))
	return nil
}

// GetProviderConfig - provider settings with secrets masked
func (a *api) GetProviderConfig(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	if ctx.Actor.Role != consts.RoleAdmin {
		return apperr.NewForbidden("only admins may view provider configuration")
	}

	cfg, err := a.App.ProviderService.GetMasked()
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(cfg, 1, "Provider configuration fetched"))
	return nil
}

// UpdateProviderConfig - re-encrypt and persist provider settings
func (a *api) UpdateProviderConfig(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	if ctx.Actor.Role != consts.RoleAdmin {
		return apperr.NewForbidden("only admins may update provider configuration")
	}

	var payload model.APIConfiguration
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		return errors.Wrap(err, "unable to decode payload json")
	}

	cfg, err := a.App.ProviderService.Update(&payload, ctx.Actor.ID)
	if err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(cfg, 1, "Provider configuration updated"))
	return nil
}

// ReloadProviderConfig - drop the cached snapshot and reread storage
func (a *api) ReloadProviderConfig(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	if ctx.Actor.Role != consts.RoleAdmin {
		return apperr.NewForbidden("only admins may reload provider configuration")
	}

	if err := a.App.ProviderService.Reload(); err != nil {
		return err
	}
	json.NewEncoder(w).Encode(util.SetResponse(nil, 1, "Provider configuration reloaded"))
	return nil
}

// TestProviderConfig - send a probe message through one channel
func (a *api) TestProviderConfig(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	if ctx.Actor.Role != consts.RoleAdmin {
		return apperr.NewForbidden("only admins may test provider configuration")
	}

	var payload struct {
		Channel string `json:"channel"`
	}
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		return errors.Wrap(err, "unable to decode payload json")
	}

	switch payload.Channel {
	case consts.ChannelSMS, consts.ChannelEmail, consts.ChannelWhatsApp, "":
	default:
		return apperr.NewValidation("invalid channel", map[string]string{"channel": payload.Channel})
	}

	channels := []string{consts.ChannelInApp}
	if payload.Channel != "" {
		channels = append(channels, payload.Channel)
	}

	report := a.App.NotificationService.Notify(notification.Input{
		Recipients: []int{ctx.Actor.ID},
		Title:      "Provider configuration test",
		Message:    "If you received this, the channel is configured correctly.",
		Category:   consts.CategorySystem,
		Priority:   consts.PriorityLow,
		Channels:   channels,
	})
	json.NewEncoder(w).Encode(util.SetResponse(report, 1, "Provider test dispatched"))
	return nil
}
