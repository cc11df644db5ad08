package notification

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bloodlink-app/bloodlink-server/app/config"
	"github.com/bloodlink-app/bloodlink-server/app/provider"
	"github.com/bloodlink-app/bloodlink-server/cache"
	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/database"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/mongodatabase"
)

// Service - defines Notification service
type Service interface {
	Notify(in Input) *Report
	Enqueue(in Input) error
	Broadcast(title, message, priority string, channels, roles []string) error
	DrainOutbox(limit int64) (int, error)

	GetNotificationList(accountID int, limit, skip int64) ([]model.Notification, error)
	MarkNotificationAsRead(notificationID string, accountID int) error
	MarkAllNotificationAsRead(accountID int) error
	GetUnreadCount(accountID int) (int64, error)
}

type service struct {
	config     *config.Config
	dbMaster   *database.Database
	dbReplica  *database.Database
	mongodb    *mongodatabase.DBConfig
	cache      *cache.Cache
	dispatcher *Dispatcher
}

// NewService - creates new Notification service
func NewService(repos *model.Repos, conf *config.Config, providers provider.Service, emitter Emitter) Service {
	return &service{
		config:     conf,
		mongodb:    repos.MongoDB,
		dbMaster:   repos.MasterDB,
		dbReplica:  repos.ReplicaDB,
		cache:      repos.Cache,
		dispatcher: NewDispatcher(repos, conf, providers, emitter),
	}
}

// Notify dispatches immediately on the calling goroutine
func (s *service) Notify(in Input) *Report {
	return s.dispatcher.Dispatch(context.TODO(), in)
}

// Enqueue stores the intent; the outbox sweep delivers it
func (s *service) Enqueue(in Input) error {
	entry := &model.OutboxEntry{
		Recipients: in.Recipients,
		Title:      in.Title,
		Message:    in.Message,
		Category:   in.Category,
		Priority:   in.Priority,
		Channels:   in.Channels,
		Data:       in.Data,
	}
	return enqueueOutbox(s.mongodb, entry)
}

func (s *service) Broadcast(title, message, priority string, channels, roles []string) error {
	recipients, err := listAccountIDsByRole(s.dbMaster, roles)
	if err != nil {
		return err
	}

	return s.Enqueue(Input{
		Recipients: recipients,
		Title:      title,
		Message:    message,
		Category:   consts.CategoryAnnouncement,
		Priority:   priority,
		Channels:   channels,
	})
}

// DrainOutbox delivers pending entries and returns how many were handled.
// An entry whose every attempt failed is marked failed and not retried;
// partial delivery counts as delivered.
func (s *service) DrainOutbox(limit int64) (int, error) {
	entries, err := fetchPendingOutbox(s.mongodb, limit)
	if err != nil {
		return 0, err
	}

	handled := 0
	for _, entry := range entries {
		report := s.dispatcher.Dispatch(context.TODO(), Input{
			Recipients: entry.Recipients,
			Title:      entry.Title,
			Message:    entry.Message,
			Category:   entry.Category,
			Priority:   entry.Priority,
			Channels:   entry.Channels,
			Data:       entry.Data,
		})

		status, lastError := model.OutboxDelivered, ""
		if failed := totalFailed(report); failed > 0 && failed == len(report.Attempts) {
			status = model.OutboxFailed
			lastError = report.Attempts[0].Error
		}

		if err := finishOutbox(s.mongodb, entry.ID, status, lastError); err != nil {
			logrus.Error("unable to finish outbox entry ", entry.ID.Hex(), ": ", err)
			continue
		}
		handled++
	}
	return handled, nil
}

func totalFailed(r *Report) int {
	n := 0
	for _, a := range r.Attempts {
		if a.Error != "" {
			n++
		}
	}
	return n
}

func (s *service) GetNotificationList(accountID int, limit, skip int64) ([]model.Notification, error) {
	return getNotificationList(s.mongodb, accountID, limit, skip)
}

func (s *service) MarkNotificationAsRead(notificationID string, accountID int) error {
	return markNotificationAsRead(s.mongodb, s.dbMaster, notificationID, accountID, time.Now())
}

func (s *service) MarkAllNotificationAsRead(accountID int) error {
	return markAllNotificationAsRead(s.mongodb, s.dbMaster, accountID, time.Now())
}

func (s *service) GetUnreadCount(accountID int) (int64, error) {
	return getUnreadCount(s.dbMaster, accountID)
}
