package request

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bloodlink-app/bloodlink-server/app/config"
	"github.com/bloodlink-app/bloodlink-server/app/donor"
	"github.com/bloodlink-app/bloodlink-server/app/geo"
	"github.com/bloodlink-app/bloodlink-server/app/notification"
	"github.com/bloodlink-app/bloodlink-server/apperr"
	"github.com/bloodlink-app/bloodlink-server/cache"
	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/database"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/mongodatabase"
	"github.com/bloodlink-app/bloodlink-server/util"
)

// Service - defines Request service
type Service interface {
	CreateRequest(req *model.Request, actor *model.Actor) (*model.Request, error)
	GetRequest(requestID string) (*model.Request, error)
	ListRequests(status, urgency, bloodType string) ([]model.Request, error)
	ListNearby(center geo.Point, radiusKm float64) ([]model.Request, error)
	Respond(requestID string, actor *model.Actor, response, message string) (*model.Request, error)
	CancelRequest(requestID string, actor *model.Actor) (*model.Request, error)

	// RecordFulfillment appends a contribution and applies the transition
	// rule. Donation recording calls this after the donor-side write.
	RecordFulfillment(requestID string, f model.Fulfillment) (*model.Request, error)

	// ExpireOverdue is the sweep hook; returns how many requests flipped.
	ExpireOverdue(now time.Time) (int64, error)
}

// Emitter pushes a realtime event to an account's live sessions
type Emitter interface {
	EmitToUser(accountID int, event string, payload interface{})
}

type service struct {
	config        *config.Config
	dbMaster      *database.Database
	dbReplica     *database.Database
	mongodb       *mongodatabase.DBConfig
	cache         *cache.Cache
	donors        donor.Service
	notifications notification.Service
	emitter       Emitter
}

// NewService - creates new Request service
func NewService(repos *model.Repos, conf *config.Config, donors donor.Service, notifications notification.Service, emitter Emitter) Service {
	return &service{
		config:        conf,
		mongodb:       repos.MongoDB,
		dbMaster:      repos.MasterDB,
		dbReplica:     repos.ReplicaDB,
		cache:         repos.Cache,
		donors:        donors,
		notifications: notifications,
		emitter:       emitter,
	}
}

func validateCreate(req *model.Request) error {
	fields := map[string]string{}
	if !util.Contains(model.BloodTypes, req.BloodType) {
		fields["bloodType"] = "unrecognized blood type"
	}
	if req.Component != "" && !util.Contains(model.Components, req.Component) {
		fields["component"] = "unrecognized component"
	}
	if req.UnitsRequired <= 0 {
		fields["unitsRequired"] = "must be at least 1"
	}
	if req.RequiredBy.IsZero() || !req.RequiredBy.After(time.Now()) {
		fields["requiredBy"] = "must be in the future"
	}
	switch req.Urgency {
	case consts.UrgencyCritical, consts.UrgencyUrgent, consts.UrgencyNormal:
	default:
		fields["urgency"] = "must be critical, urgent or normal"
	}
	if len(fields) > 0 {
		return apperr.NewValidation("invalid blood request", fields)
	}
	return nil
}

func (s *service) CreateRequest(req *model.Request, actor *model.Actor) (*model.Request, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	req.ID = primitive.NewObjectID()
	req.RequestedBy.AccountID = actor.ID
	req.Status = consts.StatusOpen
	if req.Component == "" {
		req.Component = model.Components[0]
	}
	req.Fulfillments = []model.Fulfillment{}
	req.Responses = []model.DonorResponse{}
	req.DonorsNotified = []primitive.ObjectID{}
	req.UnitsFulfilled = 0
	req.NotificationsSent = 0
	req.CreatedDate = now
	req.UpdatedDate = now

	if err := insertRequest(s.mongodb, req); err != nil {
		return nil, err
	}

	// matching and notification are advisory: the request stands even when
	// nothing is deliverable
	if req.Urgency == consts.UrgencyCritical || req.IsEmergency {
		s.notifyCandidates(req)
	}

	return req, nil
}

func (s *service) notifyCandidates(req *model.Request) {
	defer util.Recover()

	center := geo.FromCoordinates(req.Location.Coordinates)
	candidates, err := s.donors.FindCandidates(req.BloodType, center, s.config.NotifyRadiusKm)
	if err != nil {
		logrus.Error("donor matching failed for request ", req.ID.Hex(), ": ", err)
		return
	}
	if len(candidates) == 0 {
		return
	}

	recipients := make([]int, 0, len(candidates))
	donorIDs := make([]primitive.ObjectID, 0, len(candidates))
	for _, c := range candidates {
		recipients = append(recipients, c.AccountID)
		donorIDs = append(donorIDs, c.ID)
	}

	title := fmt.Sprintf("Urgent: %s blood needed", req.BloodType)
	message := fmt.Sprintf("%d unit(s) of %s %s needed near %s by %s.",
		req.UnitsRequired, req.BloodType, req.Component,
		req.Location.City, req.RequiredBy.Format("Jan 2, 3:04 PM"))

	err = s.notifications.Enqueue(notification.Input{
		Recipients: recipients,
		Title:      title,
		Message:    message,
		Category:   consts.CategoryBloodRequest,
		Priority:   consts.PriorityCritical,
		Channels:   []string{consts.ChannelInApp, consts.ChannelSMS, consts.ChannelWhatsApp},
		Data:       model.NotificationData{RequestID: req.ID},
	})
	if err != nil {
		logrus.Error("unable to enqueue request notifications: ", err)
		return
	}

	if s.emitter != nil {
		for _, accountID := range recipients {
			s.emitter.EmitToUser(accountID, consts.EventUrgentRequest, req)
		}
	}

	req.DonorsNotified = donorIDs
	req.NotificationsSent = len(recipients)
	if err := recordNotified(s.mongodb, req.ID, donorIDs, len(recipients)); err != nil {
		logrus.Error("unable to record notified donors on request ", req.ID.Hex(), ": ", err)
	}
}

func (s *service) GetRequest(requestID string) (*model.Request, error) {
	return getRequest(s.mongodb, requestID)
}

func (s *service) ListRequests(status, urgency, bloodType string) ([]model.Request, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	if urgency != "" {
		filter["urgency"] = urgency
	}
	if bloodType != "" {
		filter["bloodType"] = bloodType
	}
	return findRequests(s.mongodb, filter)
}

func (s *service) ListNearby(center geo.Point, radiusKm float64) ([]model.Request, error) {
	if center.Unknown() {
		return []model.Request{}, nil
	}
	if radiusKm <= 0 {
		radiusKm = s.config.NotifyRadiusKm
	}

	open, err := findRequests(s.mongodb, bson.M{
		"status": bson.M{"$in": []string{consts.StatusOpen, consts.StatusPartiallyFulfilled}},
	})
	if err != nil {
		return nil, err
	}

	points := make([]geo.Point, len(open))
	for i, r := range open {
		points[i] = geo.FromCoordinates(r.Location.Coordinates)
	}

	ranked := geo.RankWithinRadius(center, points, radiusKm)
	out := make([]model.Request, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, open[r.Index])
	}
	return out, nil
}

func (s *service) Respond(requestID string, actor *model.Actor, response, message string) (*model.Request, error) {
	switch response {
	case consts.ResponseWilling, consts.ResponseNotAvailable, consts.ResponseNotEligible:
	default:
		return nil, apperr.NewValidation("invalid response", map[string]string{
			"response": "must be willing, not-available or not-eligible",
		})
	}

	req, err := getRequest(s.mongodb, requestID)
	if err != nil {
		return nil, err
	}
	if req.IsTerminal() {
		return nil, apperr.NewConflict("request is " + req.Status + " and no longer accepts responses")
	}

	donorDoc, err := s.donors.GetDonorByAccount(actor.ID)
	if err != nil {
		return nil, err
	}

	resp := model.DonorResponse{
		Donor:       donorDoc.ID,
		Response:    response,
		Message:     message,
		RespondedAt: time.Now(),
	}
	if err := appendResponse(s.mongodb, req.ID, resp); err != nil {
		return nil, err
	}
	req.Responses = append(req.Responses, resp)

	// a willing donor is worth telling the requester about; advisory only
	if response == consts.ResponseWilling {
		err := s.notifications.Enqueue(notification.Input{
			Recipients: []int{req.RequestedBy.AccountID},
			Title:      "A donor responded to your request",
			Message:    fmt.Sprintf("A %s donor is willing to donate for your request.", req.BloodType),
			Category:   consts.CategoryBloodRequest,
			Priority:   consts.PriorityHigh,
			Channels:   []string{consts.ChannelInApp},
			Data:       model.NotificationData{RequestID: req.ID},
		})
		if err != nil {
			logrus.Error("unable to enqueue responder notification: ", err)
		}
	}

	return req, nil
}

func (s *service) CancelRequest(requestID string, actor *model.Actor) (*model.Request, error) {
	req, err := getRequest(s.mongodb, requestID)
	if err != nil {
		return nil, err
	}
	if actor.Role != consts.RoleAdmin && req.RequestedBy.AccountID != actor.ID {
		return nil, apperr.NewForbidden("only the requester may cancel this request")
	}
	if req.IsTerminal() {
		return nil, apperr.NewConflict("request is already " + req.Status)
	}

	if err := setStatus(s.mongodb, req.ID, consts.StatusCancelled); err != nil {
		return nil, err
	}
	req.Status = consts.StatusCancelled
	return req, nil
}

func (s *service) RecordFulfillment(requestID string, f model.Fulfillment) (*model.Request, error) {
	req, err := getRequest(s.mongodb, requestID)
	if err != nil {
		return nil, err
	}
	if req.IsTerminal() {
		return nil, apperr.NewConflict("request is " + req.Status + " and no longer accepts fulfillments")
	}
	if f.Units <= 0 {
		return nil, apperr.NewValidation("invalid fulfillment", map[string]string{"units": "must be at least 1"})
	}
	if f.Status == "" {
		f.Status = consts.FulfillmentCollected
	}
	if f.FulfilledAt.IsZero() {
		f.FulfilledAt = time.Now()
	}

	req, err = appendFulfillment(s.mongodb, req, f, time.Now())
	if err != nil {
		return nil, err
	}

	if req.Status == consts.StatusFulfilled {
		err := s.notifications.Enqueue(notification.Input{
			Recipients: []int{req.RequestedBy.AccountID},
			Title:      "Your blood request is fulfilled",
			Message:    fmt.Sprintf("All %d required unit(s) of %s have been arranged.", req.UnitsRequired, req.BloodType),
			Category:   consts.CategoryRequestFulfilled,
			Priority:   consts.PriorityHigh,
			Channels:   []string{consts.ChannelInApp, consts.ChannelEmail},
			Data:       model.NotificationData{RequestID: req.ID},
		})
		if err != nil {
			logrus.Error("unable to enqueue fulfillment notification: ", err)
		}
	}

	return req, nil
}

func (s *service) ExpireOverdue(now time.Time) (int64, error) {
	return expireOverdue(s.mongodb, now)
}
