package donation

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bloodlink-app/bloodlink-server/app/config"
	"github.com/bloodlink-app/bloodlink-server/app/donor"
	"github.com/bloodlink-app/bloodlink-server/app/eligibility"
	"github.com/bloodlink-app/bloodlink-server/app/notification"
	"github.com/bloodlink-app/bloodlink-server/app/request"
	"github.com/bloodlink-app/bloodlink-server/apperr"
	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/mongodatabase"
	"github.com/bloodlink-app/bloodlink-server/util"
)

// Input one recorded donation
type Input struct {
	DonorID     string    `json:"donorId"`
	BloodBankID string    `json:"bloodBankId"`
	Component   string    `json:"component"`
	Volume      float64   `json:"volume"`
	Date        time.Time `json:"date"`
	// optional: the blood request this donation goes toward
	RequestID string `json:"requestId,omitempty"`
}

// Result the outcome of recording a donation. RequestError is advisory:
// the donation stands even when the request-side write failed.
type Result struct {
	Donor         *model.Donor   `json:"donor"`
	Request       *model.Request `json:"request,omitempty"`
	RequestError  string         `json:"requestError,omitempty"`
	PointsAwarded int            `json:"pointsAwarded"`
	NewBadges     []model.Badge  `json:"newBadges"`
}

// Service - defines Donation service
type Service interface {
	RecordDonation(in Input) (*Result, error)
}

type service struct {
	config        *config.Config
	mongodb       *mongodatabase.DBConfig
	donors        donor.Service
	requests      request.Service
	notifications notification.Service
}

// NewService - creates new Donation service
func NewService(repos *model.Repos, conf *config.Config, donors donor.Service, requests request.Service, notifications notification.Service) Service {
	return &service{
		config:        conf,
		mongodb:       repos.MongoDB,
		donors:        donors,
		requests:      requests,
		notifications: notifications,
	}
}

func (s *service) RecordDonation(in Input) (*Result, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	donorDoc, err := s.donors.GetDonor(in.DonorID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := model.DonationRecord{
		Date:      in.Date,
		Component: in.Component,
		Volume:    in.Volume,
	}
	if in.BloodBankID != "" {
		bankID, err := primitive.ObjectIDFromHex(in.BloodBankID)
		if err != nil {
			return nil, apperr.NewValidation("invalid blood bank id", map[string]string{"bloodBankId": in.BloodBankID})
		}
		record.BloodBank = bankID
	}

	res := eligibility.Compute(&record.Date, s.config.CooldownDays, now)
	points := s.config.RewardPointsPerDonation
	newBadges := applyDonation(donorDoc, record, res.EligibleSince, res.IsEligible, points, now)

	if err := persistDonor(s.mongodb, donorDoc); err != nil {
		return nil, err
	}

	result := &Result{
		Donor:         donorDoc,
		PointsAwarded: points,
		NewBadges:     newBadges,
	}
	if result.NewBadges == nil {
		result.NewBadges = []model.Badge{}
	}

	if in.RequestID != "" {
		req, err := s.requests.RecordFulfillment(in.RequestID, model.Fulfillment{
			Donor:       donorDoc.ID,
			BloodBank:   record.BloodBank,
			Units:       1,
			Status:      consts.FulfillmentCollected,
			FulfilledAt: in.Date,
		})
		if err != nil {
			result.RequestError = err.Error()
		} else {
			result.Request = req
		}
	}

	s.thankDonor(donorDoc, points, newBadges)
	return result, nil
}

func (s *service) validate(in *Input) error {
	fields := map[string]string{}
	if in.DonorID == "" {
		fields["donorId"] = "required"
	}
	if in.Component == "" {
		in.Component = model.Components[0]
	} else if !util.Contains(model.Components, in.Component) {
		fields["component"] = "unrecognized component"
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	if in.Date.After(time.Now()) {
		fields["date"] = "cannot be in the future"
	}
	if len(fields) > 0 {
		return apperr.NewValidation("invalid donation", fields)
	}
	return nil
}

// thankDonor queues the confirmation; never fails the recording
func (s *service) thankDonor(donorDoc *model.Donor, points int, badges []model.Badge) {
	defer util.Recover()

	message := fmt.Sprintf("Thank you for donating! You earned %d reward points.", points)
	if len(badges) > 0 {
		names := make([]string, 0, len(badges))
		for _, b := range badges {
			names = append(names, b.Name)
		}
		message += fmt.Sprintf(" New badge: %s.", strings.Join(names, ", "))
	}

	err := s.notifications.Enqueue(notification.Input{
		Recipients: []int{donorDoc.AccountID},
		Title:      "Donation recorded",
		Message:    message,
		Category:   consts.CategoryDonationConfirmed,
		Priority:   consts.PriorityMedium,
		Channels:   []string{consts.ChannelInApp, consts.ChannelEmail},
	})
	if err != nil {
		logrus.Error("unable to enqueue donation confirmation: ", err)
	}
}
