package donor

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/bloodlink-app/bloodlink-server/app/config"
	"github.com/bloodlink-app/bloodlink-server/app/eligibility"
	"github.com/bloodlink-app/bloodlink-server/app/geo"
	"github.com/bloodlink-app/bloodlink-server/cache"
	"github.com/bloodlink-app/bloodlink-server/database"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/mongodatabase"
)

// Service - defines Donor service
type Service interface {
	GetDonor(donorID string) (*model.Donor, error)
	GetDonorByAccount(accountID int) (*model.Donor, error)
	SearchDonors(bloodType string, center geo.Point, radiusKm float64) ([]model.Donor, error)
	ListEligible() ([]model.Donor, error)

	// FindCandidates matches notifiable donors for an urgent request:
	// compatible type, eligible, available, opted in, within radius of the
	// request location, nearest first.
	FindCandidates(bloodType string, center geo.Point, radiusKm float64) ([]model.Donor, error)

	// RecheckEligibility flips donors whose cooldown has lapsed and returns
	// their account ids so the caller can notify them.
	RecheckEligibility(now time.Time) ([]int, error)
}

type service struct {
	config    *config.Config
	dbMaster  *database.Database
	dbReplica *database.Database
	mongodb   *mongodatabase.DBConfig
	cache     *cache.Cache
}

// NewService - creates new Donor service
func NewService(repos *model.Repos, conf *config.Config) Service {
	return &service{
		config:    conf,
		mongodb:   repos.MongoDB,
		dbMaster:  repos.MasterDB,
		dbReplica: repos.ReplicaDB,
		cache:     repos.Cache,
	}
}

func (s *service) GetDonor(donorID string) (*model.Donor, error) {
	return getDonor(s.mongodb, s.dbMaster, donorID)
}

func (s *service) GetDonorByAccount(accountID int) (*model.Donor, error) {
	return getDonorByAccount(s.mongodb, accountID)
}

func (s *service) SearchDonors(bloodType string, center geo.Point, radiusKm float64) ([]model.Donor, error) {
	filter := bson.M{"availability.isAvailable": true}
	if bloodType != "" {
		filter["bloodType"] = bloodType
	}

	donors, err := findDonors(s.mongodb, filter)
	if err != nil {
		return nil, err
	}

	if !center.Unknown() && radiusKm > 0 {
		donors = rankDonors(donors, center, radiusKm, false)
	}
	return donors, nil
}

func (s *service) ListEligible() ([]model.Donor, error) {
	return findDonors(s.mongodb, bson.M{
		"isEligible":               true,
		"availability.isAvailable": true,
	})
}

func (s *service) FindCandidates(bloodType string, center geo.Point, radiusKm float64) ([]model.Donor, error) {
	if center.Unknown() {
		return []model.Donor{}, nil
	}
	if radiusKm <= 0 {
		radiusKm = s.config.NotifyRadiusKm
	}

	donors, err := findDonors(s.mongodb, bson.M{
		"bloodType":                              bloodType,
		"isEligible":                             true,
		"availability.isAvailable":               true,
		"notificationPreferences.urgentRequests": true,
	})
	if err != nil {
		return nil, err
	}

	return rankDonors(donors, center, radiusKm, true), nil
}

func (s *service) RecheckEligibility(now time.Time) ([]int, error) {
	donors, err := findDonors(s.mongodb, bson.M{"isEligible": false})
	if err != nil {
		return nil, err
	}

	var becameEligible []int
	for _, d := range donors {
		res := eligibility.Compute(d.LastDonationDate, s.config.CooldownDays, now)
		if !res.IsEligible {
			continue
		}
		if err := persistEligibility(s.mongodb, d.ID, res); err != nil {
			return becameEligible, err
		}
		if d.NotificationPreferences.EligibilityReminders {
			becameEligible = append(becameEligible, d.AccountID)
		}
	}
	return becameEligible, nil
}
