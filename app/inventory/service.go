package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bloodlink-app/bloodlink-server/app/config"
	"github.com/bloodlink-app/bloodlink-server/app/geo"
	"github.com/bloodlink-app/bloodlink-server/app/notification"
	"github.com/bloodlink-app/bloodlink-server/apperr"
	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/mongodatabase"
	"github.com/bloodlink-app/bloodlink-server/util"
)

// DefaultReorderLevel stock floor used when intake does not set one
const DefaultReorderLevel = 5

// AddUnitInput one bag entering a bank's ledger
type AddUnitInput struct {
	BloodBankID     string                `json:"bloodBankId"`
	BloodType       string                `json:"bloodType"`
	Component       string                `json:"component"`
	ReorderLevel    int                   `json:"reorderLevel,omitempty"`
	Location        model.Location        `json:"location,omitempty"`
	BagNumber       string                `json:"bagNumber,omitempty"`
	CollectionDate  time.Time             `json:"collectionDate"`
	ExpiryDate      time.Time             `json:"expiryDate"`
	DonorID         string                `json:"donorId,omitempty"`
	Volume          float64               `json:"volume"`
	StorageLocation string                `json:"storageLocation,omitempty"`
	TestResults     model.UnitTestResults `json:"testResults,omitempty"`
}

// ExpiringUnit one bag inside the expiry horizon, flattened for reporting
type ExpiringUnit struct {
	InventoryID      primitive.ObjectID `json:"inventoryId"`
	BloodBank        primitive.ObjectID `json:"bloodBank"`
	ManagerAccountID int                `json:"managerAccountId"`
	BloodType        string             `json:"bloodType"`
	Component        string             `json:"component"`
	BagNumber        string             `json:"bagNumber"`
	ExpiryDate       time.Time          `json:"expiryDate"`
}

// Service - defines Inventory service
type Service interface {
	AddUnit(in AddUnitInput, actor *model.Actor) (*model.Inventory, error)
	GetLedger(inventoryID string) (*model.Inventory, error)
	Search(bloodType, component string, center geo.Point, radiusKm float64) ([]model.Inventory, error)
	ListByBank(bankID string) ([]model.Inventory, error)
	SetUnitStatus(inventoryID, bagNumber, status string) (*model.Inventory, error)
	ListLowStock() ([]model.Inventory, error)
	ListExpiring(now time.Time) ([]ExpiringUnit, error)

	// ExpireUnits flips available bags past their expiry date; sweep hook.
	ExpireUnits(now time.Time) (int, error)
}

type service struct {
	config        *config.Config
	mongodb       *mongodatabase.DBConfig
	notifications notification.Service
}

// NewService - creates new Inventory service
func NewService(repos *model.Repos, conf *config.Config, notifications notification.Service) Service {
	return &service{
		config:        conf,
		mongodb:       repos.MongoDB,
		notifications: notifications,
	}
}

func (s *service) AddUnit(in AddUnitInput, actor *model.Actor) (*model.Inventory, error) {
	fields := map[string]string{}
	if !util.Contains(model.BloodTypes, in.BloodType) {
		fields["bloodType"] = "unrecognized blood type"
	}
	if in.Component == "" {
		in.Component = model.Components[0]
	} else if !util.Contains(model.Components, in.Component) {
		fields["component"] = "unrecognized component"
	}
	if in.ExpiryDate.IsZero() || !in.ExpiryDate.After(time.Now()) {
		fields["expiryDate"] = "must be in the future"
	}
	bankID, err := primitive.ObjectIDFromHex(in.BloodBankID)
	if err != nil {
		fields["bloodBankId"] = "invalid id"
	}
	if len(fields) > 0 {
		return nil, apperr.NewValidation("invalid inventory intake", fields)
	}

	if in.ReorderLevel <= 0 {
		in.ReorderLevel = DefaultReorderLevel
	}
	if in.BagNumber == "" {
		in.BagNumber = "BAG-" + uuid.New().String()
	}
	if in.CollectionDate.IsZero() {
		in.CollectionDate = time.Now()
	}

	inv, err := findOrCreateLedger(s.mongodb, bankID, actor.ID, in.BloodType, in.Component, in.ReorderLevel, in.Location)
	if err != nil {
		return nil, err
	}

	for _, u := range inv.Unit {
		if u.BagNumber == in.BagNumber {
			return nil, apperr.NewConflict("bag " + in.BagNumber + " already recorded")
		}
	}

	unit := model.InventoryUnit{
		BagNumber:       in.BagNumber,
		CollectionDate:  in.CollectionDate,
		ExpiryDate:      in.ExpiryDate,
		Volume:          in.Volume,
		Status:          consts.UnitAvailable,
		TestResults:     in.TestResults,
		StorageLocation: in.StorageLocation,
	}
	if in.DonorID != "" {
		donorID, err := primitive.ObjectIDFromHex(in.DonorID)
		if err != nil {
			return nil, apperr.NewValidation("invalid donor id", map[string]string{"donorId": in.DonorID})
		}
		unit.Donor = donorID
	}

	inv.Unit = append(inv.Unit, unit)
	if err := persistLedger(s.mongodb, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *service) GetLedger(inventoryID string) (*model.Inventory, error) {
	return getLedger(s.mongodb, inventoryID)
}

func (s *service) Search(bloodType, component string, center geo.Point, radiusKm float64) ([]model.Inventory, error) {
	filter := bson.M{"units": bson.M{"$gt": 0}}
	if bloodType != "" {
		filter["bloodType"] = bloodType
	}
	if component != "" {
		filter["component"] = component
	}

	ledgers, err := findLedgers(s.mongodb, filter)
	if err != nil {
		return nil, err
	}

	if !center.Unknown() && radiusKm > 0 {
		points := make([]geo.Point, len(ledgers))
		for i, l := range ledgers {
			points[i] = geo.FromCoordinates(l.Location.Coordinates)
		}
		ranked := geo.RankWithinRadius(center, points, radiusKm)
		near := make([]model.Inventory, 0, len(ranked))
		for _, r := range ranked {
			near = append(near, ledgers[r.Index])
		}
		ledgers = near
	}
	return ledgers, nil
}

func (s *service) ListByBank(bankID string) ([]model.Inventory, error) {
	objectID, err := primitive.ObjectIDFromHex(bankID)
	if err != nil {
		return nil, apperr.NewValidation("invalid blood bank id", map[string]string{"bankID": bankID})
	}
	return findLedgers(s.mongodb, bson.M{"bloodBank": objectID})
}

func (s *service) SetUnitStatus(inventoryID, bagNumber, status string) (*model.Inventory, error) {
	switch status {
	case consts.UnitAvailable, consts.UnitReserved, consts.UnitIssued, consts.UnitExpired, consts.UnitDiscarded:
	default:
		return nil, apperr.NewValidation("invalid unit status", map[string]string{"status": status})
	}

	inv, err := getLedger(s.mongodb, inventoryID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range inv.Unit {
		if inv.Unit[i].BagNumber == bagNumber {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperr.NewNotFound("inventory unit", bagNumber)
	}

	from := inv.Unit[idx].Status
	if from == status {
		return inv, nil
	}
	if !canTransition(from, status) {
		return nil, apperr.NewConflict("unit is " + from + " and cannot become " + status)
	}

	before := inv.AvailableUnits()
	inv.Unit[idx].Status = status
	if err := persistLedger(s.mongodb, inv); err != nil {
		return nil, err
	}

	if crossedReorder(before, inv.Units, inv.ReorderLevel) {
		s.alertLowStock(inv)
	}
	return inv, nil
}

// crossedReorder reports whether a mutation took the available count from
// above the floor to at-or-below it. Mutations that stay below the floor
// do not re-alert.
func crossedReorder(before, after, level int) bool {
	return before > level && after <= level
}

func (s *service) alertLowStock(inv *model.Inventory) {
	defer util.Recover()

	err := s.notifications.Enqueue(notification.Input{
		Recipients: []int{inv.ManagerAccountID},
		Title:      fmt.Sprintf("Low stock: %s %s", inv.BloodType, inv.Component),
		Message: fmt.Sprintf("Only %d unit(s) of %s %s remain (reorder level %d).",
			inv.Units, inv.BloodType, inv.Component, inv.ReorderLevel),
		Category: consts.CategoryLowInventoryAlert,
		Priority: consts.PriorityHigh,
		Channels: []string{consts.ChannelInApp, consts.ChannelEmail},
		Data:     model.NotificationData{BloodBankID: inv.BloodBank},
	})
	if err != nil {
		logrus.Error("unable to enqueue low-stock alert: ", err)
	}
}

func (s *service) ListLowStock() ([]model.Inventory, error) {
	return findLedgers(s.mongodb, bson.M{
		"$expr": bson.M{"$lte": []string{"$units", "$reorderLevel"}},
	})
}

func (s *service) ListExpiring(now time.Time) ([]ExpiringUnit, error) {
	horizon := now.AddDate(0, 0, s.config.ExpiryHorizonDays)

	ledgers, err := findLedgers(s.mongodb, bson.M{
		"unit": bson.M{"$elemMatch": bson.M{
			"status":     consts.UnitAvailable,
			"expiryDate": bson.M{"$lte": horizon},
		}},
	})
	if err != nil {
		return nil, err
	}

	var expiring []ExpiringUnit
	for _, inv := range ledgers {
		for _, u := range inv.Unit {
			if u.Status == consts.UnitAvailable && !u.ExpiryDate.After(horizon) {
				expiring = append(expiring, ExpiringUnit{
					InventoryID:      inv.ID,
					BloodBank:        inv.BloodBank,
					ManagerAccountID: inv.ManagerAccountID,
					BloodType:        inv.BloodType,
					Component:        inv.Component,
					BagNumber:        u.BagNumber,
					ExpiryDate:       u.ExpiryDate,
				})
			}
		}
	}
	if expiring == nil {
		expiring = []ExpiringUnit{}
	}
	return expiring, nil
}

func (s *service) ExpireUnits(now time.Time) (int, error) {
	ledgers, err := findLedgers(s.mongodb, bson.M{
		"unit": bson.M{"$elemMatch": bson.M{
			"status":     consts.UnitAvailable,
			"expiryDate": bson.M{"$lt": now},
		}},
	})
	if err != nil {
		return 0, err
	}

	flipped := 0
	for i := range ledgers {
		inv := &ledgers[i]
		changed := false
		for j := range inv.Unit {
			if inv.Unit[j].Status == consts.UnitAvailable && inv.Unit[j].ExpiryDate.Before(now) {
				inv.Unit[j].Status = consts.UnitExpired
				flipped++
				changed = true
			}
		}
		if !changed {
			continue
		}

		before := inv.Units
		if err := persistLedger(s.mongodb, inv); err != nil {
			logrus.Error("unable to persist expired units on ledger ", inv.ID.Hex(), ": ", err)
			continue
		}
		if crossedReorder(before, inv.Units, inv.ReorderLevel) {
			s.alertLowStock(inv)
		}
	}
	return flipped, nil
}
