package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bloodlink-app/bloodlink-server/consts"
)

// UnitTestResults per-pathogen screening outcomes for a bag
type UnitTestResults struct {
	HIV        string `bson:"hiv" json:"hiv"`
	HepatitisB string `bson:"hepatitisB" json:"hepatitisB"`
	HepatitisC string `bson:"hepatitisC" json:"hepatitisC"`
	Syphilis   string `bson:"syphilis" json:"syphilis"`
	Malaria    string `bson:"malaria" json:"malaria"`
}

// InventoryUnit one physical bag in the ledger. Entries are never removed;
// status transitions keep the full trace.
type InventoryUnit struct {
	BagNumber       string             `bson:"bagNumber" json:"bagNumber"`
	CollectionDate  time.Time          `bson:"collectionDate" json:"collectionDate"`
	ExpiryDate      time.Time          `bson:"expiryDate" json:"expiryDate"`
	Donor           primitive.ObjectID `bson:"donor,omitempty" json:"donor,omitempty"`
	Volume          float64            `bson:"volume" json:"volume"`
	Status          string             `bson:"status" json:"status"`
	TestResults     UnitTestResults    `bson:"testResults" json:"testResults"`
	StorageLocation string             `bson:"storageLocation,omitempty" json:"storageLocation,omitempty"`
}

// Inventory the ledger for one (blood bank, blood type, component) triple.
// Units is derived: always the count of available entries in Unit.
type Inventory struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	BloodBank primitive.ObjectID `bson:"bloodBank" json:"bloodBank"`
	// the account that manages this bank's stock; low-stock alerts go here
	ManagerAccountID int             `bson:"managerAccountId" json:"managerAccountId"`
	BloodType        string          `bson:"bloodType" json:"bloodType"`
	Component        string          `bson:"component" json:"component"`
	Units            int             `bson:"units" json:"units"`
	Unit             []InventoryUnit `bson:"unit" json:"unit"`
	ReorderLevel     int             `bson:"reorderLevel" json:"reorderLevel"`
	Location         Location        `bson:"location,omitempty" json:"location,omitempty"`
	LastUpdated      time.Time       `bson:"lastUpdated" json:"lastUpdated"`
	CreatedDate      time.Time       `bson:"createdDate" json:"createdDate"`
}

// AvailableUnits recomputes the derived count from the ledger
func (inv *Inventory) AvailableUnits() int {
	n := 0
	for i := range inv.Unit {
		if inv.Unit[i].Status == consts.UnitAvailable {
			n++
		}
	}
	return n
}
