package inventory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bloodlink-app/bloodlink-server/apperr"
	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/mongodatabase"
)

// permitted unit status moves; issued, expired and discarded are final
var unitTransitions = map[string][]string{
	consts.UnitAvailable: {consts.UnitReserved, consts.UnitIssued, consts.UnitExpired, consts.UnitDiscarded},
	consts.UnitReserved:  {consts.UnitAvailable, consts.UnitIssued, consts.UnitExpired, consts.UnitDiscarded},
}

func canTransition(from, to string) bool {
	for _, allowed := range unitTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func getLedger(db *mongodatabase.DBConfig, inventoryID string) (*model.Inventory, error) {
	objectID, err := primitive.ObjectIDFromHex(inventoryID)
	if err != nil {
		return nil, apperr.NewValidation("invalid inventory id", map[string]string{"inventoryID": inventoryID})
	}

	dbConn, err := db.New(consts.Inventory)
	if err != nil {
		return nil, err
	}

	inventoryCollection, inventoryClient := dbConn.Collection, dbConn.Client
	defer inventoryClient.Disconnect(context.TODO())

	var inv model.Inventory
	err = inventoryCollection.FindOne(context.TODO(), bson.M{"_id": objectID}).Decode(&inv)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NewNotFound("inventory", inventoryID)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func findLedgers(db *mongodatabase.DBConfig, filter bson.M) ([]model.Inventory, error) {
	dbConn, err := db.New(consts.Inventory)
	if err != nil {
		return nil, err
	}

	inventoryCollection, inventoryClient := dbConn.Collection, dbConn.Client
	defer inventoryClient.Disconnect(context.TODO())

	cur, err := inventoryCollection.Find(context.TODO(), filter)
	if err != nil {
		return nil, err
	}

	var ledgers []model.Inventory
	err = cur.All(context.TODO(), &ledgers)
	if err != nil {
		return nil, err
	}
	if ledgers == nil {
		ledgers = []model.Inventory{}
	}
	return ledgers, nil
}

// findOrCreateLedger returns the ledger for a (bank, type, component)
// triple, creating an empty one on first intake
func findOrCreateLedger(db *mongodatabase.DBConfig, bankID primitive.ObjectID, managerAccountID int, bloodType, component string, reorderLevel int, loc model.Location) (*model.Inventory, error) {
	dbConn, err := db.New(consts.Inventory)
	if err != nil {
		return nil, err
	}

	inventoryCollection, inventoryClient := dbConn.Collection, dbConn.Client
	defer inventoryClient.Disconnect(context.TODO())

	filter := bson.M{"bloodBank": bankID, "bloodType": bloodType, "component": component}

	var inv model.Inventory
	err = inventoryCollection.FindOne(context.TODO(), filter).Decode(&inv)
	if err == nil {
		return &inv, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	now := time.Now()
	inv = model.Inventory{
		ID:               primitive.NewObjectID(),
		BloodBank:        bankID,
		ManagerAccountID: managerAccountID,
		BloodType:        bloodType,
		Component:        component,
		Units:            0,
		Unit:             []model.InventoryUnit{},
		ReorderLevel:     reorderLevel,
		Location:         loc,
		LastUpdated:      now,
		CreatedDate:      now,
	}
	_, err = inventoryCollection.InsertOne(context.TODO(), &inv)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// persistLedger writes the unit array and the recomputed available count
// in the same update
func persistLedger(db *mongodatabase.DBConfig, inv *model.Inventory) error {
	dbConn, err := db.New(consts.Inventory)
	if err != nil {
		return err
	}

	inventoryCollection, inventoryClient := dbConn.Collection, dbConn.Client
	defer inventoryClient.Disconnect(context.TODO())

	inv.Units = inv.AvailableUnits()
	inv.LastUpdated = time.Now()

	update := bson.M{"$set": bson.M{
		"unit":        inv.Unit,
		"units":       inv.Units,
		"lastUpdated": inv.LastUpdated,
	}}
	_, err = inventoryCollection.UpdateOne(context.TODO(), bson.M{"_id": inv.ID}, update)
	return err
}
