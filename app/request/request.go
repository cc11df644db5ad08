package request

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bloodlink-app/bloodlink-server/apperr"
	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/mongodatabase"
)

func insertRequest(db *mongodatabase.DBConfig, req *model.Request) error {
	dbConn, err := db.New(consts.Request)
	if err != nil {
		return err
	}

	requestCollection, requestClient := dbConn.Collection, dbConn.Client
	defer requestClient.Disconnect(context.TODO())

	_, err = requestCollection.InsertOne(context.TODO(), req)
	return err
}

func getRequest(db *mongodatabase.DBConfig, requestID string) (*model.Request, error) {
	objectID, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		return nil, apperr.NewValidation("invalid request id", map[string]string{"requestID": requestID})
	}

	dbConn, err := db.New(consts.Request)
	if err != nil {
		return nil, err
	}

	requestCollection, requestClient := dbConn.Collection, dbConn.Client
	defer requestClient.Disconnect(context.TODO())

	var req model.Request
	err = requestCollection.FindOne(context.TODO(), bson.M{"_id": objectID}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NewNotFound("request", requestID)
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func findRequests(db *mongodatabase.DBConfig, filter bson.M) ([]model.Request, error) {
	dbConn, err := db.New(consts.Request)
	if err != nil {
		return nil, err
	}

	requestCollection, requestClient := dbConn.Collection, dbConn.Client
	defer requestClient.Disconnect(context.TODO())

	findOptions := options.Find()
	findOptions.SetSort(bson.M{"createdDate": -1})

	cur, err := requestCollection.Find(context.TODO(), filter, findOptions)
	if err != nil {
		return nil, err
	}

	var requests []model.Request
	err = cur.All(context.TODO(), &requests)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []model.Request{}
	}
	return requests, nil
}

func appendResponse(db *mongodatabase.DBConfig, requestID primitive.ObjectID, resp model.DonorResponse) error {
	dbConn, err := db.New(consts.Request)
	if err != nil {
		return err
	}

	requestCollection, requestClient := dbConn.Collection, dbConn.Client
	defer requestClient.Disconnect(context.TODO())

	update := bson.M{
		"$push": bson.M{"responses": resp},
		"$set":  bson.M{"updatedDate": time.Now()},
	}
	_, err = requestCollection.UpdateOne(context.TODO(), bson.M{"_id": requestID}, update)
	return err
}

// appendFulfillment pushes the contribution and persists the recomputed
// total and status in the same update
func appendFulfillment(db *mongodatabase.DBConfig, req *model.Request, f model.Fulfillment, now time.Time) (*model.Request, error) {
	dbConn, err := db.New(consts.Request)
	if err != nil {
		return nil, err
	}

	requestCollection, requestClient := dbConn.Collection, dbConn.Client
	defer requestClient.Disconnect(context.TODO())

	req.Fulfillments = append(req.Fulfillments, f)
	req.UnitsFulfilled = SumFulfilled(req.Fulfillments)
	req.Status = NextStatus(req, now)
	req.UpdatedDate = now

	update := bson.M{"$set": bson.M{
		"fulfillments":   req.Fulfillments,
		"unitsFulfilled": req.UnitsFulfilled,
		"status":         req.Status,
		"updatedDate":    req.UpdatedDate,
	}}
	_, err = requestCollection.UpdateOne(context.TODO(), bson.M{"_id": req.ID}, update)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func setStatus(db *mongodatabase.DBConfig, requestID primitive.ObjectID, status string) error {
	dbConn, err := db.New(consts.Request)
	if err != nil {
		return err
	}

	requestCollection, requestClient := dbConn.Collection, dbConn.Client
	defer requestClient.Disconnect(context.TODO())

	update := bson.M{"$set": bson.M{"status": status, "updatedDate": time.Now()}}
	_, err = requestCollection.UpdateOne(context.TODO(), bson.M{"_id": requestID}, update)
	return err
}

func recordNotified(db *mongodatabase.DBConfig, requestID primitive.ObjectID, donorIDs []primitive.ObjectID, sent int) error {
	dbConn, err := db.New(consts.Request)
	if err != nil {
		return err
	}

	requestCollection, requestClient := dbConn.Collection, dbConn.Client
	defer requestClient.Disconnect(context.TODO())

	update := bson.M{"$set": bson.M{
		"donorsNotified":    donorIDs,
		"notificationsSent": sent,
		"updatedDate":       time.Now(),
	}}
	_, err = requestCollection.UpdateOne(context.TODO(), bson.M{"_id": requestID}, update)
	return err
}

// expireOverdue flips open requests past their deadline; fulfilled,
// cancelled and partially-fulfilled requests are left alone
func expireOverdue(db *mongodatabase.DBConfig, now time.Time) (int64, error) {
	dbConn, err := db.New(consts.Request)
	if err != nil {
		return 0, err
	}

	requestCollection, requestClient := dbConn.Collection, dbConn.Client
	defer requestClient.Disconnect(context.TODO())

	filter := bson.M{
		"status":     consts.StatusOpen,
		"requiredBy": bson.M{"$lt": now},
	}
	update := bson.M{"$set": bson.M{"status": consts.StatusExpired, "updatedDate": now}}

	result, err := requestCollection.UpdateMany(context.TODO(), filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}
