package notification

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/mongodatabase"
)

func enqueueOutbox(db *mongodatabase.DBConfig, entry *model.OutboxEntry) error {
	dbConn, err := db.New(consts.Outbox)
	if err != nil {
		return err
	}

	outboxCollection, outboxClient := dbConn.Collection, dbConn.Client
	defer outboxClient.Disconnect(context.TODO())

	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	entry.Status = model.OutboxPending
	entry.CreatedDate = time.Now()

	_, err = outboxCollection.InsertOne(context.TODO(), entry)
	return err
}

// fetchPendingOutbox returns the oldest pending entries. The sweep is the
// only consumer, so no claim marker is needed.
func fetchPendingOutbox(db *mongodatabase.DBConfig, limit int64) ([]model.OutboxEntry, error) {
	dbConn, err := db.New(consts.Outbox)
	if err != nil {
		return nil, err
	}

	outboxCollection, outboxClient := dbConn.Collection, dbConn.Client
	defer outboxClient.Disconnect(context.TODO())

	findOptions := options.Find()
	findOptions.SetSort(bson.M{"createdDate": 1})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cur, err := outboxCollection.Find(context.TODO(), bson.M{"status": model.OutboxPending}, findOptions)
	if err != nil {
		return nil, err
	}

	var entries []model.OutboxEntry
	err = cur.All(context.TODO(), &entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func finishOutbox(db *mongodatabase.DBConfig, entryID primitive.ObjectID, status, lastError string) error {
	dbConn, err := db.New(consts.Outbox)
	if err != nil {
		return err
	}

	outboxCollection, outboxClient := dbConn.Collection, dbConn.Client
	defer outboxClient.Disconnect(context.TODO())

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"lastError": lastError,
			"sentDate":  now,
		},
		"$inc": bson.M{"attempts": 1},
	}

	_, err = outboxCollection.UpdateOne(context.TODO(), bson.M{"_id": entryID}, update)
	return err
}
