package notification

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bloodlink-app/bloodlink-server/apperr"
	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/database"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/mongodatabase"
)

func createNotification(db *mongodatabase.DBConfig, mysql *database.Database, notification *model.Notification) error {
	dbConn, err := db.New(consts.Notification)
	if err != nil {
		return err
	}

	notificationCollection, notificationClient := dbConn.Collection, dbConn.Client
	defer notificationClient.Disconnect(context.TODO())

	_, err = notificationCollection.InsertOne(context.TODO(), notification)
	if err != nil {
		return err
	}

	stmt := "UPDATE `bloodlink`.accounts SET unread_notification_count = unread_notification_count + 1 WHERE id = ?"
	_, err = mysql.Conn.Exec(stmt, notification.RecipientAccountID)
	if err != nil {
		return errors.Wrap(err, "unable to update unread_notification_count")
	}

	return nil
}

func markNotificationAsRead(db *mongodatabase.DBConfig, mysql *database.Database, notificationID string, accountID int, when time.Time) error {
	dbConn, err := db.New(consts.Notification)
	if err != nil {
		return err
	}

	notificationCollection, notificationClient := dbConn.Collection, dbConn.Client
	defer notificationClient.Disconnect(context.TODO())

	objectID, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return apperr.NewValidation("invalid notification id", map[string]string{"id": notificationID})
	}

	// recipient filter keeps one account from flipping another's record
	filter := bson.M{"_id": objectID, "recipientAccountId": accountID, "isRead": false}
	update := bson.M{
		"$set": bson.M{"isRead": true, "readAt": when},
	}

	result, err := notificationCollection.UpdateOne(context.TODO(), filter, update)
	if err != nil {
		return err
	}

	if result.ModifiedCount > 0 {
		stmt := "UPDATE `bloodlink`.accounts SET unread_notification_count = unread_notification_count - 1 WHERE id = ? AND unread_notification_count > 0"
		_, err = mysql.Conn.Exec(stmt, accountID)
		if err != nil {
			return errors.Wrap(err, "unable to update unread_notification_count")
		}
	}

	return nil
}

func markAllNotificationAsRead(db *mongodatabase.DBConfig, mysql *database.Database, accountID int, when time.Time) error {
	dbConn, err := db.New(consts.Notification)
	if err != nil {
		return err
	}

	notificationCollection, notificationClient := dbConn.Collection, dbConn.Client
	defer notificationClient.Disconnect(context.TODO())

	filter := bson.M{"recipientAccountId": accountID, "isRead": false}
	update := bson.M{
		"$set": bson.M{"isRead": true, "readAt": when},
	}
	_, err = notificationCollection.UpdateMany(context.TODO(), filter, update)
	if err != nil {
		return err
	}

	stmt := "UPDATE `bloodlink`.accounts SET unread_notification_count = 0 WHERE id = ?"
	_, err = mysql.Conn.Exec(stmt, accountID)
	if err != nil {
		return errors.Wrap(err, "unable to update unread_notification_count")
	}
	return nil
}

func getNotificationList(db *mongodatabase.DBConfig, accountID int, limit, skip int64) ([]model.Notification, error) {
	dbConn, err := db.New(consts.Notification)
	if err != nil {
		return []model.Notification{}, err
	}

	notificationCollection, notificationClient := dbConn.Collection, dbConn.Client
	defer notificationClient.Disconnect(context.TODO())

	findOptions := options.Find()
	findOptions.SetSort(bson.M{"createdDate": -1})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}
	if skip > 0 {
		findOptions.SetSkip(skip)
	}

	cur, err := notificationCollection.Find(context.TODO(), bson.M{"recipientAccountId": accountID}, findOptions)
	if err != nil {
		return []model.Notification{}, err
	}

	var notifications []model.Notification
	err = cur.All(context.TODO(), &notifications)
	if err != nil {
		return []model.Notification{}, err
	}

	if notifications == nil {
		notifications = []model.Notification{}
	}
	return notifications, nil
}

func getUnreadCount(mysql *database.Database, accountID int) (int64, error) {
	stmt := "SELECT unread_notification_count FROM `bloodlink`.accounts WHERE id = ?;"
	var count int64

	err := mysql.Conn.Get(&count, stmt, accountID)
	if err != nil {
		return 0, errors.Wrap(err, "unable to fetch unread_notification_count")
	}

	return count, nil
}

func resolveAccounts(mysql *database.Database, accountIDs []int) ([]model.Account, error) {
	if len(accountIDs) == 0 {
		return []model.Account{}, nil
	}

	stmt := "SELECT id, name, email, phone, role, is_active FROM `bloodlink`.accounts WHERE id IN (?) AND is_active = 1"
	query, args, err := sqlx.In(stmt, accountIDs)
	if err != nil {
		return nil, errors.Wrap(err, "unable to build accounts query")
	}

	var accounts []model.Account
	err = mysql.Conn.Select(&accounts, mysql.Conn.Rebind(query), args...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to resolve accounts")
	}

	return accounts, nil
}

func listAccountIDsByRole(mysql *database.Database, roles []string) ([]int, error) {
	stmt := "SELECT id FROM `bloodlink`.accounts WHERE is_active = 1"
	var (
		query string
		args  []interface{}
		err   error
	)
	if len(roles) > 0 {
		query, args, err = sqlx.In(stmt+" AND role IN (?)", roles)
		if err != nil {
			return nil, errors.Wrap(err, "unable to build accounts query")
		}
		query = mysql.Conn.Rebind(query)
	} else {
		query = stmt
	}

	var ids []int
	err = mysql.Conn.Select(&ids, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list account ids")
	}
	return ids, nil
}
