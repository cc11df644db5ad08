package provider

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/mongodatabase"
)

func loadConfiguration(db *mongodatabase.DBConfig) (*model.APIConfiguration, error) {
	dbConn, err := db.New(consts.APIConfiguration)
	if err != nil {
		return nil, err
	}
	coll, client := dbConn.Collection, dbConn.Client
	defer client.Disconnect(context.TODO())

	var cfg model.APIConfiguration
	err = coll.FindOne(context.TODO(), bson.M{}).Decode(&cfg)
	if err == mongo.ErrNoDocuments {
		// no configuration yet: all channels disabled
		return &model.APIConfiguration{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to load api configuration")
	}
	return &cfg, nil
}

func upsertConfiguration(db *mongodatabase.DBConfig, key []byte, cfg *model.APIConfiguration, updatedBy int) (*model.APIConfiguration, error) {
	encrypted := *cfg
	var err error

	// encrypt anything submitted in the clear
	for _, field := range []*string{
		&encrypted.SMS.TwilioAuthToken,
		&encrypted.SMS.MSG91AuthKey,
		&encrypted.Email.SMTPPassword,
		&encrypted.WhatsApp.TwilioAuthToken,
		&encrypted.WhatsApp.WABAAccessToken,
	} {
		if *field != "" && !IsEncrypted(*field) {
			*field, err = Encrypt(key, *field)
			if err != nil {
				return nil, errors.Wrap(err, "unable to encrypt provider secret")
			}
		}
	}

	encrypted.UpdatedBy = updatedBy
	encrypted.LastUpdated = time.Now()

	dbConn, err := db.New(consts.APIConfiguration)
	if err != nil {
		return nil, err
	}
	coll, client := dbConn.Collection, dbConn.Client
	defer client.Disconnect(context.TODO())

	update := bson.M{"$set": bson.M{
		"sms":         encrypted.SMS,
		"email":       encrypted.Email,
		"whatsapp":    encrypted.WhatsApp,
		"updatedBy":   encrypted.UpdatedBy,
		"lastUpdated": encrypted.LastUpdated,
	}}
	opts := options.Update().SetUpsert(true)
	if _, err = coll.UpdateOne(context.TODO(), bson.M{}, update, opts); err != nil {
		return nil, errors.Wrap(err, "unable to save api configuration")
	}

	return &encrypted, nil
}

func decryptConfiguration(key []byte, stored *model.APIConfiguration) (*model.APIConfiguration, error) {
	out := *stored
	var err error

	for _, field := range []*string{
		&out.SMS.TwilioAuthToken,
		&out.SMS.MSG91AuthKey,
		&out.Email.SMTPPassword,
		&out.WhatsApp.TwilioAuthToken,
		&out.WhatsApp.WABAAccessToken,
	} {
		if *field, err = Decrypt(key, *field); err != nil {
			return nil, errors.Wrap(err, "unable to decrypt provider secret")
		}
	}
	return &out, nil
}
