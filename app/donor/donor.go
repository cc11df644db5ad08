package donor

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bloodlink-app/bloodlink-server/app/eligibility"
	"github.com/bloodlink-app/bloodlink-server/app/geo"
	"github.com/bloodlink-app/bloodlink-server/apperr"
	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/database"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/mongodatabase"
)

func getDonor(db *mongodatabase.DBConfig, mysql *database.Database, donorID string) (*model.Donor, error) {
	objectID, err := primitive.ObjectIDFromHex(donorID)
	if err != nil {
		return nil, apperr.NewValidation("invalid donor id", map[string]string{"donorID": donorID})
	}

	dbConn, err := db.New(consts.Donor)
	if err != nil {
		return nil, err
	}

	donorCollection, donorClient := dbConn.Collection, dbConn.Client
	defer donorClient.Disconnect(context.TODO())

	var donor model.Donor
	err = donorCollection.FindOne(context.TODO(), bson.M{"_id": objectID}).Decode(&donor)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NewNotFound("donor", donorID)
	}
	if err != nil {
		return nil, err
	}

	attachAccounts(mysql, []*model.Donor{&donor})
	return &donor, nil
}

func getDonorByAccount(db *mongodatabase.DBConfig, accountID int) (*model.Donor, error) {
	dbConn, err := db.New(consts.Donor)
	if err != nil {
		return nil, err
	}

	donorCollection, donorClient := dbConn.Collection, dbConn.Client
	defer donorClient.Disconnect(context.TODO())

	var donor model.Donor
	err = donorCollection.FindOne(context.TODO(), bson.M{"accountId": accountID}).Decode(&donor)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NewNotFound("donor", "")
	}
	if err != nil {
		return nil, err
	}
	return &donor, nil
}

func findDonors(db *mongodatabase.DBConfig, filter bson.M) ([]model.Donor, error) {
	dbConn, err := db.New(consts.Donor)
	if err != nil {
		return nil, err
	}

	donorCollection, donorClient := dbConn.Collection, dbConn.Client
	defer donorClient.Disconnect(context.TODO())

	cur, err := donorCollection.Find(context.TODO(), filter)
	if err != nil {
		return nil, err
	}

	var donors []model.Donor
	err = cur.All(context.TODO(), &donors)
	if err != nil {
		return nil, err
	}
	if donors == nil {
		donors = []model.Donor{}
	}
	return donors, nil
}

// persistEligibility writes the derived eligibility pair in one update
func persistEligibility(db *mongodatabase.DBConfig, donorID primitive.ObjectID, res eligibility.Result) error {
	dbConn, err := db.New(consts.Donor)
	if err != nil {
		return err
	}

	donorCollection, donorClient := dbConn.Collection, dbConn.Client
	defer donorClient.Disconnect(context.TODO())

	update := bson.M{"$set": bson.M{
		"isEligible":            res.IsEligible,
		"eligibleToDonateSince": res.EligibleSince,
		"updatedDate":           time.Now(),
	}}

	_, err = donorCollection.UpdateOne(context.TODO(), bson.M{"_id": donorID}, update)
	return err
}

// attachAccounts joins contact rows onto donor documents; a failed join
// leaves Account nil rather than failing the read
func attachAccounts(mysql *database.Database, donors []*model.Donor) {
	if mysql == nil || len(donors) == 0 {
		return
	}

	ids := make([]int, 0, len(donors))
	for _, d := range donors {
		ids = append(ids, d.AccountID)
	}

	accounts, err := fetchAccounts(mysql, ids)
	if err != nil {
		return
	}

	byID := make(map[int]model.Account, len(accounts))
	for _, acc := range accounts {
		byID[acc.ID] = acc
	}
	for _, d := range donors {
		if acc, ok := byID[d.AccountID]; ok {
			a := acc
			d.Account = &a
		}
	}
}

func fetchAccounts(mysql *database.Database, ids []int) ([]model.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	stmt := "SELECT id, name, email, phone, role, is_active FROM `bloodlink`.accounts WHERE id IN (?)"
	query, args, err := sqlx.In(stmt, ids)
	if err != nil {
		return nil, err
	}
	var accounts []model.Account
	err = mysql.Conn.Select(&accounts, mysql.Conn.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// rankDonors orders donors by distance from center, dropping any outside
// radiusKm or with unknown location. When honorPreference is set a donor's
// own preferred radius also bounds the match.
func rankDonors(donors []model.Donor, center geo.Point, radiusKm float64, honorPreference bool) []model.Donor {
	points := make([]geo.Point, len(donors))
	for i, d := range donors {
		points[i] = geo.FromCoordinates(d.Location.Coordinates)
	}

	ranked := geo.RankWithinRadius(center, points, radiusKm)
	out := make([]model.Donor, 0, len(ranked))
	for _, r := range ranked {
		d := donors[r.Index]
		if pref := d.NotificationPreferences.RadiusKm; honorPreference && pref > 0 && r.DistanceKm > pref {
			continue
		}
		d.DistanceKm = r.DistanceKm
		out = append(out, d)
	}
	return out
}
