package donation

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/mongodatabase"
)

// milestone badges awarded by total donation count
var badgeThresholds = []struct {
	Count int
	Name  string
	Icon  string
}{
	{1, "First Donation", "badge-first"},
	{5, "Regular Donor", "badge-regular"},
	{10, "Hero Donor", "badge-hero"},
}

// earnedBadges returns the milestone badges a donor should newly receive
// at donationCount. Badges are keyed by name; re-crossing a threshold
// never duplicates one.
func earnedBadges(existing []model.Badge, donationCount int, now time.Time) []model.Badge {
	held := make(map[string]bool, len(existing))
	for _, b := range existing {
		held[b.Name] = true
	}

	var earned []model.Badge
	for _, t := range badgeThresholds {
		if donationCount >= t.Count && !held[t.Name] {
			earned = append(earned, model.Badge{Name: t.Name, EarnedDate: now, Icon: t.Icon})
		}
	}
	return earned
}

// applyDonation mutates the donor document in memory: history append,
// lastDonationDate, derived eligibility, points, badges, availability.
// Returns the newly earned badges.
func applyDonation(donor *model.Donor, record model.DonationRecord, eligibleSince time.Time, isEligible bool, points int, now time.Time) []model.Badge {
	donor.DonationHistory = append(donor.DonationHistory, record)
	date := record.Date
	donor.LastDonationDate = &date
	donor.IsEligible = isEligible
	donor.EligibleToDonateSince = eligibleSince
	donor.Rewards.Points += points

	earned := earnedBadges(donor.Rewards.Badges, len(donor.DonationHistory), now)
	donor.Rewards.Badges = append(donor.Rewards.Badges, earned...)

	if !isEligible {
		donor.Availability.NextAvailableDate = &donor.EligibleToDonateSince
	}
	donor.UpdatedDate = now
	return earned
}

func persistDonor(db *mongodatabase.DBConfig, donor *model.Donor) error {
	dbConn, err := db.New(consts.Donor)
	if err != nil {
		return err
	}

	donorCollection, donorClient := dbConn.Collection, dbConn.Client
	defer donorClient.Disconnect(context.TODO())

	update := bson.M{"$set": bson.M{
		"donationHistory":                donor.DonationHistory,
		"lastDonationDate":               donor.LastDonationDate,
		"isEligible":                     donor.IsEligible,
		"eligibleToDonateSince":          donor.EligibleToDonateSince,
		"rewards":                        donor.Rewards,
		"availability.nextAvailableDate": donor.Availability.NextAvailableDate,
		"updatedDate":                    donor.UpdatedDate,
	}}

	_, err = donorCollection.UpdateOne(context.TODO(), bson.M{"_id": donor.ID}, update)
	return err
}
