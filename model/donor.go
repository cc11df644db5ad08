package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BloodTypes the 8 recognized blood groups
var BloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// Components the blood component kinds handled by banks
var Components = []string{"whole blood", "plasma", "platelets", "red blood cells", "cryoprecipitate"}

// Location a stored point plus address fields. Coordinates are
// [longitude, latitude]; a zero pair means the location is unknown.
type Location struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	City        string    `bson:"city,omitempty" json:"city,omitempty"`
	State       string    `bson:"state,omitempty" json:"state,omitempty"`
	Country     string    `bson:"country,omitempty" json:"country,omitempty"`
	ZipCode     string    `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
}

// DonationRecord one entry in a donor's append-only donation history
type DonationRecord struct {
	Date           time.Time          `bson:"date" json:"date"`
	BloodBank      primitive.ObjectID `bson:"bloodBank,omitempty" json:"bloodBank,omitempty"`
	Component      string             `bson:"component" json:"component"`
	Volume         float64            `bson:"volume" json:"volume"`
	CertificateURL string             `bson:"certificateUrl,omitempty" json:"certificateUrl,omitempty"`
}

// Badge a milestone reward, keyed by name
type Badge struct {
	Name       string    `bson:"name" json:"name"`
	EarnedDate time.Time `bson:"earnedDate" json:"earnedDate"`
	Icon       string    `bson:"icon,omitempty" json:"icon,omitempty"`
}

// Rewards donor reward state
type Rewards struct {
	Points int     `bson:"points" json:"points"`
	Badges []Badge `bson:"badges" json:"badges"`
}

// NotificationPreferences per-category opt-ins plus a matching radius
type NotificationPreferences struct {
	UrgentRequests       bool    `bson:"urgentRequests" json:"urgentRequests"`
	NearbyDonationCamps  bool    `bson:"nearbyDonationCamps" json:"nearbyDonationCamps"`
	EligibilityReminders bool    `bson:"eligibilityReminders" json:"eligibilityReminders"`
	RadiusKm             float64 `bson:"radius" json:"radius"`
}

// Availability donor availability flag
type Availability struct {
	IsAvailable       bool       `bson:"isAvailable" json:"isAvailable"`
	NextAvailableDate *time.Time `bson:"nextAvailableDate,omitempty" json:"nextAvailableDate,omitempty"`
}

// Donor profile document. IsEligible and EligibleToDonateSince are derived
// from LastDonationDate and must be recomputed whenever it changes.
type Donor struct {
	ID                      primitive.ObjectID      `bson:"_id,omitempty" json:"_id"`
	AccountID               int                     `bson:"accountId" json:"accountId"`
	BloodType               string                  `bson:"bloodType" json:"bloodType"`
	Location                Location                `bson:"location" json:"location"`
	LastDonationDate        *time.Time              `bson:"lastDonationDate" json:"lastDonationDate"`
	EligibleToDonateSince   time.Time               `bson:"eligibleToDonateSince" json:"eligibleToDonateSince"`
	IsEligible              bool                    `bson:"isEligible" json:"isEligible"`
	DonationHistory         []DonationRecord        `bson:"donationHistory" json:"donationHistory"`
	Rewards                 Rewards                 `bson:"rewards" json:"rewards"`
	NotificationPreferences NotificationPreferences `bson:"notificationPreferences" json:"notificationPreferences"`
	Availability            Availability            `bson:"availability" json:"availability"`
	CreatedDate             time.Time               `bson:"createdDate" json:"createdDate"`
	UpdatedDate             time.Time               `bson:"updatedDate" json:"updatedDate"`

	// populated from the accounts table, never persisted with the document
	Account *Account `bson:"-" json:"account,omitempty"`
	// distance from a search center, set by matching
	DistanceKm float64 `bson:"-" json:"distanceKm,omitempty"`
}
