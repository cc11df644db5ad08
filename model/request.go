package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bloodlink-app/bloodlink-server/consts"
)

// Organization a tagged reference to the requesting BloodBank or Hospital
type Organization struct {
	Kind string             `bson:"kind" json:"kind"`
	ID   primitive.ObjectID `bson:"id,omitempty" json:"id,omitempty"`
}

// RequestedBy the acting user plus their organization
type RequestedBy struct {
	AccountID    int          `bson:"accountId" json:"accountId"`
	Organization Organization `bson:"organization,omitempty" json:"organization,omitempty"`
}

// Patient free-text patient details attached to a request
type Patient struct {
	Name             string `bson:"name" json:"name"`
	Age              int    `bson:"age,omitempty" json:"age,omitempty"`
	Gender           string `bson:"gender,omitempty" json:"gender,omitempty"`
	BloodType        string `bson:"bloodType" json:"bloodType"`
	Contact          string `bson:"contact,omitempty" json:"contact,omitempty"`
	MedicalCondition string `bson:"medicalCondition,omitempty" json:"medicalCondition,omitempty"`
}

// Fulfillment one recorded contribution of units toward a request
type Fulfillment struct {
	Donor       primitive.ObjectID `bson:"donor" json:"donor"`
	BloodBank   primitive.ObjectID `bson:"bloodBank,omitempty" json:"bloodBank,omitempty"`
	Units       int                `bson:"units" json:"units"`
	Status      string             `bson:"status" json:"status"`
	FulfilledAt time.Time          `bson:"fulfilledAt" json:"fulfilledAt"`
}

// DonorResponse a donor's stated intent on a request; never counts as fulfillment
type DonorResponse struct {
	Donor       primitive.ObjectID `bson:"donor" json:"donor"`
	Response    string             `bson:"response" json:"response"`
	Message     string             `bson:"message,omitempty" json:"message,omitempty"`
	RespondedAt time.Time          `bson:"respondedAt" json:"respondedAt"`
}

// Request a blood request document. UnitsFulfilled always equals the sum of
// Fulfillments[].Units and Status follows the lifecycle transition rule.
type Request struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	RequestedBy       RequestedBy          `bson:"requestedBy" json:"requestedBy"`
	Patient           Patient              `bson:"patient" json:"patient"`
	BloodType         string               `bson:"bloodType" json:"bloodType"`
	Component         string               `bson:"component" json:"component"`
	UnitsRequired     int                  `bson:"unitsRequired" json:"unitsRequired"`
	Urgency           string               `bson:"urgency" json:"urgency"`
	Location          Location             `bson:"location" json:"location"`
	RequiredBy        time.Time            `bson:"requiredBy" json:"requiredBy"`
	Status            string               `bson:"status" json:"status"`
	Fulfillments      []Fulfillment        `bson:"fulfillments" json:"fulfillments"`
	UnitsFulfilled    int                  `bson:"unitsFulfilled" json:"unitsFulfilled"`
	NotificationsSent int                  `bson:"notificationsSent" json:"notificationsSent"`
	DonorsNotified    []primitive.ObjectID `bson:"donorsNotified" json:"donorsNotified"`
	Responses         []DonorResponse      `bson:"responses" json:"responses"`
	Notes             string               `bson:"notes,omitempty" json:"notes,omitempty"`
	IsEmergency       bool                 `bson:"isEmergency" json:"isEmergency"`
	CreatedDate       time.Time            `bson:"createdDate" json:"createdDate"`
	UpdatedDate       time.Time            `bson:"updatedDate" json:"updatedDate"`
}

// IsTerminal reports whether no further transition is permitted
func (r *Request) IsTerminal() bool {
	switch r.Status {
	case consts.StatusFulfilled, consts.StatusCancelled, consts.StatusExpired:
		return true
	}
	return false
}
