package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationData optional structured refs carried by a notification
type NotificationData struct {
	RequestID   primitive.ObjectID `bson:"requestId,omitempty" json:"requestId,omitempty"`
	CampID      primitive.ObjectID `bson:"campId,omitempty" json:"campId,omitempty"`
	BloodBankID primitive.ObjectID `bson:"bloodBankId,omitempty" json:"bloodBankId,omitempty"`
}

// SentStatus per-channel delivery flags on the persisted record
type SentStatus struct {
	InApp    bool `bson:"inApp" json:"inApp"`
	SMS      bool `bson:"sms" json:"sms"`
	Email    bool `bson:"email" json:"email"`
	WhatsApp bool `bson:"whatsapp" json:"whatsapp"`
}

// Notification the durable in-app record. Immutable except for read state.
type Notification struct {
	ID                 primitive.ObjectID `bson:"_id" json:"_id"`
	RecipientAccountID int                `bson:"recipientAccountId" json:"recipientAccountId"`
	Category           string             `bson:"category" json:"category"`
	Title              string             `bson:"title" json:"title"`
	Message            string             `bson:"message" json:"message"`
	Data               NotificationData   `bson:"data,omitempty" json:"data,omitempty"`
	Priority           string             `bson:"priority" json:"priority"`
	IsRead             bool               `bson:"isRead" json:"isRead"`
	ReadAt             *time.Time         `bson:"readAt,omitempty" json:"readAt,omitempty"`
	Channels           []string           `bson:"channels" json:"channels"`
	SentStatus         SentStatus         `bson:"sentStatus" json:"sentStatus"`
	CreatedDate        time.Time          `bson:"createdDate" json:"createdDate"`
}

// OutboxStatus values for queued notification intents
const (
	OutboxPending   = "pending"
	OutboxDelivered = "delivered"
	OutboxFailed    = "failed"
)

// OutboxEntry a queued notification intent. Request creation and the sweeps
// enqueue these; the dispatcher consumer drains them so the primary
// operation never blocks on provider calls.
type OutboxEntry struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Recipients  []int              `bson:"recipients" json:"recipients"`
	Title       string             `bson:"title" json:"title"`
	Message     string             `bson:"message" json:"message"`
	Category    string             `bson:"category" json:"category"`
	Priority    string             `bson:"priority" json:"priority"`
	Channels    []string           `bson:"channels" json:"channels"`
	Data        NotificationData   `bson:"data,omitempty" json:"data,omitempty"`
	Status      string             `bson:"status" json:"status"`
	Attempts    int                `bson:"attempts" json:"attempts"`
	LastError   string             `bson:"lastError,omitempty" json:"lastError,omitempty"`
	CreatedDate time.Time          `bson:"createdDate" json:"createdDate"`
	SentDate    *time.Time         `bson:"sentDate,omitempty" json:"sentDate,omitempty"`
}
