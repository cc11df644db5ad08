package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SMSConfig provider selection and credentials for the SMS channel.
// Secret fields are stored encrypted.
type SMSConfig struct {
	Enabled           bool   `bson:"enabled" json:"enabled"`
	Provider          string `bson:"provider" json:"provider"`
	TwilioAccountSID  string `bson:"twilioAccountSid" json:"twilioAccountSid"`
	TwilioAuthToken   string `bson:"twilioAuthToken" json:"twilioAuthToken"`
	TwilioPhoneNumber string `bson:"twilioPhoneNumber" json:"twilioPhoneNumber"`
	MSG91AuthKey      string `bson:"msg91AuthKey" json:"msg91AuthKey"`
	MSG91SenderID     string `bson:"msg91SenderId" json:"msg91SenderId"`
}

// EmailConfig SMTP settings for the email channel
type EmailConfig struct {
	Enabled      bool   `bson:"enabled" json:"enabled"`
	Provider     string `bson:"provider" json:"provider"`
	SMTPHost     string `bson:"smtpHost" json:"smtpHost"`
	SMTPPort     int    `bson:"smtpPort" json:"smtpPort"`
	SMTPUser     string `bson:"smtpUser" json:"smtpUser"`
	SMTPPassword string `bson:"smtpPassword" json:"smtpPassword"`
	FromEmail    string `bson:"fromEmail" json:"fromEmail"`
	FromName     string `bson:"fromName" json:"fromName"`
}

// WhatsAppConfig provider selection and credentials for the WhatsApp channel
type WhatsAppConfig struct {
	Enabled              bool   `bson:"enabled" json:"enabled"`
	Provider             string `bson:"provider" json:"provider"`
	TwilioAccountSID     string `bson:"twilioAccountSid" json:"twilioAccountSid"`
	TwilioAuthToken      string `bson:"twilioAuthToken" json:"twilioAuthToken"`
	TwilioWhatsAppNumber string `bson:"twilioWhatsAppNumber" json:"twilioWhatsAppNumber"`
	WABAPhoneNumberID    string `bson:"wabaPhoneNumberId" json:"wabaPhoneNumberId"`
	WABAAccessToken      string `bson:"wabaAccessToken" json:"wabaAccessToken"`
}

// APIConfiguration the mutable provider configuration document. A single
// document holds the live settings; updates re-encrypt secrets and the
// in-memory snapshot is reloaded on demand.
type APIConfiguration struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SMS         SMSConfig          `bson:"sms" json:"sms"`
	Email       EmailConfig        `bson:"email" json:"email"`
	WhatsApp    WhatsAppConfig     `bson:"whatsapp" json:"whatsapp"`
	UpdatedBy   int                `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	LastUpdated time.Time          `bson:"lastUpdated" json:"lastUpdated"`
}
