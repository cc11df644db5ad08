package consts

// mongo collections
const (
	Donor            = "Donor"
	Request          = "Request"
	Inventory        = "Inventory"
	Notification     = "Notification"
	Outbox           = "NotificationOutbox"
	APIConfiguration = "APIConfiguration"
)

// actor roles
const (
	RoleDonor     = "donor"
	RoleBloodBank = "bloodbank"
	RoleHospital  = "hospital"
	RoleAdmin     = "admin"
)

// request status
const (
	StatusOpen               = "open"
	StatusPartiallyFulfilled = "partially-fulfilled"
	StatusFulfilled          = "fulfilled"
	StatusCancelled          = "cancelled"
	StatusExpired            = "expired"
)

// request urgency
const (
	UrgencyCritical = "critical"
	UrgencyUrgent   = "urgent"
	UrgencyNormal   = "normal"
)

// donor response to a request
const (
	ResponseWilling      = "willing"
	ResponseNotAvailable = "not-available"
	ResponseNotEligible  = "not-eligible"
)

// fulfillment status
const (
	FulfillmentPledged   = "pledged"
	FulfillmentCollected = "collected"
	FulfillmentDelivered = "delivered"
)

// inventory unit status
const (
	UnitAvailable = "available"
	UnitReserved  = "reserved"
	UnitIssued    = "issued"
	UnitExpired   = "expired"
	UnitDiscarded = "discarded"
)

// notification categories
const (
	CategoryBloodRequest        = "blood-request"
	CategoryEligibilityReminder = "eligibility-reminder"
	CategoryDonationCamp        = "donation-camp"
	CategoryDonationConfirmed   = "donation-confirmed"
	CategoryRequestFulfilled    = "request-fulfilled"
	CategoryLowInventoryAlert   = "low-inventory-alert"
	CategoryRewardEarned        = "reward-earned"
	CategorySystem              = "system"
	CategoryAnnouncement        = "announcement"
	CategoryAdminAlert          = "admin-alert"
)

// notification priority
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// notification channels
const (
	ChannelInApp    = "in-app"
	ChannelSMS      = "sms"
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
)

// organization kinds on a request
const (
	OrgBloodBank = "BloodBank"
	OrgHospital  = "Hospital"
)

// realtime events
const (
	EventUrgentRequest = "urgent-request"
)
