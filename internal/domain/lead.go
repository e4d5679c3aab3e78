package domain

import "time"

type LeadStatus string

const (
	LeadStatusPending   LeadStatus = "pending"
	LeadStatusRecovered LeadStatus = "recovered"
	LeadStatusExpired   LeadStatus = "expired"
)

// LeadAutomationStatus is written by the follow-up mailer only. The capture
// path reads it but never sets it.
type LeadAutomationStatus string

const (
	AutomationStatusNotSent LeadAutomationStatus = "not_sent"
	AutomationStatusSent    LeadAutomationStatus = "sent"
	AutomationStatusOpened  LeadAutomationStatus = "opened"
	AutomationStatusClicked LeadAutomationStatus = "clicked"
)

type LeadStep string

const (
	LeadStepDateSelection LeadStep = "date_selection"
	LeadStepRenterInfo    LeadStep = "renter_info"
	LeadStepPayment       LeadStep = "payment"
)

var leadStepRank = map[LeadStep]int{
	LeadStepDateSelection: 1,
	LeadStepRenterInfo:    2,
	LeadStepPayment:       3,
}

// StepRank orders funnel steps so last_step only ever advances. Unknown steps
// rank below every known one.
func StepRank(s LeadStep) int {
	return leadStepRank[s]
}

// Lead is an abandoned or in-progress booking draft persisted for follow-up.
// Identity key is (email, vehicle_id), not the surrogate ID alone.
type Lead struct {
	ID               int32                `json:"id"`
	Email            string               `json:"email"`
	VehicleID        int32                `json:"vehicle_id"`
	FullName         string               `json:"full_name"`
	PhoneNumber      string               `json:"phone_number"`
	PickupLocation   string               `json:"pickup_location"`
	DropoffLocation  string               `json:"dropoff_location"`
	PickupDate       string               `json:"pickup_date"`
	ReturnDate       string               `json:"return_date"`
	PickupTime       string               `json:"pickup_time"`
	DriveOption      DriveOption          `json:"drive_option"`
	QuotedTotal      int64                `json:"quoted_total"`
	LastStep         LeadStep             `json:"last_step"`
	Status           LeadStatus           `json:"status"`
	AutomationStatus LeadAutomationStatus `json:"automation_status"`
	BookingID        *int32               `json:"booking_id,omitempty"`
	DropOffTimestamp time.Time            `json:"drop_off_timestamp"`
	CreatedOn        string               `json:"created_on"`
}
