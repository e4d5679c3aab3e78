package repository

// Collection names carried on change events.
const (
	CollectionBookings = "bookings"
	CollectionLeads    = "leads"
	CollectionPayments = "payments"
)

// CollectionChange is one change notification from the store. Payload fields
// are informational: consumers reload the whole collection rather than
// patching individual records.
type CollectionChange struct {
	Collection string `json:"collection"`
	Operation  string `json:"operation"`
	RecordID   int32  `json:"record_id"`
}
