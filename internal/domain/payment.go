package domain

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

// Payment belongs to exactly one booking. A booking's effective payment state
// is the status of its most recent Payment row, not an aggregate.
type Payment struct {
	ID        int32 `json:"id"`
	BookingID int32 `json:"booking_id"`
	// BookingReference is denormalized from the owning booking so admins can
	// find a payment by the code the customer quotes.
	BookingReference string        `json:"booking_reference"`
	Amount           int64         `json:"amount"`
	Method           string        `json:"method"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	ReceiptURL       string        `json:"receipt_url,omitempty"`
	ProofURL         string        `json:"proof_url,omitempty"`
	CreatedOn        string        `json:"created_on"`
}
