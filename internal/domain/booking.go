package domain

type BookingStatus string

const (
	BookingStatusPending       BookingStatus = "pending"
	BookingStatusConfirmed     BookingStatus = "confirmed"
	BookingStatusCompleted     BookingStatus = "completed"
	BookingStatusCancelled     BookingStatus = "cancelled"
	BookingStatusRefundPending BookingStatus = "refund_pending"
	BookingStatusRefunded      BookingStatus = "refunded"
)

type RefundStatus string

const (
	RefundStatusNone      RefundStatus = "none"
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusCompleted RefundStatus = "completed"
)

// bookingTransitions is the full set of permitted status transitions.
// completed and refunded are terminal: no entry leads out of them.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:       {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:     {BookingStatusCompleted, BookingStatusCancelled, BookingStatusRefundPending},
	BookingStatusCancelled:     {BookingStatusRefundPending},
	BookingStatusRefundPending: {BookingStatusRefunded},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Booking struct {
	ID                int32         `json:"id"`
	BookingReference  string        `json:"booking_reference"`
	CustomerID        int32         `json:"customer_id"`
	VehicleID         int32         `json:"vehicle_id"`
	PickupLocation    string        `json:"pickup_location"`
	DropoffLocation   string        `json:"dropoff_location"`
	PickupDate        string        `json:"pickup_date"`
	ReturnDate        string        `json:"return_date"`
	PickupTime        string        `json:"pickup_time"`
	RentalDays        int32         `json:"rental_days"`
	DriveOption       DriveOption   `json:"drive_option"`
	TotalAmount       int64         `json:"total_amount"`
	BookingStatus     BookingStatus `json:"booking_status"`
	RefundStatus      RefundStatus  `json:"refund_status"`
	RefundReferenceID string        `json:"refund_reference_id"`
	CancellationReason string       `json:"cancellation_reason"`
	CustomerName      string        `json:"customer_name,omitempty"`
	CustomerEmail     string        `json:"customer_email,omitempty"`
	CreatedOn         string        `json:"created_on"`
	UpdatedOn         string        `json:"updated_on"`
}
