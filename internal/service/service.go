package service

import (
	"context"

	"arrentals-backend/internal/domain"
)

// TransitionOptions carries the optional inputs a status change may attach.
type TransitionOptions struct {
	CancellationReason string
	RefundReferenceID  string
}

// ItineraryUpdate carries the booking fields an admin may amend before the
// rental runs. The price is always re-derived from the amended itinerary.
type ItineraryUpdate struct {
	PickupLocation  string             `json:"pickup_location"`
	DropoffLocation string             `json:"dropoff_location"`
	PickupDate      string             `json:"pickup_date"`
	ReturnDate      string             `json:"return_date"`
	PickupTime      string             `json:"pickup_time"`
	DriveOption     domain.DriveOption `json:"drive_option"`
}

type BookingService interface {
	// CreateBooking turns a validated draft plus the quoted price into a
	// pending booking. It never re-derives pricing: the breakdown passed in is
	// what the customer saw and agreed to.
	CreateBooking(ctx context.Context, draft *domain.BookingDraft, pricing domain.PriceBreakdown) (*domain.Booking, error)
	GetBooking(ctx context.Context, id int32) (*domain.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*domain.Booking, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	ListBookingsByCustomer(ctx context.Context, customerID, page, pageSize int32) ([]domain.Booking, int32, error)
	// UpdateItinerary amends a pending or confirmed booking's schedule and
	// locations, repricing it from the vehicle's current rate.
	UpdateItinerary(ctx context.Context, id int32, upd ItineraryUpdate) (*domain.Booking, error)
	Transition(ctx context.Context, bookingID int32, to domain.BookingStatus, opts TransitionOptions) (*domain.Booking, error)
	// DeleteBooking is a hard delete, irreversible and distinct from cancel.
	DeleteBooking(ctx context.Context, id int32) error
	// EffectivePaymentStatus is the status of the booking's most recent
	// payment row; pending when no payment exists yet.
	EffectivePaymentStatus(ctx context.Context, bookingID int32) (domain.PaymentStatus, error)
}

// LeadInput is the capture payload assembled from the draft as the customer
// progresses through the funnel.
type LeadInput struct {
	Email           string             `validate:"required,email"`
	VehicleID       int32              `validate:"required"`
	FullName        string
	PhoneNumber     string
	PickupLocation  string
	DropoffLocation string
	PickupDate      string
	ReturnDate      string
	PickupTime      string
	DriveOption     domain.DriveOption
	QuotedTotal     int64
	LastStep        domain.LeadStep `validate:"required,oneof=date_selection renter_info payment"`
}

type LeadCaptureService interface {
	// SaveOrUpdateLead upserts the lead keyed by (email, vehicle). A lead that
	// already converted is left untouched and reported as success.
	SaveOrUpdateLead(ctx context.Context, input *LeadInput) (int32, error)
	// MarkLeadRecovered flips the lead for (email, vehicle) to recovered and
	// links the booking that converted it.
	MarkLeadRecovered(ctx context.Context, email string, vehicleID, bookingID int32) error
	GetLead(ctx context.Context, id int32) (*domain.Lead, error)
	ListLeads(ctx context.Context) ([]domain.Lead, error)
	DeleteLead(ctx context.Context, id int32) error
}

type EmailService interface {
	SendBookingConfirmation(ctx context.Context, email, name, reference, vehicleName string, total int64) error
	SendBookingStatusNotification(ctx context.Context, email, name, reference string, status domain.BookingStatus, reason string) error
	SendLeadFollowUp(ctx context.Context, email, name, vehicleName, pickupDate string) error
}
