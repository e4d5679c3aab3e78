package repository

import (
	"context"

	"arrentals-backend/internal/domain"
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	GetByID(ctx context.Context, id int32) (*domain.Vehicle, error)
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context) ([]domain.Vehicle, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int32) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	Update(ctx context.Context, customer *domain.Customer) error
	List(ctx context.Context, page, pageSize int32) ([]domain.Customer, int32, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int32) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	// UpdateStatus changes booking_status only when the stored status still
	// matches expectedFrom. Returns false when a concurrent change won.
	UpdateStatus(ctx context.Context, id int32, expectedFrom, to domain.BookingStatus, refundStatus domain.RefundStatus, refundReferenceID, cancellationReason string) (bool, error)
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context) ([]domain.Booking, error)
	ListByCustomer(ctx context.Context, customerID int32, page, pageSize int32) ([]domain.Booking, int32, error)
	// CompleteElapsed moves confirmed bookings whose return date has passed to
	// completed and returns the affected IDs.
	CompleteElapsed(ctx context.Context, cutoffDate string) ([]int32, error)
}

type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	GetByID(ctx context.Context, id int32) (*domain.Lead, error)
	FindByEmailAndVehicle(ctx context.Context, email string, vehicleID int32) (*domain.Lead, error)
	Update(ctx context.Context, lead *domain.Lead) error
	MarkRecovered(ctx context.Context, email string, vehicleID, bookingID int32) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context) ([]domain.Lead, error)
	// ExpireStale marks pending leads untouched since the cutoff as expired and
	// returns how many were affected.
	ExpireStale(ctx context.Context, cutoff string) (int64, error)
	// ListPendingForFollowUp returns pending leads with automation_status
	// not_sent whose drop_off_timestamp is older than the cutoff.
	ListPendingForFollowUp(ctx context.Context, cutoff string) ([]domain.Lead, error)
	SetAutomationStatus(ctx context.Context, id int32, status domain.LeadAutomationStatus) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	ListByBooking(ctx context.Context, bookingID int32) ([]domain.Payment, error)
	// LatestByBooking returns the most recent payment for a booking, or a
	// NotFoundError when none exists.
	LatestByBooking(ctx context.Context, bookingID int32) (*domain.Payment, error)
	List(ctx context.Context) ([]domain.Payment, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id int32) error
}
