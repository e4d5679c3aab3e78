package service

import (
	"context"
	"fmt"
	"strings"

	"arrentals-backend/internal/domain"
	"arrentals-backend/internal/logger"
	"arrentals-backend/internal/repository"
	"arrentals-backend/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type bookingService struct {
	bookingRepo  repository.BookingRepository
	customerRepo repository.CustomerRepository
	vehicleRepo  repository.VehicleRepository
	paymentRepo  repository.PaymentRepository
	noteRepo     repository.NotificationRepository
	leadSvc      LeadCaptureService
	emailSvc     EmailService
	validate     *validator.Validate
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	customerRepo repository.CustomerRepository,
	vehicleRepo repository.VehicleRepository,
	paymentRepo repository.PaymentRepository,
	noteRepo repository.NotificationRepository,
	leadSvc LeadCaptureService,
	emailSvc EmailService,
) BookingService {
	return &bookingService{
		bookingRepo:  bookingRepo,
		customerRepo: customerRepo,
		vehicleRepo:  vehicleRepo,
		paymentRepo:  paymentRepo,
		noteRepo:     noteRepo,
		leadSvc:      leadSvc,
		emailSvc:     emailSvc,
		validate:     validator.New(),
	}
}

// newBookingReference builds the human-readable tracking code handed to the
// customer, distinct from the surrogate row id.
func newBookingReference() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return "AR-" + fragment
}

func (s *bookingService) CreateBooking(ctx context.Context, draft *domain.BookingDraft, pricing domain.PriceBreakdown) (*domain.Booking, error) {
	if err := s.validate.Struct(draft); err != nil {
		ve := &domain.ValidationError{}
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				ve.Fields = append(ve.Fields, fe.Namespace())
			}
		} else {
			ve.Fields = append(ve.Fields, err.Error())
		}
		return nil, ve
	}
	if !draft.TermsAgreed {
		return nil, &domain.ValidationError{Fields: []string{"terms_agreed"}}
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, draft.VehicleID)
	if err != nil {
		return nil, err
	}

	customer, err := s.resolveCustomer(ctx, draft.Renter)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		BookingReference: newBookingReference(),
		CustomerID:       customer.ID,
		VehicleID:        vehicle.ID,
		PickupLocation:   draft.Search.PickupLocation,
		DropoffLocation:  draft.Search.DropoffLocation,
		PickupDate:       draft.Search.PickupDate,
		ReturnDate:       draft.Search.ReturnDate,
		PickupTime:       draft.Search.PickupTime,
		RentalDays:       pricing.RentalDays,
		DriveOption:      draft.DriveOption,
		TotalAmount:      pricing.Total,
		// Always created pending; no input can set a different initial status.
		BookingStatus: domain.BookingStatusPending,
		RefundStatus:  domain.RefundStatusNone,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, &domain.TransientStoreError{Op: "booking create", Err: err}
	}

	// Everything past this point is best-effort: the booking exists, and a
	// failed side effect must not undo it.
	if err := s.leadSvc.MarkLeadRecovered(ctx, customer.Email, vehicle.ID, booking.ID); err != nil {
		logger.Error("Failed to mark lead recovered after booking creation",
			"booking_id", booking.ID, "email", customer.Email, "vehicle_id", vehicle.ID, "error", err)
	}

	note := &domain.Notification{
		Title:   "New Booking",
		Message: fmt.Sprintf("%s booked %s (%s)", customer.FullName, vehicle.Name, booking.BookingReference),
		Attributes: map[string]string{
			"type":       "BOOKING_CREATED",
			"booking_id": fmt.Sprintf("%d", booking.ID),
		},
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Error("Failed to create booking notification", "booking_id", booking.ID, "error", err)
	}

	if err := s.emailSvc.SendBookingConfirmation(ctx, customer.Email, customer.FullName, booking.BookingReference, vehicle.Name, booking.TotalAmount); err != nil {
		logger.Error("Failed to send booking confirmation email", "booking_id", booking.ID, "error", err)
	}

	booking.CustomerName = customer.FullName
	booking.CustomerEmail = customer.Email
	return booking, nil
}

func (s *bookingService) resolveCustomer(ctx context.Context, renter domain.RenterInfo) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByEmail(ctx, renter.Email)
	if err == nil {
		if customer.FullName != renter.FullName || customer.PhoneNumber != renter.PhoneNumber {
			customer.FullName = renter.FullName
			customer.PhoneNumber = renter.PhoneNumber
			if err := s.customerRepo.Update(ctx, customer); err != nil {
				logger.Error("Failed to refresh customer contact info", "customer_id", customer.ID, "error", err)
			}
		}
		return customer, nil
	}
	if !domain.IsNotFound(err) {
		return nil, &domain.TransientStoreError{Op: "customer lookup", Err: err}
	}

	customer = &domain.Customer{
		FullName:    renter.FullName,
		Email:       renter.Email,
		PhoneNumber: renter.PhoneNumber,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, &domain.TransientStoreError{Op: "customer create", Err: err}
	}
	return customer, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id int32) (*domain.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *bookingService) GetBookingByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	return s.bookingRepo.GetByReference(ctx, reference)
}

func (s *bookingService) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.bookingRepo.List(ctx)
}

func (s *bookingService) ListBookingsByCustomer(ctx context.Context, customerID, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.ListByCustomer(ctx, customerID, page, pageSize)
}

func (s *bookingService) UpdateItinerary(ctx context.Context, id int32, upd ItineraryUpdate) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Only bookings that have not run yet can be amended.
	if booking.BookingStatus != domain.BookingStatusPending && booking.BookingStatus != domain.BookingStatusConfirmed {
		return nil, &domain.ValidationError{Fields: []string{"booking_status"}}
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, booking.VehicleID)
	if err != nil {
		return nil, err
	}
	pricing := utils.ComputePrice(vehicle.PricePerDay, upd.PickupDate, upd.ReturnDate,
		upd.PickupLocation, upd.DropoffLocation, upd.DriveOption)

	booking.PickupLocation = upd.PickupLocation
	booking.DropoffLocation = upd.DropoffLocation
	booking.PickupDate = upd.PickupDate
	booking.ReturnDate = upd.ReturnDate
	booking.PickupTime = upd.PickupTime
	booking.DriveOption = upd.DriveOption
	booking.RentalDays = pricing.RentalDays
	booking.TotalAmount = pricing.Total

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, &domain.TransientStoreError{Op: "booking update", Err: err}
	}
	return booking, nil
}

func (s *bookingService) Transition(ctx context.Context, bookingID int32, to domain.BookingStatus, opts TransitionOptions) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	from := booking.BookingStatus
	if !domain.CanTransition(from, to) {
		return nil, &domain.InvalidTransitionError{From: from, To: to}
	}

	refundStatus := booking.RefundStatus
	refundRef := booking.RefundReferenceID
	reason := booking.CancellationReason
	switch to {
	case domain.BookingStatusCancelled:
		if opts.CancellationReason != "" {
			reason = opts.CancellationReason
		}
	case domain.BookingStatusRefundPending:
		refundStatus = domain.RefundStatusPending
		if opts.RefundReferenceID != "" {
			refundRef = opts.RefundReferenceID
		}
	case domain.BookingStatusRefunded:
		refundStatus = domain.RefundStatusCompleted
		if opts.RefundReferenceID != "" {
			refundRef = opts.RefundReferenceID
		}
	}

	ok, err := s.bookingRepo.UpdateStatus(ctx, bookingID, from, to, refundStatus, refundRef, reason)
	if err != nil {
		return nil, &domain.TransientStoreError{Op: "booking status update", Err: err}
	}
	if !ok {
		// The stored status moved underneath us; re-read and report the
		// conflict instead of clamping.
		current, readErr := s.bookingRepo.GetByID(ctx, bookingID)
		if readErr != nil {
			return nil, readErr
		}
		return nil, &domain.InvalidTransitionError{From: current.BookingStatus, To: to}
	}

	booking.BookingStatus = to
	booking.RefundStatus = refundStatus
	booking.RefundReferenceID = refundRef
	booking.CancellationReason = reason

	if err := s.emailSvc.SendBookingStatusNotification(ctx, booking.CustomerEmail, booking.CustomerName, booking.BookingReference, to, reason); err != nil {
		logger.Error("Failed to send booking status email", "booking_id", bookingID, "status", to, "error", err)
	}

	return booking, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, id int32) error {
	return s.bookingRepo.Delete(ctx, id)
}

func (s *bookingService) EffectivePaymentStatus(ctx context.Context, bookingID int32) (domain.PaymentStatus, error) {
	payment, err := s.paymentRepo.LatestByBooking(ctx, bookingID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.PaymentStatusPending, nil
		}
		return "", err
	}
	return payment.PaymentStatus, nil
}
