package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"arrentals-backend/internal/domain"
	"arrentals-backend/internal/repository"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `b.id, b.booking_reference, b.customer_id, b.vehicle_id, b.pickup_location, b.dropoff_location,
	b.pickup_date, b.return_date, b.pickup_time, b.rental_days, b.drive_option, b.total_amount,
	b.booking_status, b.refund_status, b.refund_reference_id, b.cancellation_reason,
	c.full_name, c.email, b.created_on, b.updated_on`

func scanBooking(row interface{ Scan(...any) error }) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(&b.ID, &b.BookingReference, &b.CustomerID, &b.VehicleID, &b.PickupLocation, &b.DropoffLocation,
		&b.PickupDate, &b.ReturnDate, &b.PickupTime, &b.RentalDays, &b.DriveOption, &b.TotalAmount,
		&b.BookingStatus, &b.RefundStatus, &b.RefundReferenceID, &b.CancellationReason,
		&b.CustomerName, &b.CustomerEmail, &b.CreatedOn, &b.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (booking_reference, customer_id, vehicle_id, pickup_location, dropoff_location,
	            pickup_date, return_date, pickup_time, rental_days, drive_option, total_amount,
	            booking_status, refund_status, refund_reference_id, cancellation_reason, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		b.BookingReference, b.CustomerID, b.VehicleID, b.PickupLocation, b.DropoffLocation,
		b.PickupDate, b.ReturnDate, b.PickupTime, b.RentalDays, b.DriveOption, b.TotalAmount,
		b.BookingStatus, b.RefundStatus, b.RefundReferenceID, b.CancellationReason, time.Now(), time.Now()).Scan(&b.ID)
}

func (r *bookingRepository) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b JOIN customers c ON c.id = b.customer_id WHERE b.id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "booking", Key: fmt.Sprintf("%d", id)}
	}
	return b, err
}

func (r *bookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b JOIN customers c ON c.id = b.customer_id WHERE b.booking_reference = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, reference))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "booking", Key: reference}
	}
	return b, err
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `UPDATE bookings SET pickup_location=$1, dropoff_location=$2, pickup_date=$3, return_date=$4,
	            pickup_time=$5, rental_days=$6, drive_option=$7, total_amount=$8, updated_on=$9 WHERE id=$10`
	_, err := r.db.ExecContext(ctx, query, b.PickupLocation, b.DropoffLocation, b.PickupDate, b.ReturnDate,
		b.PickupTime, b.RentalDays, b.DriveOption, b.TotalAmount, time.Now(), b.ID)
	return err
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id int32, expectedFrom, to domain.BookingStatus, refundStatus domain.RefundStatus, refundReferenceID, cancellationReason string) (bool, error) {
	query := `UPDATE bookings SET booking_status=$1, refund_status=$2, refund_reference_id=$3,
	            cancellation_reason=$4, updated_on=$5 WHERE id=$6 AND booking_status=$7`
	res, err := r.db.ExecContext(ctx, query, to, refundStatus, refundReferenceID, cancellationReason, time.Now(), id, expectedFrom)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &domain.NotFoundError{Entity: "booking", Key: fmt.Sprintf("%d", id)}
	}
	return nil
}

func (r *bookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b JOIN customers c ON c.id = b.customer_id ORDER BY b.created_on DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) ListByCustomer(ctx context.Context, customerID int32, page, pageSize int32) ([]domain.Booking, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM bookings WHERE customer_id = $1`, customerID).Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings b JOIN customers c ON c.id = b.customer_id
	          WHERE b.customer_id = $1 ORDER BY b.created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, customerID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, count, rows.Err()
}

func (r *bookingRepository) CompleteElapsed(ctx context.Context, cutoffDate string) ([]int32, error) {
	query := `UPDATE bookings SET booking_status='completed', updated_on=NOW()
	          WHERE booking_status='confirmed' AND return_date < $1 RETURNING id`
	rows, err := r.db.QueryContext(ctx, query, cutoffDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
