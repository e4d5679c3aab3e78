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

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `p.id, p.booking_id, b.booking_reference, p.amount, p.method, p.payment_status, p.receipt_url, p.proof_url, p.created_on`

func scanPayment(row interface{ Scan(...any) error }) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := row.Scan(&p.ID, &p.BookingID, &p.BookingReference, &p.Amount, &p.Method, &p.PaymentStatus, &p.ReceiptURL, &p.ProofURL, &p.CreatedOn)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (booking_id, amount, method, payment_status, receipt_url, proof_url, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query, p.BookingID, p.Amount, p.Method, p.PaymentStatus, p.ReceiptURL, p.ProofURL, time.Now()).Scan(&p.ID)
}

func (r *paymentRepository) ListByBooking(ctx context.Context, bookingID int32) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p JOIN bookings b ON b.id = p.booking_id
	          WHERE p.booking_id = $1 ORDER BY p.created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) LatestByBooking(ctx context.Context, bookingID int32) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p JOIN bookings b ON b.id = p.booking_id
	          WHERE p.booking_id = $1 ORDER BY p.created_on DESC LIMIT 1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, bookingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "payment", Key: fmt.Sprintf("booking:%d", bookingID)}
	}
	return p, err
}

func (r *paymentRepository) List(ctx context.Context) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p JOIN bookings b ON b.id = p.booking_id ORDER BY p.created_on DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}
