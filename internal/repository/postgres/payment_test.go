package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrentals-backend/internal/domain"
)

var paymentRows = []string{
	"id", "booking_id", "booking_reference", "amount", "method", "payment_status", "receipt_url", "proof_url", "created_on",
}

func TestPaymentRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPaymentRepository(db)

	mock.ExpectQuery(`INSERT INTO payments`).
		WithArgs(int32(11), int64(9050), "gcash", domain.PaymentStatusPaid, "", "", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	payment := &domain.Payment{
		BookingID:     11,
		Amount:        9050,
		Method:        "gcash",
		PaymentStatus: domain.PaymentStatusPaid,
	}
	err = repo.Create(context.Background(), payment)
	assert.NoError(t, err)
	assert.Equal(t, int32(5), payment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPaymentRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM payments p JOIN bookings b ON b.id = p.booking_id ORDER BY p.created_on DESC`).
		WillReturnRows(sqlmock.NewRows(paymentRows).
			AddRow(2, 12, "AR-BBBB2222", 17300, "bank_transfer", "pending", "", "", "2026-02-03T09:00:00Z").
			AddRow(1, 11, "AR-1A2B3C4D", 9050, "gcash", "paid", "", "", "2026-02-01T10:00:00Z"))

	payments, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "AR-BBBB2222", payments[0].BookingReference)
	assert.Equal(t, "AR-1A2B3C4D", payments[1].BookingReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_LatestByBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPaymentRepository(db)

	t.Run("LatestRow", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM payments p JOIN bookings b ON b.id = p.booking_id WHERE p.booking_id = \$1 ORDER BY p.created_on DESC LIMIT 1`).
			WithArgs(int32(11)).
			WillReturnRows(sqlmock.NewRows(paymentRows).
				AddRow(3, 11, "AR-1A2B3C4D", 9050, "gcash", "refunded", "", "", "2026-02-05T10:00:00Z"))

		payment, err := repo.LatestByBooking(context.Background(), 11)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusRefunded, payment.PaymentStatus)
		assert.Equal(t, "AR-1A2B3C4D", payment.BookingReference)
	})

	t.Run("NoPayments", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM payments p JOIN bookings b ON b.id = p.booking_id WHERE p.booking_id = \$1 ORDER BY p.created_on DESC LIMIT 1`).
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows(paymentRows))

		_, err := repo.LatestByBooking(context.Background(), 99)
		assert.True(t, domain.IsNotFound(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
