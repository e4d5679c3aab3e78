package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrentals-backend/internal/domain"
)

var leadRows = []string{
	"id", "email", "vehicle_id", "full_name", "phone_number", "pickup_location", "dropoff_location",
	"pickup_date", "return_date", "pickup_time", "drive_option", "quoted_total", "last_step", "status",
	"automation_status", "booking_id", "drop_off_timestamp", "created_on",
}

func sampleLeadRow(rows *sqlmock.Rows, id int32, status string) *sqlmock.Rows {
	return rows.AddRow(
		id, "maria@test.com", 7, "Maria Santos", "+639171234567", "Cebu City", "AR Car Rentals Office",
		"2026-02-10", "2026-02-12", "09:00", "self-drive", 9050, "renter_info", status,
		"not_sent", nil, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), "2026-02-01T10:00:00Z",
	)
}

func TestLeadRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(db)

	mock.ExpectQuery(`INSERT INTO leads`).
		WithArgs("maria@test.com", int32(7), "Maria Santos", "+639171234567", "Cebu City", "AR Car Rentals Office",
			"2026-02-10", "2026-02-12", "09:00", domain.DriveOptionSelfDrive, int64(9050),
			domain.LeadStepRenterInfo, domain.LeadStatusPending, domain.AutomationStatusNotSent,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	lead := &domain.Lead{
		Email:            "maria@test.com",
		VehicleID:        7,
		FullName:         "Maria Santos",
		PhoneNumber:      "+639171234567",
		PickupLocation:   "Cebu City",
		DropoffLocation:  "AR Car Rentals Office",
		PickupDate:       "2026-02-10",
		ReturnDate:       "2026-02-12",
		PickupTime:       "09:00",
		DriveOption:      domain.DriveOptionSelfDrive,
		QuotedTotal:      9050,
		LastStep:         domain.LeadStepRenterInfo,
		Status:           domain.LeadStatusPending,
		AutomationStatus: domain.AutomationStatusNotSent,
		DropOffTimestamp: time.Now().UTC(),
	}
	err = repo.Create(context.Background(), lead)
	assert.NoError(t, err)
	assert.Equal(t, int32(42), lead.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_FindByEmailAndVehicle(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(db)

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery(`FROM leads WHERE email = \$1 AND vehicle_id = \$2`).
			WithArgs("maria@test.com", int32(7)).
			WillReturnRows(sampleLeadRow(sqlmock.NewRows(leadRows), 42, "pending"))

		lead, err := repo.FindByEmailAndVehicle(context.Background(), "maria@test.com", 7)
		require.NoError(t, err)
		assert.Equal(t, int32(42), lead.ID)
		assert.Equal(t, domain.LeadStatusPending, lead.Status)
		assert.Nil(t, lead.BookingID)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`FROM leads WHERE email = \$1 AND vehicle_id = \$2`).
			WithArgs("nobody@test.com", int32(7)).
			WillReturnRows(sqlmock.NewRows(leadRows))

		_, err := repo.FindByEmailAndVehicle(context.Background(), "nobody@test.com", 7)
		assert.True(t, domain.IsNotFound(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_MarkRecovered(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(db)

	mock.ExpectExec(`UPDATE leads SET status='recovered', booking_id=\$1 WHERE email=\$2 AND vehicle_id=\$3 AND status <> 'recovered'`).
		WithArgs(int32(11), "maria@test.com", int32(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkRecovered(context.Background(), "maria@test.com", 7, 11)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_ExpireStale(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(db)

	mock.ExpectExec(`UPDATE leads SET status='expired' WHERE status='pending' AND drop_off_timestamp < \$1`).
		WithArgs("2026-02-01T00:00:00Z").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ExpireStale(context.Background(), "2026-02-01T00:00:00Z")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_ListPendingForFollowUp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(db)

	rows := sqlmock.NewRows(leadRows)
	sampleLeadRow(rows, 42, "pending")
	mock.ExpectQuery(`WHERE status='pending' AND automation_status='not_sent' AND drop_off_timestamp < \$1`).
		WithArgs("2026-02-01T09:00:00Z").
		WillReturnRows(rows)

	leads, err := repo.ListPendingForFollowUp(context.Background(), "2026-02-01T09:00:00Z")
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, domain.AutomationStatusNotSent, leads[0].AutomationStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_SetAutomationStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(db)

	mock.ExpectExec(`UPDATE leads SET automation_status=\$1 WHERE id=\$2`).
		WithArgs(domain.AutomationStatusSent, int32(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.SetAutomationStatus(context.Background(), 42, domain.AutomationStatusSent)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
