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

type leadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) repository.LeadRepository {
	return &leadRepository{db: db}
}

const leadColumns = `id, email, vehicle_id, full_name, phone_number, pickup_location, dropoff_location,
	pickup_date, return_date, pickup_time, drive_option, quoted_total, last_step, status,
	automation_status, booking_id, drop_off_timestamp, created_on`

func scanLead(row interface{ Scan(...any) error }) (*domain.Lead, error) {
	l := &domain.Lead{}
	err := row.Scan(&l.ID, &l.Email, &l.VehicleID, &l.FullName, &l.PhoneNumber, &l.PickupLocation, &l.DropoffLocation,
		&l.PickupDate, &l.ReturnDate, &l.PickupTime, &l.DriveOption, &l.QuotedTotal, &l.LastStep, &l.Status,
		&l.AutomationStatus, &l.BookingID, &l.DropOffTimestamp, &l.CreatedOn)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *leadRepository) Create(ctx context.Context, l *domain.Lead) error {
	query := `INSERT INTO leads (email, vehicle_id, full_name, phone_number, pickup_location, dropoff_location,
	            pickup_date, return_date, pickup_time, drive_option, quoted_total, last_step, status,
	            automation_status, drop_off_timestamp, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		l.Email, l.VehicleID, l.FullName, l.PhoneNumber, l.PickupLocation, l.DropoffLocation,
		l.PickupDate, l.ReturnDate, l.PickupTime, l.DriveOption, l.QuotedTotal, l.LastStep, l.Status,
		l.AutomationStatus, l.DropOffTimestamp, time.Now()).Scan(&l.ID)
}

func (r *leadRepository) GetByID(ctx context.Context, id int32) (*domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	l, err := scanLead(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "lead", Key: fmt.Sprintf("%d", id)}
	}
	return l, err
}

func (r *leadRepository) FindByEmailAndVehicle(ctx context.Context, email string, vehicleID int32) (*domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE email = $1 AND vehicle_id = $2`
	l, err := scanLead(r.db.QueryRowContext(ctx, query, email, vehicleID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "lead", Key: fmt.Sprintf("%s/%d", email, vehicleID)}
	}
	return l, err
}

func (r *leadRepository) Update(ctx context.Context, l *domain.Lead) error {
	query := `UPDATE leads SET full_name=$1, phone_number=$2, pickup_location=$3, dropoff_location=$4,
	            pickup_date=$5, return_date=$6, pickup_time=$7, drive_option=$8, quoted_total=$9,
	            last_step=$10, drop_off_timestamp=$11 WHERE id=$12`
	_, err := r.db.ExecContext(ctx, query, l.FullName, l.PhoneNumber, l.PickupLocation, l.DropoffLocation,
		l.PickupDate, l.ReturnDate, l.PickupTime, l.DriveOption, l.QuotedTotal,
		l.LastStep, l.DropOffTimestamp, l.ID)
	return err
}

func (r *leadRepository) MarkRecovered(ctx context.Context, email string, vehicleID, bookingID int32) error {
	query := `UPDATE leads SET status='recovered', booking_id=$1 WHERE email=$2 AND vehicle_id=$3 AND status <> 'recovered'`
	_, err := r.db.ExecContext(ctx, query, bookingID, email, vehicleID)
	return err
}

func (r *leadRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &domain.NotFoundError{Entity: "lead", Key: fmt.Sprintf("%d", id)}
	}
	return nil
}

func (r *leadRepository) List(ctx context.Context) ([]domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY drop_off_timestamp DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, rows.Err()
}

func (r *leadRepository) ExpireStale(ctx context.Context, cutoff string) (int64, error) {
	query := `UPDATE leads SET status='expired' WHERE status='pending' AND drop_off_timestamp < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *leadRepository) ListPendingForFollowUp(ctx context.Context, cutoff string) ([]domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads
	          WHERE status='pending' AND automation_status='not_sent' AND drop_off_timestamp < $1
	          ORDER BY drop_off_timestamp ASC`
	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, rows.Err()
}

func (r *leadRepository) SetAutomationStatus(ctx context.Context, id int32, status domain.LeadAutomationStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE leads SET automation_status=$1 WHERE id=$2`, status, id)
	return err
}
