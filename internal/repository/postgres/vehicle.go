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

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

const vehicleColumns = `id, name, category, price_per_day, seats, transmission, fuel_type, image_url, available, created_on`

func scanVehicle(row interface{ Scan(...any) error }) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	err := row.Scan(&v.ID, &v.Name, &v.Category, &v.PricePerDay, &v.Seats, &v.Transmission, &v.FuelType, &v.ImageURL, &v.Available, &v.CreatedOn)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *vehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	query := `INSERT INTO vehicles (name, category, price_per_day, seats, transmission, fuel_type, image_url, available, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	return r.db.QueryRowContext(ctx, query, v.Name, v.Category, v.PricePerDay, v.Seats, v.Transmission, v.FuelType, v.ImageURL, v.Available, time.Now()).Scan(&v.ID)
}

func (r *vehicleRepository) GetByID(ctx context.Context, id int32) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	v, err := scanVehicle(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "vehicle", Key: fmt.Sprintf("%d", id)}
	}
	return v, err
}

func (r *vehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	query := `UPDATE vehicles SET name=$1, category=$2, price_per_day=$3, seats=$4, transmission=$5,
	            fuel_type=$6, image_url=$7, available=$8 WHERE id=$9`
	_, err := r.db.ExecContext(ctx, query, v.Name, v.Category, v.PricePerDay, v.Seats, v.Transmission, v.FuelType, v.ImageURL, v.Available, v.ID)
	return err
}

func (r *vehicleRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &domain.NotFoundError{Entity: "vehicle", Key: fmt.Sprintf("%d", id)}
	}
	return nil
}

func (r *vehicleRepository) List(ctx context.Context) ([]domain.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY created_on DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}
