package postgres

import (
	"database/sql"

	"arrentals-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.VehicleRepository
	repository.CustomerRepository
	repository.BookingRepository
	repository.LeadRepository
	repository.PaymentRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		VehicleRepository:      NewVehicleRepository(db),
		CustomerRepository:     NewCustomerRepository(db),
		BookingRepository:      NewBookingRepository(db),
		LeadRepository:         NewLeadRepository(db),
		PaymentRepository:      NewPaymentRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
