package domain

type DriveOption string

const (
	DriveOptionUnset      DriveOption = ""
	DriveOptionSelfDrive  DriveOption = "self-drive"
	DriveOptionWithDriver DriveOption = "with-driver"
)

type RenterInfo struct {
	FullName    string `json:"full_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
}

type SearchCriteria struct {
	PickupLocation  string `json:"pickup_location" validate:"required"`
	DropoffLocation string `json:"dropoff_location" validate:"required"`
	PickupDate      string `json:"pickup_date" validate:"required,datetime=2006-01-02"`
	ReturnDate      string `json:"return_date" validate:"required,datetime=2006-01-02"`
	PickupTime      string `json:"pickup_time" validate:"required"`
}

// BookingDraft is the in-progress booking a customer builds up step by step.
// It lives in the session store only and is cleared once a booking is created.
type BookingDraft struct {
	VehicleID   int32          `json:"vehicle_id" validate:"required"`
	Renter      RenterInfo     `json:"renter" validate:"required"`
	Search      SearchCriteria `json:"search" validate:"required"`
	DriveOption DriveOption    `json:"drive_option" validate:"required,oneof=self-drive with-driver"`
	TermsAgreed bool           `json:"terms_agreed"`
}

// PriceBreakdown is what the customer was quoted. DriverFee is informational:
// it is paid to the driver directly and is never part of Total.
type PriceBreakdown struct {
	RentalDays        int32 `json:"rental_days"`
	CarBasePrice      int64 `json:"car_base_price"`
	PickupLocationFee int64 `json:"pickup_location_fee"`
	DropoffLocationFee int64 `json:"dropoff_location_fee"`
	DriverFee         int64 `json:"driver_fee"`
	Total             int64 `json:"total"`
}
