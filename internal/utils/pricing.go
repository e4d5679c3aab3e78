package utils

import (
	"math"
	"time"

	"arrentals-backend/internal/domain"
)

const dateLayout = "2006-01-02"

// DriverFlatFee is the flat per-engagement chauffeur fee in pesos, paid to the
// driver directly at pickup. It is surfaced on the breakdown but never added
// to the payable total.
const DriverFlatFee int64 = 1000

// locationFees maps pickup/dropoff locations to their delivery fee in pesos.
// The office is always free; unknown locations fall back to 0.
var locationFees = map[string]int64{
	"AR Car Rentals Office": 0,
	"Cebu City":             450,
	"Mandaue City":          500,
	"Lapu-Lapu City":        600,
	"Mactan Airport":        600,
	"Talisay City":          550,
	"Consolacion":           650,
	"Minglanilla":           700,
}

// LocationFee returns the delivery fee for one leg.
func LocationFee(location string) int64 {
	return locationFees[location]
}

// RentalDays computes the billable day count for a date window. Either date
// missing or unparseable defaults to 1 (quote-preview mode). Otherwise it is
// the ceiling of the absolute difference in days, minimum 1, so a same-day
// pickup and return still bills one day.
func RentalDays(pickupDate, returnDate string) int32 {
	if pickupDate == "" || returnDate == "" {
		return 1
	}
	pickup, err := time.Parse(dateLayout, pickupDate)
	if err != nil {
		return 1
	}
	ret, err := time.Parse(dateLayout, returnDate)
	if err != nil {
		return 1
	}

	hours := math.Abs(ret.Sub(pickup).Hours())
	days := int32(math.Ceil(hours / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// ComputePrice turns trip parameters into a cost breakdown. It is a total
// function: missing optional inputs default safely and nothing errors.
func ComputePrice(pricePerDay int64, pickupDate, returnDate, pickupLocation, dropoffLocation string, driveOption domain.DriveOption) domain.PriceBreakdown {
	days := RentalDays(pickupDate, returnDate)
	base := pricePerDay * int64(days)
	pickupFee := LocationFee(pickupLocation)
	dropoffFee := LocationFee(dropoffLocation)

	var driverFee int64
	if driveOption == domain.DriveOptionWithDriver {
		driverFee = DriverFlatFee
	}

	return domain.PriceBreakdown{
		RentalDays:         days,
		CarBasePrice:       base,
		PickupLocationFee:  pickupFee,
		DropoffLocationFee: dropoffFee,
		DriverFee:          driverFee,
		Total:              base + pickupFee + dropoffFee,
	}
}
