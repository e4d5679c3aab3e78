package domain

type VehicleCategory string

const (
	VehicleCategorySedan VehicleCategory = "sedan"
	VehicleCategorySUV   VehicleCategory = "suv"
	VehicleCategoryMPV   VehicleCategory = "mpv"
	VehicleCategoryVan   VehicleCategory = "van"
)

var vehicleCategoryOrder = map[VehicleCategory]int{
	VehicleCategorySedan: 1,
	VehicleCategorySUV:   2,
	VehicleCategoryMPV:   3,
	VehicleCategoryVan:   4,
}

// CategoryRank orders vehicle categories for listings: sedan < suv < mpv < van.
// Unknown categories sort last.
func CategoryRank(c VehicleCategory) int {
	if r, ok := vehicleCategoryOrder[c]; ok {
		return r
	}
	return len(vehicleCategoryOrder) + 1
}

type Vehicle struct {
	ID           int32           `json:"id"`
	Name         string          `json:"name"`
	Category     VehicleCategory `json:"category"`
	PricePerDay  int64           `json:"price_per_day"`
	Seats        int32           `json:"seats"`
	Transmission string          `json:"transmission"`
	FuelType     string          `json:"fuel_type"`
	ImageURL     string          `json:"image_url,omitempty"`
	Available    bool            `json:"available"`
	CreatedOn    string          `json:"created_on"`
}

type Customer struct {
	ID          int32  `json:"id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	CreatedOn   string `json:"created_on"`
}
