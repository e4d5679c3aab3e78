package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"arrentals-backend/internal/security"
)

// NewRouter wires the storefront and admin APIs. Storefront routes are public;
// everything under /api/admin requires a valid admin bearer token.
func NewRouter(storefront *StorefrontHandler, admin *AdminHandler, validator security.TokenValidator) *mux.Router {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware)

	api := r.PathPrefix("/api").Subrouter()

	// Catalog and quoting
	api.HandleFunc("/vehicles", storefront.ListVehicles).Methods(http.MethodGet)
	api.HandleFunc("/quote", storefront.Quote).Methods(http.MethodPost)

	// Draft session
	api.HandleFunc("/sessions/{sessionID}/draft", storefront.InitDraft).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{sessionID}/draft", storefront.GetDraft).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{sessionID}/draft", storefront.ClearDraft).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{sessionID}/draft/vehicle", storefront.UpdateDraftVehicle).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{sessionID}/draft/renter", storefront.UpdateDraftRenter).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{sessionID}/draft/search", storefront.UpdateDraftSearch).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{sessionID}/draft/drive-option", storefront.UpdateDraftDriveOption).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{sessionID}/draft/agree-terms", storefront.AgreeToTerms).Methods(http.MethodPost)

	// Lead capture and bookings
	api.HandleFunc("/leads/draft", storefront.SaveLeadDraft).Methods(http.MethodPost)
	api.HandleFunc("/bookings", storefront.CreateBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/track/{reference}", storefront.TrackBooking).Methods(http.MethodGet)

	// Admin console
	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(AdminAuthMiddleware(validator))

	adminRouter.HandleFunc("/bookings", admin.ListBookings).Methods(http.MethodGet)
	adminRouter.HandleFunc("/bookings/{id}", admin.GetBooking).Methods(http.MethodGet)
	adminRouter.HandleFunc("/bookings/{id}", admin.UpdateBooking).Methods(http.MethodPut)
	adminRouter.HandleFunc("/bookings/{id}", admin.DeleteBooking).Methods(http.MethodDelete)
	adminRouter.HandleFunc("/bookings/{id}/confirm", admin.ConfirmBooking).Methods(http.MethodPost)
	adminRouter.HandleFunc("/bookings/{id}/cancel", admin.CancelBooking).Methods(http.MethodPost)
	adminRouter.HandleFunc("/bookings/{id}/complete", admin.CompleteBooking).Methods(http.MethodPost)
	adminRouter.HandleFunc("/bookings/{id}/refund-initiate", admin.InitiateRefund).Methods(http.MethodPost)
	adminRouter.HandleFunc("/bookings/{id}/refund-confirm", admin.ConfirmRefund).Methods(http.MethodPost)

	adminRouter.HandleFunc("/leads", admin.ListLeads).Methods(http.MethodGet)
	adminRouter.HandleFunc("/leads/{id}", admin.GetLead).Methods(http.MethodGet)
	adminRouter.HandleFunc("/leads/{id}", admin.DeleteLead).Methods(http.MethodDelete)

	adminRouter.HandleFunc("/payments", admin.ListPayments).Methods(http.MethodGet)
	adminRouter.HandleFunc("/{collection}/load-more", admin.LoadMore).Methods(http.MethodPost)

	adminRouter.HandleFunc("/customers", admin.ListCustomers).Methods(http.MethodGet)
	adminRouter.HandleFunc("/customers/{id}/bookings", admin.ListCustomerBookings).Methods(http.MethodGet)

	adminRouter.HandleFunc("/vehicles", admin.CreateVehicle).Methods(http.MethodPost)
	adminRouter.HandleFunc("/vehicles/{id}", admin.UpdateVehicle).Methods(http.MethodPut)
	adminRouter.HandleFunc("/vehicles/{id}", admin.DeleteVehicle).Methods(http.MethodDelete)

	adminRouter.HandleFunc("/notifications", admin.ListNotifications).Methods(http.MethodGet)
	adminRouter.HandleFunc("/notifications/{id}/read", admin.MarkNotificationRead).Methods(http.MethodPost)

	return r
}
