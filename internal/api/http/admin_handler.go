package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"arrentals-backend/internal/domain"
	"arrentals-backend/internal/repository"
	"arrentals-backend/internal/service"
)

// AdminHandler serves the admin console: synced list views over bookings,
// leads and payments, booking lifecycle transitions and amendments, fleet and
// customer management, and the notification tray.
type AdminHandler struct {
	sync         *service.AdminSyncService
	bookingSvc   service.BookingService
	leadSvc      service.LeadCaptureService
	vehicleRepo  repository.VehicleRepository
	customerRepo repository.CustomerRepository
	noteRepo     repository.NotificationRepository
}

func NewAdminHandler(
	syncSvc *service.AdminSyncService,
	bookingSvc service.BookingService,
	leadSvc service.LeadCaptureService,
	vehicleRepo repository.VehicleRepository,
	customerRepo repository.CustomerRepository,
	noteRepo repository.NotificationRepository,
) *AdminHandler {
	return &AdminHandler{
		sync:         syncSvc,
		bookingSvc:   bookingSvc,
		leadSvc:      leadSvc,
		vehicleRepo:  vehicleRepo,
		customerRepo: customerRepo,
		noteRepo:     noteRepo,
	}
}

type listResponse struct {
	Items any `json:"items"`
	Total int `json:"total"`
}

// applyFilter pushes the tab and search query parameters into the view before
// reading it, so the response reflects exactly what was asked for.
func (h *AdminHandler) applyFilter(collection string, r *http.Request) {
	q := r.URL.Query()
	if q.Has("tab") || q.Has("search") {
		h.sync.SetFilter(collection, q.Get("tab"), q.Get("search"))
	}
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	h.applyFilter(repository.CollectionBookings, r)
	items, total := h.sync.Bookings()
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

func (h *AdminHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	h.applyFilter(repository.CollectionLeads, r)
	items, total := h.sync.Leads()
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

func (h *AdminHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	h.applyFilter(repository.CollectionPayments, r)
	items, total := h.sync.Payments()
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

// LoadMore reveals the next page of the named collection's filtered view.
func (h *AdminHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	switch collection {
	case repository.CollectionBookings, repository.CollectionLeads, repository.CollectionPayments:
		h.sync.LoadMore(collection)
		writeJSON(w, http.StatusNoContent, nil)
	default:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown collection: " + collection})
	}
}

type transitionRequest struct {
	CancellationReason string `json:"cancellation_reason,omitempty"`
	RefundReferenceID  string `json:"refund_reference_id,omitempty"`
}

// transition runs a booking status change. The target status is fixed by the
// route; the body carries only the optional reason and refund reference.
func (h *AdminHandler) transition(w http.ResponseWriter, r *http.Request, to domain.BookingStatus) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}
	var req transitionRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
			return
		}
	}
	booking, err := h.bookingSvc.Transition(r.Context(), id, to, service.TransitionOptions{
		CancellationReason: req.CancellationReason,
		RefundReferenceID:  req.RefundReferenceID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *AdminHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.BookingStatusConfirmed)
}

func (h *AdminHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.BookingStatusCancelled)
}

func (h *AdminHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.BookingStatusCompleted)
}

func (h *AdminHandler) InitiateRefund(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.BookingStatusRefundPending)
}

func (h *AdminHandler) ConfirmRefund(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.BookingStatusRefunded)
}

// DeleteBooking removes the row outright. Unlike cancel this is irreversible
// and leaves no audit trail, so the console gates it behind a second prompt.
func (h *AdminHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}
	if err := h.bookingSvc.DeleteBooking(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *AdminHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}
	booking, err := h.bookingSvc.GetBooking(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// UpdateBooking amends the itinerary of a booking that has not run yet; the
// total is repriced server-side from the amended schedule.
func (h *AdminHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return
	}
	var upd service.ItineraryUpdate
	if err := decodeBody(r, &upd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	booking, err := h.bookingSvc.UpdateItinerary(r.Context(), id, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 10)
	customers, total, err := h.customerRepo.List(r.Context(), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: customers, Total: int(total)})
}

// ListCustomerBookings backs the customer detail view: every booking the
// customer ever placed, newest first.
func (h *AdminHandler) ListCustomerBookings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid customer id"})
		return
	}
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 10)
	bookings, total, err := h.bookingSvc.ListBookingsByCustomer(r.Context(), id, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: bookings, Total: int(total)})
}

func (h *AdminHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var vehicle domain.Vehicle
	if err := decodeBody(r, &vehicle); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if err := h.vehicleRepo.Create(r.Context(), &vehicle); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, vehicle)
}

func (h *AdminHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid vehicle id"})
		return
	}
	var vehicle domain.Vehicle
	if err := decodeBody(r, &vehicle); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	vehicle.ID = id
	if err := h.vehicleRepo.Update(r.Context(), &vehicle); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (h *AdminHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid vehicle id"})
		return
	}
	if err := h.vehicleRepo.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// ListNotifications returns the console's notification tray, newest first.
func (h *AdminHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	limit := queryInt32(r, "limit", 20)
	offset := queryInt32(r, "offset", 0)
	notes, total, err := h.noteRepo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: notes, Total: int(total)})
}

func (h *AdminHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid notification id"})
		return
	}
	if err := h.noteRepo.MarkAsRead(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *AdminHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid lead id"})
		return
	}
	lead, err := h.leadSvc.GetLead(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *AdminHandler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid lead id"})
		return
	}
	if err := h.leadSvc.DeleteLead(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}

// queryInt32 reads a positive integer query parameter, falling back to the
// default on absence or garbage.
func queryInt32(r *http.Request, name string, fallback int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v <= 0 {
		return fallback
	}
	return int32(v)
}
