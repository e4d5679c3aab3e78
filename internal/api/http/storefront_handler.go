package http

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"arrentals-backend/internal/domain"
	"arrentals-backend/internal/logger"
	"arrentals-backend/internal/repository"
	"arrentals-backend/internal/service"
	"arrentals-backend/internal/session"
	"arrentals-backend/internal/utils"
)

// StorefrontHandler serves the public booking funnel: vehicle catalog, price
// quotes, the per-session draft, lead capture, and booking creation.
type StorefrontHandler struct {
	vehicleRepo repository.VehicleRepository
	drafts      *session.DraftStore
	bookingSvc  service.BookingService
	leadSvc     service.LeadCaptureService

	// One debouncer per draft session so a burst of form edits collapses into
	// a single lead upsert.
	debounce time.Duration
	mu       sync.Mutex
	savers   map[string]*service.DraftSaver
}

func NewStorefrontHandler(
	vehicleRepo repository.VehicleRepository,
	drafts *session.DraftStore,
	bookingSvc service.BookingService,
	leadSvc service.LeadCaptureService,
	debounce time.Duration,
) *StorefrontHandler {
	return &StorefrontHandler{
		vehicleRepo: vehicleRepo,
		drafts:      drafts,
		bookingSvc:  bookingSvc,
		leadSvc:     leadSvc,
		debounce:    debounce,
		savers:      make(map[string]*service.DraftSaver),
	}
}

func (h *StorefrontHandler) saverFor(sessionID string) *service.DraftSaver {
	h.mu.Lock()
	defer h.mu.Unlock()
	saver, ok := h.savers[sessionID]
	if !ok {
		var s *service.DraftSaver
		s = service.NewDraftSaver(h.leadSvc, h.debounce, func() {
			h.evictIdleSaver(sessionID, s)
		})
		h.savers[sessionID] = s
		saver = s
	}
	return saver
}

// evictIdleSaver removes the session's saver once its debounced save has
// drained. Abandoned sessions never call ClearDraft or CreateBooking, so
// without this the map would grow for the life of the server. A Schedule
// racing the eviction just recreates the entry on the next request.
func (h *StorefrontHandler) evictIdleSaver(sessionID string, saver *service.DraftSaver) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.savers[sessionID] == saver && saver.Idle() {
		delete(h.savers, sessionID)
	}
}

func (h *StorefrontHandler) dropSaver(sessionID string) {
	h.mu.Lock()
	saver, ok := h.savers[sessionID]
	delete(h.savers, sessionID)
	h.mu.Unlock()
	if ok {
		saver.Cancel()
	}
}

// ListVehicles returns the catalog sorted by category (sedan, suv, mpv, van)
// and name within each category.
func (h *StorefrontHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicleRepo.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	sort.SliceStable(vehicles, func(i, j int) bool {
		ri, rj := domain.CategoryRank(vehicles[i].Category), domain.CategoryRank(vehicles[j].Category)
		if ri != rj {
			return ri < rj
		}
		return vehicles[i].Name < vehicles[j].Name
	})
	writeJSON(w, http.StatusOK, vehicles)
}

type quoteRequest struct {
	VehicleID       int32              `json:"vehicle_id"`
	PickupDate      string             `json:"pickup_date"`
	ReturnDate      string             `json:"return_date"`
	PickupLocation  string             `json:"pickup_location"`
	DropoffLocation string             `json:"dropoff_location"`
	DriveOption     domain.DriveOption `json:"drive_option"`
}

// Quote prices a prospective rental. Partial inputs are fine: missing dates
// quote a single day, unknown locations carry no fee.
func (h *StorefrontHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	vehicle, err := h.vehicleRepo.GetByID(r.Context(), req.VehicleID)
	if err != nil {
		writeError(w, err)
		return
	}
	breakdown := utils.ComputePrice(vehicle.PricePerDay, req.PickupDate, req.ReturnDate,
		req.PickupLocation, req.DropoffLocation, req.DriveOption)
	writeJSON(w, http.StatusOK, breakdown)
}

type initDraftRequest struct {
	VehicleID int32 `json:"vehicle_id"`
}

func (h *StorefrontHandler) InitDraft(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]
	var req initDraftRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	draft, err := h.drafts.Init(r.Context(), sessionID, req.VehicleID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

func (h *StorefrontHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.drafts.Get(r.Context(), mux.Vars(r)["sessionID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *StorefrontHandler) UpdateDraftVehicle(w http.ResponseWriter, r *http.Request) {
	var req initDraftRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	draft, err := h.drafts.UpdateVehicle(r.Context(), mux.Vars(r)["sessionID"], req.VehicleID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *StorefrontHandler) UpdateDraftRenter(w http.ResponseWriter, r *http.Request) {
	var renter domain.RenterInfo
	if err := decodeBody(r, &renter); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	draft, err := h.drafts.UpdateRenterInfo(r.Context(), mux.Vars(r)["sessionID"], renter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *StorefrontHandler) UpdateDraftSearch(w http.ResponseWriter, r *http.Request) {
	var search domain.SearchCriteria
	if err := decodeBody(r, &search); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	draft, err := h.drafts.UpdateSearchCriteria(r.Context(), mux.Vars(r)["sessionID"], search)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

type driveOptionRequest struct {
	DriveOption domain.DriveOption `json:"drive_option"`
}

func (h *StorefrontHandler) UpdateDraftDriveOption(w http.ResponseWriter, r *http.Request) {
	var req driveOptionRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	draft, err := h.drafts.UpdateDriveOption(r.Context(), mux.Vars(r)["sessionID"], req.DriveOption)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *StorefrontHandler) AgreeToTerms(w http.ResponseWriter, r *http.Request) {
	draft, err := h.drafts.AgreeToTerms(r.Context(), mux.Vars(r)["sessionID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *StorefrontHandler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]
	h.dropSaver(sessionID)
	if err := h.drafts.Clear(r.Context(), sessionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type leadDraftRequest struct {
	SessionID string            `json:"session_id"`
	Lead      service.LeadInput `json:"lead"`
}

// SaveLeadDraft accepts a lead capture payload from the funnel. With a session
// ID the save is debounced; without one it is written immediately. Either way
// the endpoint acknowledges straight away since capture is best-effort.
func (h *StorefrontHandler) SaveLeadDraft(w http.ResponseWriter, r *http.Request) {
	var req leadDraftRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if req.SessionID != "" {
		h.saverFor(req.SessionID).Schedule(&req.Lead)
		writeJSON(w, http.StatusAccepted, nil)
		return
	}
	id, err := h.leadSvc.SaveOrUpdateLead(r.Context(), &req.Lead)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int32{"lead_id": id})
}

type createBookingRequest struct {
	SessionID string `json:"session_id"`
}

// CreateBooking finalizes the session's draft into a booking. The price is
// recomputed from the stored draft so the client cannot submit its own total.
func (h *StorefrontHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	draft, err := h.drafts.Get(r.Context(), req.SessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	vehicle, err := h.vehicleRepo.GetByID(r.Context(), draft.VehicleID)
	if err != nil {
		writeError(w, err)
		return
	}
	pricing := utils.ComputePrice(vehicle.PricePerDay, draft.Search.PickupDate, draft.Search.ReturnDate,
		draft.Search.PickupLocation, draft.Search.DropoffLocation, draft.DriveOption)

	booking, err := h.bookingSvc.CreateBooking(r.Context(), draft, pricing)
	if err != nil {
		writeError(w, err)
		return
	}

	h.dropSaver(req.SessionID)
	if err := h.drafts.Clear(r.Context(), req.SessionID); err != nil {
		// The booking exists; a lingering draft only costs a TTL expiry.
		logger.Warn("Failed to clear draft after booking", "session_id", req.SessionID, "error", err)
	}
	writeJSON(w, http.StatusCreated, booking)
}

type trackBookingResponse struct {
	Booking       *domain.Booking      `json:"booking"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
}

// TrackBooking looks a booking up by its customer-facing reference and attaches
// the status of its most recent payment.
func (h *StorefrontHandler) TrackBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookingSvc.GetBookingByReference(r.Context(), mux.Vars(r)["reference"])
	if err != nil {
		writeError(w, err)
		return
	}
	paymentStatus, err := h.bookingSvc.EffectivePaymentStatus(r.Context(), booking.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trackBookingResponse{Booking: booking, PaymentStatus: paymentStatus})
}
