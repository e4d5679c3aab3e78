package service

import (
	"context"
	"strings"
	"sync"

	"arrentals-backend/internal/domain"
	"arrentals-backend/internal/logger"
	"arrentals-backend/internal/repository"
)

// TabAll shows every record regardless of status.
const TabAll = "all"

// viewState is the active client-side predicate for one admin list: a status
// tab, a free-text search, and how many rows "load more" has revealed.
type viewState struct {
	tab     string
	search  string
	visible int
}

// AdminSyncService keeps the admin console's list views consistent with the
// store. It never patches cached rows: any change notification invalidates the
// affected collection, which is re-fetched wholesale and re-filtered with the
// active view state. Tab and search are independent predicates ANDed together,
// tab applied first.
type AdminSyncService struct {
	bookingRepo repository.BookingRepository
	leadRepo    repository.LeadRepository
	paymentRepo repository.PaymentRepository
	pageSize    int

	mu       sync.RWMutex
	bookings []domain.Booking
	leads    []domain.Lead
	payments []domain.Payment
	views    map[string]*viewState
}

func NewAdminSyncService(
	bookingRepo repository.BookingRepository,
	leadRepo repository.LeadRepository,
	paymentRepo repository.PaymentRepository,
	pageSize int,
) *AdminSyncService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &AdminSyncService{
		bookingRepo: bookingRepo,
		leadRepo:    leadRepo,
		paymentRepo: paymentRepo,
		pageSize:    pageSize,
		views: map[string]*viewState{
			repository.CollectionBookings: {tab: TabAll, visible: pageSize},
			repository.CollectionLeads:    {tab: TabAll, visible: pageSize},
			repository.CollectionPayments: {tab: TabAll, visible: pageSize},
		},
	}
}

// Run consumes change notifications until the context ends or the event
// channel closes. Each event triggers a full reload of its collection.
func (s *AdminSyncService) Run(ctx context.Context, events <-chan repository.CollectionChange) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-events:
			if !ok {
				return
			}
			if err := s.Refresh(ctx, change.Collection); err != nil {
				logger.Error("Failed to refresh collection after change", "collection", change.Collection, "error", err)
			}
		}
	}
}

// RefreshAll loads every synced collection, typically at startup.
func (s *AdminSyncService) RefreshAll(ctx context.Context) error {
	for _, collection := range []string{repository.CollectionBookings, repository.CollectionLeads, repository.CollectionPayments} {
		if err := s.Refresh(ctx, collection); err != nil {
			return err
		}
	}
	return nil
}

func (s *AdminSyncService) Refresh(ctx context.Context, collection string) error {
	switch collection {
	case repository.CollectionBookings:
		bookings, err := s.bookingRepo.List(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.bookings = bookings
		s.mu.Unlock()
	case repository.CollectionLeads:
		leads, err := s.leadRepo.List(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.leads = leads
		s.mu.Unlock()
	case repository.CollectionPayments:
		payments, err := s.paymentRepo.List(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.payments = payments
		s.mu.Unlock()
	default:
		logger.Warn("Ignoring change for unknown collection", "collection", collection)
	}
	return nil
}

// SetFilter replaces the active tab and search for a collection and resets
// pagination to the first page.
func (s *AdminSyncService) SetFilter(collection, tab, search string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, ok := s.views[collection]
	if !ok {
		return
	}
	if tab == "" {
		tab = TabAll
	}
	view.tab = tab
	view.search = search
	view.visible = s.pageSize
}

// LoadMore reveals one more page of the filtered list.
func (s *AdminSyncService) LoadMore(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if view, ok := s.views[collection]; ok {
		view.visible += s.pageSize
	}
}

// Bookings returns the currently visible slice of the filtered booking list
// and the total number of filtered rows.
func (s *AdminSyncService) Bookings() ([]domain.Booking, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	view := s.views[repository.CollectionBookings]

	var filtered []domain.Booking
	for _, b := range s.bookings {
		if view.tab != TabAll && string(b.BookingStatus) != view.tab {
			continue
		}
		if !matchesSearch(view.search, b.BookingReference, b.CustomerName, b.CustomerEmail) {
			continue
		}
		filtered = append(filtered, b)
	}
	return pageOf(filtered, view.visible), len(filtered)
}

// Leads returns the currently visible slice of the filtered lead list and the
// total number of filtered rows.
func (s *AdminSyncService) Leads() ([]domain.Lead, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	view := s.views[repository.CollectionLeads]

	var filtered []domain.Lead
	for _, l := range s.leads {
		if view.tab != TabAll && string(l.Status) != view.tab {
			continue
		}
		if !matchesSearch(view.search, l.FullName, l.Email) {
			continue
		}
		filtered = append(filtered, l)
	}
	return pageOf(filtered, view.visible), len(filtered)
}

// Payments returns the currently visible slice of the filtered payment list
// and the total number of filtered rows.
func (s *AdminSyncService) Payments() ([]domain.Payment, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	view := s.views[repository.CollectionPayments]

	var filtered []domain.Payment
	for _, p := range s.payments {
		if view.tab != TabAll && string(p.PaymentStatus) != view.tab {
			continue
		}
		if !matchesSearch(view.search, p.BookingReference, p.Method) {
			continue
		}
		filtered = append(filtered, p)
	}
	return pageOf(filtered, view.visible), len(filtered)
}

func matchesSearch(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func pageOf[T any](items []T, visible int) []T {
	if visible >= len(items) {
		return items
	}
	return items[:visible]
}
