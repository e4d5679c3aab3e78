package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrentals-backend/internal/domain"
	"arrentals-backend/internal/repository"
	"arrentals-backend/internal/service"
)

func seedBookings() []domain.Booking {
	return []domain.Booking{
		{ID: 1, BookingReference: "AR-AAAA1111", BookingStatus: domain.BookingStatusPending, CustomerName: "Maria Santos", CustomerEmail: "maria@test.com"},
		{ID: 2, BookingReference: "AR-BBBB2222", BookingStatus: domain.BookingStatusConfirmed, CustomerName: "Jose Rizal", CustomerEmail: "jose@test.com"},
		{ID: 3, BookingReference: "AR-CCCC3333", BookingStatus: domain.BookingStatusPending, CustomerName: "Ana Cruz", CustomerEmail: "ana@test.com"},
		{ID: 4, BookingReference: "AR-DDDD4444", BookingStatus: domain.BookingStatusCancelled, CustomerName: "Maria Lopez", CustomerEmail: "mlopez@test.com"},
	}
}

func newSyncService(t *testing.T, pageSize int) (*service.AdminSyncService, *bookingServiceMocks) {
	t.Helper()
	m := &bookingServiceMocks{
		bookingRepo: new(MockBookingRepo),
		leadRepo:    new(MockLeadRepo),
		paymentRepo: new(MockPaymentRepo),
	}
	svc := service.NewAdminSyncService(m.bookingRepo, m.leadRepo, m.paymentRepo, pageSize)
	return svc, m
}

func TestAdminSyncService_RefreshAndFilter(t *testing.T) {
	ctx := context.Background()
	svc, m := newSyncService(t, 10)

	m.bookingRepo.On("List", ctx).Return(seedBookings(), nil)
	require.NoError(t, svc.Refresh(ctx, repository.CollectionBookings))

	t.Run("AllTabShowsEverything", func(t *testing.T) {
		items, total := svc.Bookings()
		assert.Equal(t, 4, total)
		assert.Len(t, items, 4)
	})

	t.Run("TabFiltersByStatus", func(t *testing.T) {
		svc.SetFilter(repository.CollectionBookings, "pending", "")
		items, total := svc.Bookings()
		assert.Equal(t, 2, total)
		for _, b := range items {
			assert.Equal(t, domain.BookingStatusPending, b.BookingStatus)
		}
	})

	t.Run("SearchIsCaseInsensitive", func(t *testing.T) {
		svc.SetFilter(repository.CollectionBookings, service.TabAll, "MARIA")
		_, total := svc.Bookings()
		assert.Equal(t, 2, total)
	})

	t.Run("TabAndSearchAreANDed", func(t *testing.T) {
		svc.SetFilter(repository.CollectionBookings, "pending", "maria")
		items, total := svc.Bookings()
		assert.Equal(t, 1, total)
		assert.Equal(t, "Maria Santos", items[0].CustomerName)
	})

	t.Run("SearchMatchesReference", func(t *testing.T) {
		svc.SetFilter(repository.CollectionBookings, service.TabAll, "bbbb")
		items, total := svc.Bookings()
		assert.Equal(t, 1, total)
		assert.Equal(t, "AR-BBBB2222", items[0].BookingReference)
	})
}

func TestAdminSyncService_PaymentSearch(t *testing.T) {
	ctx := context.Background()
	svc, m := newSyncService(t, 10)

	m.paymentRepo.On("List", ctx).Return([]domain.Payment{
		{ID: 1, BookingID: 1, BookingReference: "AR-AAAA1111", Method: "gcash", PaymentStatus: domain.PaymentStatusPaid},
		{ID: 2, BookingID: 2, BookingReference: "AR-BBBB2222", Method: "bank_transfer", PaymentStatus: domain.PaymentStatusPending},
	}, nil)
	require.NoError(t, svc.Refresh(ctx, repository.CollectionPayments))

	t.Run("SearchMatchesBookingReference", func(t *testing.T) {
		svc.SetFilter(repository.CollectionPayments, service.TabAll, "bbbb2222")
		items, total := svc.Payments()
		require.Equal(t, 1, total)
		assert.Equal(t, "AR-BBBB2222", items[0].BookingReference)
	})

	t.Run("SearchMatchesMethod", func(t *testing.T) {
		svc.SetFilter(repository.CollectionPayments, service.TabAll, "gcash")
		items, total := svc.Payments()
		require.Equal(t, 1, total)
		assert.Equal(t, int32(1), items[0].ID)
	})
}

func TestAdminSyncService_Pagination(t *testing.T) {
	ctx := context.Background()
	svc, m := newSyncService(t, 2)

	m.bookingRepo.On("List", ctx).Return(seedBookings(), nil)
	require.NoError(t, svc.Refresh(ctx, repository.CollectionBookings))

	items, total := svc.Bookings()
	assert.Equal(t, 4, total)
	assert.Len(t, items, 2, "first page only")

	svc.LoadMore(repository.CollectionBookings)
	items, total = svc.Bookings()
	assert.Equal(t, 4, total)
	assert.Len(t, items, 4)

	// Changing the filter resets pagination
	svc.SetFilter(repository.CollectionBookings, service.TabAll, "")
	items, _ = svc.Bookings()
	assert.Len(t, items, 2)
}

func TestAdminSyncService_RunRefreshesOnEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, m := newSyncService(t, 10)

	refreshed := make(chan struct{})
	m.leadRepo.On("List", ctx).Return([]domain.Lead{{ID: 1, Email: "maria@test.com", FullName: "Maria Santos"}}, nil)

	events := make(chan repository.CollectionChange, 1)
	go func() {
		svc.Run(ctx, events)
		close(refreshed)
	}()

	events <- repository.CollectionChange{Collection: repository.CollectionLeads, Operation: "INSERT", RecordID: 1}

	assert.Eventually(t, func() bool {
		items, _ := svc.Leads()
		return len(items) == 1
	}, 2*time.Second, 10*time.Millisecond)

	close(events)
	select {
	case <-refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after event channel closed")
	}
}
