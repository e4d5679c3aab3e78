package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"arrentals-backend/internal/domain"
	"arrentals-backend/internal/service"
)

func validLeadInput() *service.LeadInput {
	return &service.LeadInput{
		Email:       "maria@test.com",
		VehicleID:   7,
		FullName:    "Maria Santos",
		PhoneNumber: "+639171234567",
		PickupDate:  "2026-02-10",
		ReturnDate:  "2026-02-12",
		QuotedTotal: 9050,
		LastStep:    domain.LeadStepDateSelection,
	}
}

func TestLeadCaptureService_SaveOrUpdateLead(t *testing.T) {
	ctx := context.Background()

	t.Run("InsertNewLead", func(t *testing.T) {
		mockRepo := new(MockLeadRepo)
		svc := service.NewLeadCaptureService(mockRepo)

		mockRepo.On("FindByEmailAndVehicle", ctx, "maria@test.com", int32(7)).
			Return(nil, &domain.NotFoundError{Entity: "lead", Key: "maria@test.com"}).Once()
		mockRepo.On("Create", ctx, mock.MatchedBy(func(l *domain.Lead) bool {
			return l.Email == "maria@test.com" &&
				l.VehicleID == 7 &&
				l.Status == domain.LeadStatusPending &&
				l.AutomationStatus == domain.AutomationStatusNotSent
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Lead).ID = 42
		}).Return(nil).Once()

		id, err := svc.SaveOrUpdateLead(ctx, validLeadInput())
		assert.NoError(t, err)
		assert.Equal(t, int32(42), id)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UpdateExistingLead", func(t *testing.T) {
		mockRepo := new(MockLeadRepo)
		svc := service.NewLeadCaptureService(mockRepo)

		existing := &domain.Lead{
			ID:        42,
			Email:     "maria@test.com",
			VehicleID: 7,
			Status:    domain.LeadStatusPending,
			LastStep:  domain.LeadStepDateSelection,
		}
		mockRepo.On("FindByEmailAndVehicle", ctx, "maria@test.com", int32(7)).Return(existing, nil).Once()
		mockRepo.On("Update", ctx, mock.MatchedBy(func(l *domain.Lead) bool {
			return l.ID == 42 && l.LastStep == domain.LeadStepRenterInfo && l.FullName == "Maria Santos"
		})).Return(nil).Once()

		input := validLeadInput()
		input.LastStep = domain.LeadStepRenterInfo
		id, err := svc.SaveOrUpdateLead(ctx, input)
		assert.NoError(t, err)
		assert.Equal(t, int32(42), id)
		mockRepo.AssertExpectations(t)
	})

	t.Run("LastStepNeverRegresses", func(t *testing.T) {
		mockRepo := new(MockLeadRepo)
		svc := service.NewLeadCaptureService(mockRepo)

		existing := &domain.Lead{
			ID:        42,
			Email:     "maria@test.com",
			VehicleID: 7,
			Status:    domain.LeadStatusPending,
			LastStep:  domain.LeadStepPayment,
		}
		mockRepo.On("FindByEmailAndVehicle", ctx, "maria@test.com", int32(7)).Return(existing, nil).Once()
		mockRepo.On("Update", ctx, mock.MatchedBy(func(l *domain.Lead) bool {
			return l.LastStep == domain.LeadStepPayment
		})).Return(nil).Once()

		input := validLeadInput()
		input.LastStep = domain.LeadStepDateSelection
		_, err := svc.SaveOrUpdateLead(ctx, input)
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RecoveredLeadUntouched", func(t *testing.T) {
		mockRepo := new(MockLeadRepo)
		svc := service.NewLeadCaptureService(mockRepo)

		bookingID := int32(9)
		existing := &domain.Lead{
			ID:        42,
			Email:     "maria@test.com",
			VehicleID: 7,
			Status:    domain.LeadStatusRecovered,
			BookingID: &bookingID,
		}
		mockRepo.On("FindByEmailAndVehicle", ctx, "maria@test.com", int32(7)).Return(existing, nil).Once()

		id, err := svc.SaveOrUpdateLead(ctx, validLeadInput())
		assert.NoError(t, err)
		assert.Equal(t, int32(42), id)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("LookupFailureFallsBackToInsert", func(t *testing.T) {
		mockRepo := new(MockLeadRepo)
		svc := service.NewLeadCaptureService(mockRepo)

		mockRepo.On("FindByEmailAndVehicle", ctx, "maria@test.com", int32(7)).
			Return(nil, errors.New("connection reset")).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Lead")).Return(nil).Once()

		_, err := svc.SaveOrUpdateLead(ctx, validLeadInput())
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RejectsInvalidInput", func(t *testing.T) {
		mockRepo := new(MockLeadRepo)
		svc := service.NewLeadCaptureService(mockRepo)

		input := validLeadInput()
		input.Email = "not-an-email"
		_, err := svc.SaveOrUpdateLead(ctx, input)
		assert.True(t, domain.IsValidation(err))
		mockRepo.AssertNotCalled(t, "FindByEmailAndVehicle", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InsertFailureIsTransient", func(t *testing.T) {
		mockRepo := new(MockLeadRepo)
		svc := service.NewLeadCaptureService(mockRepo)

		mockRepo.On("FindByEmailAndVehicle", ctx, "maria@test.com", int32(7)).
			Return(nil, &domain.NotFoundError{Entity: "lead", Key: "maria@test.com"}).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Lead")).
			Return(errors.New("disk full")).Once()

		_, err := svc.SaveOrUpdateLead(ctx, validLeadInput())
		var tse *domain.TransientStoreError
		assert.ErrorAs(t, err, &tse)
	})
}

// recordingLeadService counts upserts so the debounce tests can observe how
// many actually fired and with which payload.
type recordingLeadService struct {
	mu     sync.Mutex
	saved  []*service.LeadInput
	signal chan struct{}
}

func newRecordingLeadService() *recordingLeadService {
	return &recordingLeadService{signal: make(chan struct{}, 16)}
}

func (r *recordingLeadService) SaveOrUpdateLead(ctx context.Context, input *service.LeadInput) (int32, error) {
	r.mu.Lock()
	r.saved = append(r.saved, input)
	r.mu.Unlock()
	r.signal <- struct{}{}
	return 1, nil
}

func (r *recordingLeadService) MarkLeadRecovered(ctx context.Context, email string, vehicleID, bookingID int32) error {
	return nil
}

func (r *recordingLeadService) GetLead(ctx context.Context, id int32) (*domain.Lead, error) {
	return nil, &domain.NotFoundError{Entity: "lead", Key: "test"}
}

func (r *recordingLeadService) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	return nil, nil
}

func (r *recordingLeadService) DeleteLead(ctx context.Context, id int32) error {
	return nil
}

func (r *recordingLeadService) savedInputs() []*service.LeadInput {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*service.LeadInput, len(r.saved))
	copy(out, r.saved)
	return out
}

func TestDraftSaver_CoalescesBurst(t *testing.T) {
	rec := newRecordingLeadService()
	saver := service.NewDraftSaver(rec, 30*time.Millisecond, nil)

	for i := 0; i < 5; i++ {
		input := validLeadInput()
		input.QuotedTotal = int64(i)
		saver.Schedule(input)
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-rec.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced save never fired")
	}

	saved := rec.savedInputs()
	assert.Len(t, saved, 1)
	assert.Equal(t, int64(4), saved[0].QuotedTotal, "the last payload in the burst wins")
}

func TestDraftSaver_CancelDropsPendingSave(t *testing.T) {
	rec := newRecordingLeadService()
	saver := service.NewDraftSaver(rec, 30*time.Millisecond, nil)

	saver.Schedule(validLeadInput())
	saver.Cancel()

	select {
	case <-rec.signal:
		t.Fatal("cancelled save fired anyway")
	case <-time.After(150 * time.Millisecond):
	}
	assert.Empty(t, rec.savedInputs())

	// Cancel is idempotent
	saver.Cancel()
}

func TestDraftSaver_SeparateBurstsEachFire(t *testing.T) {
	rec := newRecordingLeadService()
	saver := service.NewDraftSaver(rec, 20*time.Millisecond, nil)

	saver.Schedule(validLeadInput())
	select {
	case <-rec.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("first save never fired")
	}

	saver.Schedule(validLeadInput())
	select {
	case <-rec.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("second save never fired")
	}

	assert.Len(t, rec.savedInputs(), 2)
}

func TestDraftSaver_ReportsIdleAfterFire(t *testing.T) {
	rec := newRecordingLeadService()
	idle := make(chan struct{}, 1)
	var saver *service.DraftSaver
	saver = service.NewDraftSaver(rec, 20*time.Millisecond, func() {
		if saver.Idle() {
			idle <- struct{}{}
		}
	})

	assert.True(t, saver.Idle())
	saver.Schedule(validLeadInput())
	assert.False(t, saver.Idle())

	select {
	case <-idle:
	case <-time.After(2 * time.Second):
		t.Fatal("idle callback never ran")
	}
	assert.Len(t, rec.savedInputs(), 1)
}
