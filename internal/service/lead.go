package service

import (
	"context"
	"sync"
	"time"

	"arrentals-backend/internal/domain"
	"arrentals-backend/internal/logger"
	"arrentals-backend/internal/repository"

	"github.com/go-playground/validator/v10"
)

type leadCaptureService struct {
	leadRepo repository.LeadRepository
	validate *validator.Validate
}

func NewLeadCaptureService(leadRepo repository.LeadRepository) LeadCaptureService {
	return &leadCaptureService{
		leadRepo: leadRepo,
		validate: validator.New(),
	}
}

func (s *leadCaptureService) SaveOrUpdateLead(ctx context.Context, input *LeadInput) (int32, error) {
	if err := s.validate.Struct(input); err != nil {
		return 0, &domain.ValidationError{Fields: []string{err.Error()}}
	}

	existing, err := s.leadRepo.FindByEmailAndVehicle(ctx, input.Email, input.VehicleID)
	if err != nil && !domain.IsNotFound(err) {
		// A transient lookup failure does not abort the save: a possible
		// duplicate beats losing the lead entirely.
		logger.Error("Lead lookup failed, attempting insert anyway",
			"email", input.Email, "vehicle_id", input.VehicleID, "error", err)
		existing = nil
	}

	if existing != nil && existing.Status == domain.LeadStatusRecovered {
		// Already converted; draft-save traffic must not resurrect it.
		return existing.ID, nil
	}

	now := time.Now().UTC()
	if existing != nil {
		existing.FullName = input.FullName
		existing.PhoneNumber = input.PhoneNumber
		existing.PickupLocation = input.PickupLocation
		existing.DropoffLocation = input.DropoffLocation
		existing.PickupDate = input.PickupDate
		existing.ReturnDate = input.ReturnDate
		existing.PickupTime = input.PickupTime
		existing.DriveOption = input.DriveOption
		existing.QuotedTotal = input.QuotedTotal
		// last_step only ever advances; a caller reporting an earlier step
		// keeps the furthest one already recorded.
		if domain.StepRank(input.LastStep) > domain.StepRank(existing.LastStep) {
			existing.LastStep = input.LastStep
		}
		existing.DropOffTimestamp = now

		if err := s.leadRepo.Update(ctx, existing); err != nil {
			return 0, &domain.TransientStoreError{Op: "lead update", Err: err}
		}
		return existing.ID, nil
	}

	lead := &domain.Lead{
		Email:            input.Email,
		VehicleID:        input.VehicleID,
		FullName:         input.FullName,
		PhoneNumber:      input.PhoneNumber,
		PickupLocation:   input.PickupLocation,
		DropoffLocation:  input.DropoffLocation,
		PickupDate:       input.PickupDate,
		ReturnDate:       input.ReturnDate,
		PickupTime:       input.PickupTime,
		DriveOption:      input.DriveOption,
		QuotedTotal:      input.QuotedTotal,
		LastStep:         input.LastStep,
		Status:           domain.LeadStatusPending,
		AutomationStatus: domain.AutomationStatusNotSent,
		DropOffTimestamp: now,
	}
	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return 0, &domain.TransientStoreError{Op: "lead insert", Err: err}
	}
	return lead.ID, nil
}

func (s *leadCaptureService) MarkLeadRecovered(ctx context.Context, email string, vehicleID, bookingID int32) error {
	return s.leadRepo.MarkRecovered(ctx, email, vehicleID, bookingID)
}

func (s *leadCaptureService) GetLead(ctx context.Context, id int32) (*domain.Lead, error) {
	return s.leadRepo.GetByID(ctx, id)
}

func (s *leadCaptureService) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	return s.leadRepo.List(ctx)
}

func (s *leadCaptureService) DeleteLead(ctx context.Context, id int32) error {
	return s.leadRepo.Delete(ctx, id)
}

// DraftSaver coalesces a burst of draft changes into a single upsert. One
// saver is owned per draft session; each Schedule restarts the shared timer,
// so only the last payload inside the delay window is written.
type DraftSaver struct {
	svc     LeadCaptureService
	delay   time.Duration
	timeout time.Duration
	// onIdle runs after a debounced save drains with nothing rescheduled, so
	// the owner can release the saver for an abandoned session.
	onIdle func()

	mu      sync.Mutex
	timer   *time.Timer
	pending *LeadInput
}

func NewDraftSaver(svc LeadCaptureService, delay time.Duration, onIdle func()) *DraftSaver {
	return &DraftSaver{
		svc:     svc,
		delay:   delay,
		timeout: 10 * time.Second,
		onIdle:  onIdle,
	}
}

// Schedule queues an upsert for the given payload, replacing any payload still
// waiting. Save failures are logged and swallowed: lead capture is best-effort
// telemetry and must never disturb the booking flow.
func (d *DraftSaver) Schedule(input *LeadInput) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = input
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *DraftSaver) fire() {
	d.mu.Lock()
	input := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	if input != nil {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if _, err := d.svc.SaveOrUpdateLead(ctx, input); err != nil {
			logger.Error("Debounced lead save failed", "email", input.Email, "vehicle_id", input.VehicleID, "error", err)
		}
		cancel()
	}

	if d.onIdle != nil {
		d.onIdle()
	}
}

// Idle reports whether no save is scheduled.
func (d *DraftSaver) Idle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer == nil
}

// Cancel drops any scheduled save. Call on session teardown so a stale timer
// never fires with abandoned data. Safe to call repeatedly.
func (d *DraftSaver) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}
