// Package session holds the in-progress booking draft for each storefront
// session. Every mutation is written through immediately so a reload or
// back-navigation never loses entered data. Drafts are keyed per session;
// concurrent writers to the same session race last-write-wins, which matches
// the storefront's single-tab assumption.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"arrentals-backend/internal/domain"

	"github.com/go-playground/validator/v10"
)

// KV is the minimal key-value surface the store needs. Production uses Redis;
// tests use the in-memory implementation.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type DraftStore struct {
	kv       KV
	ttl      time.Duration
	validate *validator.Validate
}

func NewDraftStore(kv KV, ttl time.Duration) *DraftStore {
	return &DraftStore{
		kv:       kv,
		ttl:      ttl,
		validate: validator.New(),
	}
}

func draftKey(sessionID string) string {
	return fmt.Sprintf("DRAFT:SESSION:%s", sessionID)
}

// Init creates a fresh draft for the session, replacing any existing one.
// Called when the customer selects a vehicle.
func (s *DraftStore) Init(ctx context.Context, sessionID string, vehicleID int32) (*domain.BookingDraft, error) {
	draft := &domain.BookingDraft{VehicleID: vehicleID}
	if err := s.write(ctx, sessionID, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *DraftStore) Get(ctx context.Context, sessionID string) (*domain.BookingDraft, error) {
	raw, ok, err := s.kv.Get(ctx, draftKey(sessionID))
	if err != nil {
		return nil, &domain.TransientStoreError{Op: "session get", Err: err}
	}
	if !ok {
		return nil, &domain.NotFoundError{Entity: "draft", Key: sessionID}
	}
	draft := &domain.BookingDraft{}
	if err := json.Unmarshal([]byte(raw), draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *DraftStore) UpdateVehicle(ctx context.Context, sessionID string, vehicleID int32) (*domain.BookingDraft, error) {
	return s.mutate(ctx, sessionID, func(d *domain.BookingDraft) {
		d.VehicleID = vehicleID
	})
}

func (s *DraftStore) UpdateRenterInfo(ctx context.Context, sessionID string, renter domain.RenterInfo) (*domain.BookingDraft, error) {
	return s.mutate(ctx, sessionID, func(d *domain.BookingDraft) {
		if renter.FullName != "" {
			d.Renter.FullName = renter.FullName
		}
		if renter.Email != "" {
			d.Renter.Email = renter.Email
		}
		if renter.PhoneNumber != "" {
			d.Renter.PhoneNumber = renter.PhoneNumber
		}
	})
}

func (s *DraftStore) UpdateSearchCriteria(ctx context.Context, sessionID string, search domain.SearchCriteria) (*domain.BookingDraft, error) {
	return s.mutate(ctx, sessionID, func(d *domain.BookingDraft) {
		if search.PickupLocation != "" {
			d.Search.PickupLocation = search.PickupLocation
		}
		if search.DropoffLocation != "" {
			d.Search.DropoffLocation = search.DropoffLocation
		}
		if search.PickupDate != "" {
			d.Search.PickupDate = search.PickupDate
		}
		if search.ReturnDate != "" {
			d.Search.ReturnDate = search.ReturnDate
		}
		if search.PickupTime != "" {
			d.Search.PickupTime = search.PickupTime
		}
	})
}

func (s *DraftStore) UpdateDriveOption(ctx context.Context, sessionID string, option domain.DriveOption) (*domain.BookingDraft, error) {
	return s.mutate(ctx, sessionID, func(d *domain.BookingDraft) {
		d.DriveOption = option
	})
}

// AgreeToTerms flips TermsAgreed only when every required field is present and
// valid. On an invalid draft it is a silent no-op; callers are expected to
// validate before invoking it.
func (s *DraftStore) AgreeToTerms(ctx context.Context, sessionID string) (*domain.BookingDraft, error) {
	draft, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(draft); err != nil {
		return draft, nil
	}
	draft.TermsAgreed = true
	if err := s.write(ctx, sessionID, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Clear removes the draft after a booking has been created from it.
func (s *DraftStore) Clear(ctx context.Context, sessionID string) error {
	return s.kv.Del(ctx, draftKey(sessionID))
}

func (s *DraftStore) mutate(ctx context.Context, sessionID string, apply func(*domain.BookingDraft)) (*domain.BookingDraft, error) {
	draft, err := s.Get(ctx, sessionID)
	if err != nil {
		if domain.IsNotFound(err) {
			draft = &domain.BookingDraft{}
		} else {
			return nil, err
		}
	}
	apply(draft)
	// Any mutation below the full set of required fields invalidates a prior
	// agreement; the flag is re-earned through AgreeToTerms.
	if s.validate.Struct(draft) != nil {
		draft.TermsAgreed = false
	}
	if err := s.write(ctx, sessionID, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *DraftStore) write(ctx context.Context, sessionID string, draft *domain.BookingDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, draftKey(sessionID), string(raw), s.ttl); err != nil {
		return &domain.TransientStoreError{Op: "session write", Err: err}
	}
	return nil
}
