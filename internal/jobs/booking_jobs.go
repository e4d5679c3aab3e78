package jobs

import (
	"context"
	"time"

	"arrentals-backend/internal/logger"
)

// completionCutoff is the sweep's cutoff date. Job arithmetic runs in UTC,
// matching the scheduler, so the date never shifts with server locale.
func completionCutoff(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

// CompleteElapsedBookings moves confirmed bookings whose return date has
// passed to completed.
func (jr *JobRunner) CompleteElapsedBookings() {
	jr.runWithRecovery("CompleteElapsedBookings", func() {
		ctx := context.Background()

		ids, err := jr.store.BookingRepository.CompleteElapsed(ctx, completionCutoff(time.Now()))
		if err != nil {
			logger.Error("Failed to complete elapsed bookings", "error", err)
			return
		}
		logger.Info("Completed elapsed bookings", "count", len(ids))

		for _, id := range ids {
			logger.Debug("Marked booking completed", "booking_id", id)
		}
	})
}
