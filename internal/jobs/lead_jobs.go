package jobs

import (
	"context"
	"fmt"
	"time"

	"arrentals-backend/internal/domain"
	"arrentals-backend/internal/logger"
)

// ExpireStaleLeads flips pending leads untouched for longer than the
// configured age to expired.
func (jr *JobRunner) ExpireStaleLeads() {
	jr.runWithRecovery("ExpireStaleLeads", func() {
		ctx := context.Background()

		cutoff := time.Now().UTC().Add(-time.Duration(jr.config.Leads.ExpireAfterHours) * time.Hour)
		count, err := jr.store.LeadRepository.ExpireStale(ctx, cutoff.Format(time.RFC3339))
		if err != nil {
			logger.Error("Failed to expire stale leads", "error", err)
			return
		}
		logger.Info("Expired stale leads", "count", count)
	})
}

// SendLeadFollowUps emails pending leads that went quiet and have not yet
// received a follow-up. This job is the only writer of automation_status; the
// capture path treats that column as read-only.
func (jr *JobRunner) SendLeadFollowUps() {
	jr.runWithRecovery("SendLeadFollowUps", func() {
		ctx := context.Background()

		cutoff := time.Now().UTC().Add(-time.Duration(jr.config.Leads.FollowUpAfterMinutes) * time.Minute)
		leads, err := jr.store.LeadRepository.ListPendingForFollowUp(ctx, cutoff.Format(time.RFC3339))
		if err != nil {
			logger.Error("Failed to list leads for follow-up", "error", err)
			return
		}

		sent := 0
		for _, lead := range leads {
			vehicleName := fmt.Sprintf("vehicle #%d", lead.VehicleID)
			if vehicle, err := jr.store.VehicleRepository.GetByID(ctx, lead.VehicleID); err == nil {
				vehicleName = vehicle.Name
			}

			if err := jr.emailSvc.SendLeadFollowUp(ctx, lead.Email, lead.FullName, vehicleName, lead.PickupDate); err != nil {
				logger.Error("Failed to send lead follow-up", "lead_id", lead.ID, "error", err)
				continue
			}
			if err := jr.store.LeadRepository.SetAutomationStatus(ctx, lead.ID, domain.AutomationStatusSent); err != nil {
				logger.Error("Failed to record follow-up send", "lead_id", lead.ID, "error", err)
				continue
			}
			sent++
		}
		logger.Info("Sent lead follow-ups", "eligible", len(leads), "sent", sent)
	})
}
