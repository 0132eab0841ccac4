package workflows

import (
	"context"
	"fmt"
	"log"

	"github.com/dhifafaz/tactical-monitor/internal/core/ports"
)

// EscalationActivities holds the activity implementations for the alert
// escalation workflow.
type EscalationActivities struct {
	Alerts    ports.AlertRepository
	Offenders ports.OffenderRepository
	Notifier  ports.NotificationService
}

// CheckAcknowledged reports whether an alert has been acknowledged. A
// missing alert counts as acknowledged so the workflow stops paging.
func (a *EscalationActivities) CheckAcknowledged(ctx context.Context, alertID string) (bool, error) {
	alert, err := a.Alerts.GetByID(ctx, alertID)
	if err != nil {
		log.Printf("alert %s not found, treating as acknowledged", alertID)
		return true, nil
	}
	return alert.Acknowledged, nil
}

// NotifyCaseOfficer pages the case officer assigned to the offender. The
// urgent flag marks the second escalation round.
func (a *EscalationActivities) NotifyCaseOfficer(ctx context.Context, alertID, offenderID string, urgent bool) error {
	alert, err := a.Alerts.GetByID(ctx, alertID)
	if err != nil {
		return fmt.Errorf("get alert %s: %w", alertID, err)
	}

	officer := "duty-officer"
	if off, err := a.Offenders.GetByID(ctx, offenderID); err == nil && off.CaseOfficer != "" {
		officer = off.CaseOfficer
	}

	title := "Unacknowledged alert"
	if urgent {
		title = "URGENT: unacknowledged alert"
	}

	if a.Notifier == nil {
		log.Printf("PAGE (no notifier) → officer=%s alert=%s urgent=%v", officer, alertID, urgent)
		return nil
	}
	return a.Notifier.NotifyOfficer(ctx, officer, title, alert.Message)
}
