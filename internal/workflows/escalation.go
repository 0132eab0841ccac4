package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// EscalationInput is the input for the alert escalation workflow.
type EscalationInput struct {
	AlertID     string
	OffenderID  string
	GracePeriod time.Duration
}

// EscalationWorkflow pages the case officer when an alert sits
// unacknowledged past its grace period. One grace period after that, a
// still-unacknowledged alert is escalated a second time with urgent
// priority. The workflow exits silently as soon as the alert is acked.
func EscalationWorkflow(ctx workflow.Context, input EscalationInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting escalation workflow", "alertID", input.AlertID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	grace := input.GracePeriod
	if grace <= 0 {
		grace = 15 * time.Minute
	}

	// Step 1: wait out the grace period
	if err := workflow.Sleep(ctx, grace); err != nil {
		return err
	}

	var acked bool
	if err := workflow.ExecuteActivity(ctx, "CheckAcknowledged", input.AlertID).Get(ctx, &acked); err != nil {
		return err
	}
	if acked {
		logger.Info("Alert acknowledged within grace period", "alertID", input.AlertID)
		return nil
	}

	// Step 2: page the case officer
	if err := workflow.ExecuteActivity(ctx, "NotifyCaseOfficer", input.AlertID, input.OffenderID, false).Get(ctx, nil); err != nil {
		return err
	}

	// Step 3: one more grace period, then escalate as urgent
	if err := workflow.Sleep(ctx, grace); err != nil {
		return err
	}
	if err := workflow.ExecuteActivity(ctx, "CheckAcknowledged", input.AlertID).Get(ctx, &acked); err != nil {
		return err
	}
	if acked {
		logger.Info("Alert acknowledged after first page", "alertID", input.AlertID)
		return nil
	}

	if err := workflow.ExecuteActivity(ctx, "NotifyCaseOfficer", input.AlertID, input.OffenderID, true).Get(ctx, nil); err != nil {
		return err
	}

	logger.Warn("Alert escalated to urgent", "alertID", input.AlertID)
	return nil
}
