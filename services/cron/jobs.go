package cron

import (
	"fmt"
	"time"

	"github.com/edemy/lms-server/model"
)

// ExpireStalePurchases sweeps purchases that sat in pending longer than the
// TTL to expired. The status guard in the WHERE clause is the same
// conditional-write discipline the reconciler uses, so a checkout
// completing concurrently with the sweep cannot be clobbered.
func (m *CronManager) ExpireStalePurchases() {
	jobName := "expire_stale_purchases"
	cutoff := time.Now().Add(-m.pendingTTL)

	res := m.db.Model(&model.Purchase{}).
		Where("status = ? AND created_at < ?", model.PurchaseStatusPending, cutoff).
		Update("status", model.PurchaseStatusExpired)
	if res.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to expire purchases: %w", res.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("expired %d stale pending purchases", res.RowsAffected))
}

// webhookEventRetention is how long processed/skipped audit rows are kept.
// Orphaned rows are never pruned automatically; they are the open items an
// operator still has to reconcile.
const webhookEventRetention = 30 * 24 * time.Hour

// CleanupWebhookEvents prunes old processed and skipped audit rows.
func (m *CronManager) CleanupWebhookEvents() {
	jobName := "cleanup_webhook_events"
	cutoff := time.Now().Add(-webhookEventRetention)

	res := m.db.
		Where("status IN ? AND created_at < ?",
			[]string{model.WebhookEventProcessed, model.WebhookEventSkipped}, cutoff).
		Delete(&model.WebhookEvent{})
	if res.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to prune webhook events: %w", res.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("pruned %d webhook event rows", res.RowsAffected))
}
