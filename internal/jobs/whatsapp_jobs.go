package jobs

import (
	"context"

	"koperasi-backend/internal/logger"
)

const retryBatchSize = 100

// RetryUnsentWhatsApp pushes notifications the WhatsApp gateway missed on the
// first, fire-and-forget attempt.
func (jr *JobRunner) RetryUnsentWhatsApp() {
	jr.runWithRecovery("RetryUnsentWhatsApp", func() {
		ctx := context.Background()

		sent, err := jr.notifier.ResendPending(ctx, retryBatchSize)
		if err != nil {
			logger.Error("Failed to retry unsent whatsapp messages", "error", err)
			return
		}

		logger.Info("Unsent whatsapp messages retried", "sent", sent)
	})
}
