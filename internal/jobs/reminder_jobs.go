package jobs

import (
	"context"
	"fmt"
	"time"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/finance"
	"koperasi-backend/internal/logger"
)

// SendInstallmentReminders notifies borrowers whose installments fall due
// within the next three days, plus anything already past due and unpaid.
func (jr *JobRunner) SendInstallmentReminders() {
	jr.runWithRecovery("SendInstallmentReminders", func() {
		ctx := context.Background()

		now := time.Now()
		from, to := reminderWindow(now)
		due, err := jr.store.ListDueInstallments(ctx, from, to)
		if err != nil {
			logger.Error("Failed to query due installments", "error", err)
			return
		}

		count := 0
		for _, inst := range due {
			dueDate, err := time.Parse("2006-01-02", inst.DueDate)
			if err != nil {
				logger.Error("Bad due date on installment", "installment_id", inst.InstallmentID, "due_date", inst.DueDate)
				continue
			}

			var message string
			if dueDate.Before(now.Truncate(24 * time.Hour)) {
				message = fmt.Sprintf(
					"Angsuran ke-%d sebesar %s telah melewati jatuh tempo (%s). Mohon segera lakukan pembayaran.",
					inst.Month, finance.FormatRupiah(inst.Amount), inst.DueDate)
			} else {
				message = fmt.Sprintf(
					"Angsuran ke-%d sebesar %s akan jatuh tempo pada %s.",
					inst.Month, finance.FormatRupiah(inst.Amount), inst.DueDate)
			}

			err = jr.notifier.Notify(ctx, inst.MemberID, domain.NotificationSeverityWarning,
				"Pengingat Angsuran", message, map[string]string{
					"loan_id":        fmt.Sprint(inst.LoanID),
					"installment_id": fmt.Sprint(inst.InstallmentID),
				})
			if err != nil {
				logger.Error("Failed to send installment reminder",
					"installment_id", inst.InstallmentID,
					"member_id", inst.MemberID,
					"error", err)
				continue
			}
			count++
		}

		logger.Info("Installment reminders sent", "count", count)
	})
}

// reminderWindow bounds the due-date query. The upper bound gives borrowers a
// three day heads-up. There is no lower bound: an unpaid installment keeps
// reminding no matter how long overdue it is.
func reminderWindow(now time.Time) (from, to time.Time) {
	return time.Time{}, now.AddDate(0, 0, 3)
}

// SendMandatorySavingsReminders reminds every active member of the monthly
// mandatory savings deposit. Scheduled on the configured due day each month.
func (jr *JobRunner) SendMandatorySavingsReminders() {
	jr.runWithRecovery("SendMandatorySavingsReminders", func() {
		ctx := context.Background()

		members, err := jr.store.ListActive(ctx)
		if err != nil {
			logger.Error("Failed to query active members", "error", err)
			return
		}

		amount := jr.config.Savings.MandatoryAmount
		month := time.Now().Format("January 2006")
		message := fmt.Sprintf(
			"Jangan lupa setoran simpanan wajib bulan %s sebesar %s sebelum tanggal %d.",
			month, finance.FormatRupiah(amount), jr.config.Savings.MandatoryDueDay)

		count := 0
		for _, member := range members {
			err := jr.notifier.Notify(ctx, member.ID, domain.NotificationSeverityInfo,
				"Pengingat Simpanan Wajib", message, nil)
			if err != nil {
				logger.Error("Failed to send mandatory savings reminder",
					"member_id", member.ID,
					"error", err)
				continue
			}
			count++
		}

		logger.Info("Mandatory savings reminders sent", "count", count, "amount", amount)
	})
}
