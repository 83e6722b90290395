package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/repository"
	"koperasi-backend/internal/repository/postgres"
)

var loanCols = []string{"id", "member_id", "name", "amount", "purpose", "status", "tenure_months", "interest_rate", "monthly_installment", "total_payment", "total_interest", "remaining_amount", "approved_at", "rejected_at", "created_on"}

func TestLoanRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLoanRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		loan := &domain.Loan{
			MemberID:           1,
			Amount:             5_000_000,
			Purpose:            "Modal usaha warung",
			Status:             domain.LoanStatusPending,
			TenureMonths:       12,
			InterestRate:       1.5,
			MonthlyInstallment: 491_667,
			TotalPayment:       5_900_000,
			TotalInterest:      900_000,
			RemainingAmount:    5_900_000,
		}

		mock.ExpectQuery("INSERT INTO loans").
			WithArgs(loan.MemberID, loan.Amount, loan.Purpose, loan.Status, loan.TenureMonths,
				loan.InterestRate, loan.MonthlyInstallment, loan.TotalPayment, loan.TotalInterest,
				loan.RemainingAmount, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

		err := repo.Create(ctx, loan)
		assert.NoError(t, err)
		assert.Equal(t, int32(3), loan.ID)
	})
}

func TestLoanRepository_GetActiveByMember(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLoanRepository(db)
	ctx := context.Background()

	t.Run("NoActiveLoan", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM loans l JOIN members m").
			WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows(loanCols))

		_, err := repo.GetActiveByMember(ctx, 1)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("ActiveLoanWithInstallments", func(t *testing.T) {
		now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery("SELECT (.+) FROM loans l JOIN members m").
			WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows(loanCols).
				AddRow(3, 1, "Budi", 5_000_000, "Modal usaha", "approved", 12, 1.5, 491_667, 5_900_000, 900_000, 5_900_000, now, nil, now))
		mock.ExpectQuery("SELECT (.+) FROM installments").
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "loan_id", "month", "amount", "due_date", "status", "paid_at"}).
				AddRow(31, 3, 1, 491_667, now.AddDate(0, 1, 0), "unpaid", nil).
				AddRow(32, 3, 2, 491_667, now.AddDate(0, 2, 0), "unpaid", nil))

		loan, err := repo.GetActiveByMember(ctx, 1)
		assert.NoError(t, err)
		assert.True(t, loan.Active())
		assert.Len(t, loan.Installments, 2)
		assert.Equal(t, "2024-07-01", loan.Installments[0].DueDate)
	})
}

func TestLoanRepository_SettleInstallment(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLoanRepository(db)
	ctx := context.Background()
	paidAt := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

	t.Run("FinalPaymentCompletesLoan", func(t *testing.T) {
		payment := &domain.Transaction{
			TransactionNumber: "TRX202407010077",
			MemberID:          1,
			Type:              domain.TransactionTypeInstallmentPayment,
			Amount:            491_663,
			Status:            domain.TransactionStatusApproved,
		}
		voluntary := domain.SavingsCategoryVoluntary
		withdrawal := &domain.Transaction{
			TransactionNumber: "TRX202407010078",
			MemberID:          1,
			Type:              domain.TransactionTypeWithdrawal,
			SavingsCategory:   &voluntary,
			Amount:            491_663,
			Status:            domain.TransactionStatusApproved,
		}

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE installments SET status = 'paid'").
			WithArgs(paidAt, int32(42), int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("UPDATE loans SET remaining_amount").
			WithArgs(payment.Amount, int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"remaining_amount"}).AddRow(0))
		mock.ExpectExec("UPDATE loans SET status = 'completed'").
			WithArgs(int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO transactions").
			WithArgs(payment.TransactionNumber, payment.MemberID, payment.Type, payment.Amount,
				payment.Status, sqlmock.AnyArg(), payment.Notes, int32(3), false, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(99))
		mock.ExpectQuery("INSERT INTO transactions").
			WithArgs(withdrawal.TransactionNumber, withdrawal.MemberID, withdrawal.Type, withdrawal.SavingsCategory,
				withdrawal.Amount, withdrawal.Status, sqlmock.AnyArg(), withdrawal.Notes, int32(3), false, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
		mock.ExpectCommit()

		// Reload after commit.
		now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery("SELECT (.+) FROM loans l JOIN members m").
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows(loanCols).
				AddRow(3, 1, "Budi", 5_000_000, "Modal usaha", "completed", 12, 1.5, 491_667, 5_900_000, 900_000, 0, now, nil, now))
		mock.ExpectQuery("SELECT (.+) FROM installments").
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "loan_id", "month", "amount", "due_date", "status", "paid_at"}).
				AddRow(42, 3, 12, 491_663, now.AddDate(0, 12, 0), "paid", paidAt))

		loan, err := repo.SettleInstallment(ctx, 3, 42, paidAt, payment, withdrawal)
		assert.NoError(t, err)
		assert.Equal(t, domain.LoanStatusCompleted, loan.Status)
		assert.Equal(t, int64(0), loan.RemainingAmount)
		assert.Equal(t, int32(99), payment.ID)
		assert.Equal(t, int32(100), withdrawal.ID)
	})

	t.Run("AlreadyPaidRollsBack", func(t *testing.T) {
		payment := &domain.Transaction{Amount: 491_667}
		withdrawal := &domain.Transaction{Amount: 491_667}

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE installments SET status = 'paid'").
			WithArgs(paidAt, int32(42), int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.SettleInstallment(ctx, 3, 42, paidAt, payment, withdrawal)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestLoanRepository_ListDueInstallments(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLoanRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		due := time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery("SELECT i.id, i.loan_id").
			WithArgs("2024-07-01", "2024-07-07").
			WillReturnRows(sqlmock.NewRows([]string{"id", "loan_id", "member_id", "name", "phone", "month", "amount", "due_date"}).
				AddRow(31, 3, 1, "Budi", "+628123456789", 1, 491_667, due))

		from := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 7, 7, 0, 0, 0, 0, time.UTC)
		reminders, err := repo.ListDueInstallments(ctx, from, to)
		assert.NoError(t, err)
		assert.Len(t, reminders, 1)
		assert.Equal(t, "2024-07-03", reminders[0].DueDate)
		assert.Equal(t, "+628123456789", reminders[0].Phone)
	})
}

func TestLoanRepository_DashboardAggregates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLoanRepository(db)
	ctx := context.Background()

	t.Run("OutstandingTotal", func(t *testing.T) {
		mock.ExpectQuery("SELECT COALESCE\\(SUM\\(remaining_amount\\), 0\\) FROM loans").
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(40_000_000))

		total, err := repo.OutstandingTotal(ctx)
		assert.NoError(t, err)
		assert.Equal(t, int64(40_000_000), total)
	})

	t.Run("CountOverdueInstallments", func(t *testing.T) {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM installments i JOIN loans l").
			WithArgs("2024-07-01").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		count, err := repo.CountOverdueInstallments(ctx, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
		assert.NoError(t, err)
		assert.Equal(t, int32(4), count)
	})
}
