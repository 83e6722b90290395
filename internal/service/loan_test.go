package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/service"
)

var testLimits = service.LoanLimits{
	MonthlyRatePercent: 1.5,
	MaxPrincipal:       50_000_000,
	MaxTenureMonths:    36,
}

func TestLoanService_Request(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		members := new(MockMemberRepo)
		loans := new(MockLoanRepo)
		svc := service.NewLoanService(members, loans, new(MockTransactionRepo), nil, testLimits, service.NewMemberLocks())

		members.On("GetByID", ctx, int32(1)).Return(activeMember(1), nil)
		loans.On("ListByMember", ctx, int32(1)).Return([]domain.Loan{
			{ID: 1, Status: domain.LoanStatusCompleted},
			{ID: 2, Status: domain.LoanStatusRejected},
		}, nil)
		loans.On("Create", ctx, mock.AnythingOfType("*domain.Loan")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*domain.Loan).ID = 3
			}).Return(nil)

		loan, err := svc.Request(ctx, 1, 5_000_000, 12, "Modal usaha warung")
		assert.NoError(t, err)
		assert.Equal(t, int32(3), loan.ID)
		assert.Equal(t, domain.LoanStatusPending, loan.Status)
		assert.Equal(t, int64(900_000), loan.TotalInterest)
		assert.Equal(t, int64(5_900_000), loan.TotalPayment)
		assert.Equal(t, int64(491_667), loan.MonthlyInstallment)
		assert.Equal(t, loan.TotalPayment, loan.RemainingAmount)
	})

	t.Run("OpenLoanBlocksNewRequest", func(t *testing.T) {
		members := new(MockMemberRepo)
		loans := new(MockLoanRepo)
		svc := service.NewLoanService(members, loans, new(MockTransactionRepo), nil, testLimits, service.NewMemberLocks())

		members.On("GetByID", ctx, int32(1)).Return(activeMember(1), nil)
		loans.On("ListByMember", ctx, int32(1)).Return([]domain.Loan{
			{ID: 1, Status: domain.LoanStatusApproved, RemainingAmount: 2_000_000},
		}, nil)

		_, err := svc.Request(ctx, 1, 5_000_000, 12, "")
		assert.ErrorIs(t, err, service.ErrActiveLoanExists)
	})

	t.Run("PendingLoanBlocksNewRequest", func(t *testing.T) {
		members := new(MockMemberRepo)
		loans := new(MockLoanRepo)
		svc := service.NewLoanService(members, loans, new(MockTransactionRepo), nil, testLimits, service.NewMemberLocks())

		members.On("GetByID", ctx, int32(1)).Return(activeMember(1), nil)
		loans.On("ListByMember", ctx, int32(1)).Return([]domain.Loan{
			{ID: 1, Status: domain.LoanStatusPending},
		}, nil)

		_, err := svc.Request(ctx, 1, 5_000_000, 12, "")
		assert.ErrorIs(t, err, service.ErrActiveLoanExists)
	})

	t.Run("LimitsEnforced", func(t *testing.T) {
		svc := service.NewLoanService(new(MockMemberRepo), new(MockLoanRepo), new(MockTransactionRepo), nil, testLimits, service.NewMemberLocks())

		_, err := svc.Request(ctx, 1, 60_000_000, 12, "")
		assert.ErrorIs(t, err, service.ErrLoanLimitExceeded)
		_, err = svc.Request(ctx, 1, 5_000_000, 48, "")
		assert.ErrorIs(t, err, service.ErrLoanLimitExceeded)
		_, err = svc.Request(ctx, 1, 0, 12, "")
		assert.ErrorIs(t, err, service.ErrAmountNotPositive)
	})

	t.Run("InactiveMemberBlocked", func(t *testing.T) {
		members := new(MockMemberRepo)
		svc := service.NewLoanService(members, new(MockLoanRepo), new(MockTransactionRepo), nil, testLimits, service.NewMemberLocks())

		pending := activeMember(2)
		pending.AccountStatus = domain.AccountStatusPending
		members.On("GetByID", ctx, int32(2)).Return(pending, nil)

		_, err := svc.Request(ctx, 2, 5_000_000, 12, "")
		assert.ErrorIs(t, err, service.ErrMemberNotActive)
	})
}

func TestLoanService_PayInstallment(t *testing.T) {
	ctx := context.Background()

	approvedLoan := func() *domain.Loan {
		return &domain.Loan{
			ID:                 3,
			MemberID:           1,
			MemberName:         "Budi Santoso",
			Amount:             5_000_000,
			Status:             domain.LoanStatusApproved,
			TenureMonths:       12,
			MonthlyInstallment: 491_667,
			TotalPayment:       5_900_000,
			RemainingAmount:    5_900_000,
			Installments: []domain.Installment{
				{ID: 31, LoanID: 3, Month: 1, Amount: 491_667, DueDate: "2024-07-01", Status: domain.InstallmentStatusUnpaid},
				{ID: 32, LoanID: 3, Month: 2, Amount: 491_667, DueDate: "2024-08-01", Status: domain.InstallmentStatusUnpaid},
			},
		}
	}

	t.Run("Success", func(t *testing.T) {
		loans := new(MockLoanRepo)
		transactions := new(MockTransactionRepo)
		svc := service.NewLoanService(new(MockMemberRepo), loans, transactions, nil, testLimits, service.NewMemberLocks())

		loan := approvedLoan()
		settled := approvedLoan()
		settled.RemainingAmount = 5_408_333
		settled.Installments[0].Status = domain.InstallmentStatusPaid

		loans.On("GetByID", ctx, int32(3)).Return(loan, nil)
		// Exactly the installment amount in voluntary savings is enough.
		transactions.On("Breakdown", ctx, int32(1)).Return(&domain.SavingsBreakdown{
			MemberID: 1, Principal: 100_000, Mandatory: 300_000, Voluntary: 491_667, Total: 891_667,
		}, nil)

		var withdrawal *domain.Transaction
		loans.On("SettleInstallment", ctx, int32(3), int32(31), mock.AnythingOfType("time.Time"),
			mock.AnythingOfType("*domain.Transaction"), mock.AnythingOfType("*domain.Transaction")).
			Run(func(args mock.Arguments) {
				withdrawal = args.Get(5).(*domain.Transaction)
			}).
			Return(settled, nil)

		updated, payment, err := svc.PayInstallment(ctx, 1, 3, 31)
		assert.NoError(t, err)
		assert.Equal(t, int64(5_408_333), updated.RemainingAmount)
		assert.Equal(t, domain.TransactionTypeInstallmentPayment, payment.Type)
		assert.Equal(t, domain.TransactionStatusApproved, payment.Status)
		assert.Equal(t, int64(491_667), payment.Amount)

		// The settlement carries a matching approved voluntary withdrawal.
		assert.NotNil(t, withdrawal)
		assert.Equal(t, domain.TransactionTypeWithdrawal, withdrawal.Type)
		assert.Equal(t, domain.TransactionStatusApproved, withdrawal.Status)
		assert.Equal(t, int64(491_667), withdrawal.Amount)
		if assert.NotNil(t, withdrawal.SavingsCategory) {
			assert.Equal(t, domain.SavingsCategoryVoluntary, *withdrawal.SavingsCategory)
		}
	})

	t.Run("InsufficientVoluntaryBalance", func(t *testing.T) {
		loans := new(MockLoanRepo)
		transactions := new(MockTransactionRepo)
		svc := service.NewLoanService(new(MockMemberRepo), loans, transactions, nil, testLimits, service.NewMemberLocks())

		loans.On("GetByID", ctx, int32(3)).Return(approvedLoan(), nil)
		transactions.On("Breakdown", ctx, int32(1)).Return(&domain.SavingsBreakdown{
			MemberID: 1, Principal: 100_000, Mandatory: 300_000, Voluntary: 491_666, Total: 891_666,
		}, nil)

		_, _, err := svc.PayInstallment(ctx, 1, 3, 31)
		assert.ErrorIs(t, err, service.ErrInsufficientBalance)
		loans.AssertNotCalled(t, "SettleInstallment",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("OutOfOrderRejected", func(t *testing.T) {
		loans := new(MockLoanRepo)
		svc := service.NewLoanService(new(MockMemberRepo), loans, new(MockTransactionRepo), nil, testLimits, service.NewMemberLocks())

		loans.On("GetByID", ctx, int32(3)).Return(approvedLoan(), nil)

		_, _, err := svc.PayInstallment(ctx, 1, 3, 32)
		assert.ErrorIs(t, err, service.ErrInstallmentOutOfOrder)
	})

	t.Run("AlreadyPaidRejected", func(t *testing.T) {
		loans := new(MockLoanRepo)
		svc := service.NewLoanService(new(MockMemberRepo), loans, new(MockTransactionRepo), nil, testLimits, service.NewMemberLocks())

		loan := approvedLoan()
		loan.Installments[0].Status = domain.InstallmentStatusPaid
		loans.On("GetByID", ctx, int32(3)).Return(loan, nil)

		_, _, err := svc.PayInstallment(ctx, 1, 3, 31)
		assert.ErrorIs(t, err, service.ErrInstallmentPaid)
	})

	t.Run("ForeignLoanDenied", func(t *testing.T) {
		loans := new(MockLoanRepo)
		svc := service.NewLoanService(new(MockMemberRepo), loans, new(MockTransactionRepo), nil, testLimits, service.NewMemberLocks())

		loans.On("GetByID", ctx, int32(3)).Return(approvedLoan(), nil)

		_, _, err := svc.PayInstallment(ctx, 99, 3, 31)
		assert.ErrorIs(t, err, service.ErrAccessDenied)
	})

	t.Run("PendingLoanNotPayable", func(t *testing.T) {
		loans := new(MockLoanRepo)
		svc := service.NewLoanService(new(MockMemberRepo), loans, new(MockTransactionRepo), nil, testLimits, service.NewMemberLocks())

		loan := approvedLoan()
		loan.Status = domain.LoanStatusPending
		loans.On("GetByID", ctx, int32(3)).Return(loan, nil)

		_, _, err := svc.PayInstallment(ctx, 1, 3, 31)
		assert.ErrorIs(t, err, service.ErrLoanNotApproved)
	})
}
