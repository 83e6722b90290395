package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/finance"
	"koperasi-backend/internal/logger"
	"koperasi-backend/internal/repository"
)

var (
	ErrActiveLoanExists      = errors.New("member already has an open loan")
	ErrLoanNotApproved       = errors.New("loan is not approved")
	ErrInstallmentPaid       = errors.New("installment already paid")
	ErrInstallmentOutOfOrder = errors.New("installments must be paid in order")
	ErrLoanLimitExceeded     = errors.New("loan amount or tenure exceeds the allowed limit")
)

// LoanLimits bounds what a member may request.
type LoanLimits struct {
	MonthlyRatePercent float64
	MaxPrincipal       int64
	MaxTenureMonths    int32
}

type loanService struct {
	members      repository.MemberRepository
	loans        repository.LoanRepository
	transactions repository.TransactionRepository
	notifier     *Notifier
	limits       LoanLimits
	locks        *MemberLocks
}

func NewLoanService(members repository.MemberRepository, loans repository.LoanRepository, transactions repository.TransactionRepository, notifier *Notifier, limits LoanLimits, locks *MemberLocks) LoanService {
	return &loanService{
		members:      members,
		loans:        loans,
		transactions: transactions,
		notifier:     notifier,
		limits:       limits,
		locks:        locks,
	}
}

func (s *loanService) Quote(ctx context.Context, principal int64, tenureMonths int32) (finance.LoanQuote, error) {
	if err := s.checkLimits(principal, tenureMonths); err != nil {
		return finance.LoanQuote{}, err
	}
	return finance.CalculateLoan(principal, tenureMonths, s.limits.MonthlyRatePercent)
}

// Request prices the loan at the cooperative's flat rate and files it for
// admin approval. One open loan per member: a pending or active loan blocks a
// new request.
func (s *loanService) Request(ctx context.Context, memberID int32, principal int64, tenureMonths int32, purpose string) (*domain.Loan, error) {
	logger.EnterMethod("loanService.Request", "memberID", memberID, "principal", principal, "tenure", tenureMonths)

	if err := s.checkLimits(principal, tenureMonths); err != nil {
		return nil, err
	}

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !member.CanTransact() {
		return nil, ErrMemberNotActive
	}

	lock := s.locks.Lock(memberID)
	defer lock.Unlock()

	existing, err := s.loans.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	for _, l := range existing {
		if l.Status == domain.LoanStatusPending || l.Active() {
			logger.ExitMethodWithError("loanService.Request", ErrActiveLoanExists, "memberID", memberID, "existingLoanID", l.ID)
			return nil, ErrActiveLoanExists
		}
	}

	quote, err := finance.CalculateLoan(principal, tenureMonths, s.limits.MonthlyRatePercent)
	if err != nil {
		return nil, err
	}

	loan := &domain.Loan{
		MemberID:           memberID,
		MemberName:         member.Name,
		Amount:             principal,
		Purpose:            purpose,
		Status:             domain.LoanStatusPending,
		TenureMonths:       tenureMonths,
		InterestRate:       s.limits.MonthlyRatePercent,
		MonthlyInstallment: quote.MonthlyInstallment,
		TotalPayment:       quote.TotalPayment,
		TotalInterest:      quote.TotalInterest,
		RemainingAmount:    quote.TotalPayment,
	}
	if err := s.loans.Create(ctx, loan); err != nil {
		logger.ExitMethodWithError("loanService.Request", err, "memberID", memberID)
		return nil, err
	}

	logger.ExitMethod("loanService.Request", "loanID", loan.ID)
	return loan, nil
}

func (s *loanService) Get(ctx context.Context, memberID, loanID int32) (*domain.Loan, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.MemberID != memberID {
		return nil, ErrAccessDenied
	}
	return loan, nil
}

func (s *loanService) ListByMember(ctx context.Context, memberID int32) ([]domain.Loan, error) {
	return s.loans.ListByMember(ctx, memberID)
}

func (s *loanService) GetActive(ctx context.Context, memberID int32) (*domain.Loan, error) {
	return s.loans.GetActiveByMember(ctx, memberID)
}

// PayInstallment settles the loan's next due installment, funded from the
// member's voluntary savings. The repository commits all effects (installment
// paid, balance reduced, loan possibly completed, payment and withdrawal
// ledger rows written) in one transaction.
func (s *loanService) PayInstallment(ctx context.Context, memberID, loanID, installmentID int32) (*domain.Loan, *domain.Transaction, error) {
	logger.EnterMethod("loanService.PayInstallment", "memberID", memberID, "loanID", loanID, "installmentID", installmentID)

	lock := s.locks.Lock(memberID)
	defer lock.Unlock()

	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}
	if loan.MemberID != memberID {
		return nil, nil, ErrAccessDenied
	}
	if loan.Status != domain.LoanStatusApproved {
		return nil, nil, ErrLoanNotApproved
	}

	var target *domain.Installment
	for idx := range loan.Installments {
		if loan.Installments[idx].ID == installmentID {
			target = &loan.Installments[idx]
			break
		}
	}
	if target == nil {
		return nil, nil, repository.ErrNotFound
	}
	if target.Status == domain.InstallmentStatusPaid {
		return nil, nil, ErrInstallmentPaid
	}
	if next := loan.NextDue(); next != nil && next.ID != installmentID {
		return nil, nil, ErrInstallmentOutOfOrder
	}

	// Installments are auto-paid from voluntary savings, so the member must
	// hold at least the installment amount there.
	breakdown, err := s.transactions.Breakdown(ctx, memberID)
	if err != nil {
		return nil, nil, err
	}
	if breakdown.Voluntary < target.Amount {
		logger.ExitMethodWithError("loanService.PayInstallment", ErrInsufficientBalance, "loanID", loanID, "voluntary", breakdown.Voluntary)
		return nil, nil, ErrInsufficientBalance
	}

	now := time.Now()
	payment := &domain.Transaction{
		TransactionNumber: finance.RandomTransactionNumber(now),
		MemberID:          memberID,
		MemberName:        loan.MemberName,
		Type:              domain.TransactionTypeInstallmentPayment,
		Amount:            target.Amount,
		Status:            domain.TransactionStatusApproved,
		Notes:             fmt.Sprintf("Angsuran ke-%d", target.Month),
	}
	voluntary := domain.SavingsCategoryVoluntary
	withdrawal := &domain.Transaction{
		TransactionNumber: finance.RandomTransactionNumber(now),
		MemberID:          memberID,
		MemberName:        loan.MemberName,
		Type:              domain.TransactionTypeWithdrawal,
		SavingsCategory:   &voluntary,
		Amount:            target.Amount,
		Status:            domain.TransactionStatusApproved,
		Notes:             fmt.Sprintf("Pembayaran angsuran ke-%d dari simpanan sukarela", target.Month),
	}

	updated, err := s.loans.SettleInstallment(ctx, loanID, installmentID, now, payment, withdrawal)
	if err != nil {
		logger.ExitMethodWithError("loanService.PayInstallment", err, "loanID", loanID)
		return nil, nil, err
	}

	if s.notifier != nil {
		title := "Angsuran Diterima"
		message := fmt.Sprintf("Pembayaran angsuran ke-%d sebesar %s telah dicatat. Sisa pinjaman %s.",
			target.Month, finance.FormatRupiah(target.Amount), finance.FormatRupiah(updated.RemainingAmount))
		if updated.Status == domain.LoanStatusCompleted {
			title = "Pinjaman Lunas"
			message = fmt.Sprintf("Selamat! Pinjaman Anda sebesar %s telah lunas.", finance.FormatRupiah(updated.Amount))
		}
		if err := s.notifier.Notify(ctx, memberID, domain.NotificationSeveritySuccess, title, message, map[string]string{
			"loan_id": fmt.Sprint(loanID),
		}); err != nil {
			logger.Warn("installment notification failed", "loanID", loanID, "error", err)
		}
	}

	logger.ExitMethod("loanService.PayInstallment", "loanID", loanID, "remaining", updated.RemainingAmount)
	return updated, payment, nil
}

func (s *loanService) checkLimits(principal int64, tenureMonths int32) error {
	if principal <= 0 || tenureMonths <= 0 {
		return ErrAmountNotPositive
	}
	if principal > s.limits.MaxPrincipal || tenureMonths > s.limits.MaxTenureMonths {
		return ErrLoanLimitExceeded
	}
	return nil
}
