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

// ErrNotPending guards every approval transition: only a pending item can be
// approved or rejected, and only once.
var ErrNotPending = errors.New("item is not pending")

// ErrNoPhoneNumber means a WhatsApp message cannot be delivered because the
// member never registered a phone number.
var ErrNoPhoneNumber = errors.New("member has no phone number")

// ErrAutoSettled rejects queue actions on installment payments. Those are
// settled from voluntary savings and enter the ledger already approved, so a
// pending one is a data fault, not work for an admin.
var ErrAutoSettled = errors.New("installment payments settle automatically")

type approvalService struct {
	members      repository.MemberRepository
	transactions repository.TransactionRepository
	loans        repository.LoanRepository
	notifier     *Notifier
	email        EmailService
	wa           WhatsAppClient
	locks        *MemberLocks
}

func NewApprovalService(
	members repository.MemberRepository,
	transactions repository.TransactionRepository,
	loans repository.LoanRepository,
	notifier *Notifier,
	email EmailService,
	wa WhatsAppClient,
	locks *MemberLocks,
) ApprovalService {
	return &approvalService{
		members:      members,
		transactions: transactions,
		loans:        loans,
		notifier:     notifier,
		email:        email,
		wa:           wa,
		locks:        locks,
	}
}

func (s *approvalService) ApproveMember(ctx context.Context, memberID int32) (*domain.Member, error) {
	logger.EnterMethod("approvalService.ApproveMember", "memberID", memberID)

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.AccountStatus != domain.AccountStatusPending {
		return nil, ErrNotPending
	}

	if err := s.members.SetAccountStatus(ctx, memberID, domain.AccountStatusActive); err != nil {
		logger.ExitMethodWithError("approvalService.ApproveMember", err, "memberID", memberID)
		return nil, err
	}
	member.AccountStatus = domain.AccountStatusActive

	s.notifyMember(ctx, memberID, domain.NotificationSeveritySuccess,
		"Keanggotaan Disetujui",
		fmt.Sprintf("Selamat %s! Pendaftaran Anda telah disetujui. Anda kini dapat menabung dan mengajukan pinjaman.", member.Name),
		nil)
	s.emailStatus(ctx, member, "aktif", "")

	logger.ExitMethod("approvalService.ApproveMember", "memberID", memberID)
	return member, nil
}

func (s *approvalService) SetMemberStatus(ctx context.Context, memberID int32, status domain.AccountStatus, reason string) (*domain.Member, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.AccountStatus == status {
		return member, nil
	}

	if err := s.members.SetAccountStatus(ctx, memberID, status); err != nil {
		return nil, err
	}
	member.AccountStatus = status

	severity := domain.NotificationSeverityInfo
	if status == domain.AccountStatusSuspended {
		severity = domain.NotificationSeverityWarning
	}
	message := fmt.Sprintf("Status keanggotaan Anda berubah menjadi %s.", status)
	if reason != "" {
		message += " Keterangan: " + reason
	}
	s.notifyMember(ctx, memberID, severity, "Status Keanggotaan", message, nil)
	s.emailStatus(ctx, member, string(status), reason)

	return member, nil
}

func (s *approvalService) ListTransactions(ctx context.Context, status domain.TransactionStatus, txType domain.TransactionType, page, pageSize int32) ([]domain.Transaction, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.transactions.List(ctx, status, txType, page, pageSize)
}

// ApproveTransaction finalizes a pending deposit or withdrawal. A withdrawal
// re-verifies the voluntary balance at this moment; the state of the ledger
// when the request was filed no longer matters.
func (s *approvalService) ApproveTransaction(ctx context.Context, transactionID int32) (*domain.Transaction, error) {
	logger.EnterMethod("approvalService.ApproveTransaction", "transactionID", transactionID)

	txn, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.TransactionStatusPending {
		return nil, ErrNotPending
	}
	if txn.Type == domain.TransactionTypeInstallmentPayment {
		return nil, ErrAutoSettled
	}

	// The recheck and the status flip must not interleave with an autopay or
	// another approval touching the same member's balance.
	lock := s.locks.Lock(txn.MemberID)
	defer lock.Unlock()

	if txn.Type == domain.TransactionTypeWithdrawal {
		breakdown, err := s.transactions.Breakdown(ctx, txn.MemberID)
		if err != nil {
			return nil, err
		}
		if txn.Amount > breakdown.Voluntary {
			logger.ExitMethodWithError("approvalService.ApproveTransaction", ErrInsufficientBalance, "transactionID", transactionID)
			return nil, ErrInsufficientBalance
		}
	}

	if err := s.transactions.SetStatus(ctx, transactionID, domain.TransactionStatusApproved, ""); err != nil {
		logger.ExitMethodWithError("approvalService.ApproveTransaction", err, "transactionID", transactionID)
		return nil, err
	}
	txn.Status = domain.TransactionStatusApproved

	verb := "Setoran"
	if txn.Type == domain.TransactionTypeWithdrawal {
		verb = "Penarikan"
	}
	s.notifyMember(ctx, txn.MemberID, domain.NotificationSeveritySuccess,
		verb+" Disetujui",
		fmt.Sprintf("%s sebesar %s (%s) telah disetujui.", verb, finance.FormatRupiah(txn.Amount), txn.TransactionNumber),
		map[string]string{"transaction_id": fmt.Sprint(txn.ID)})

	logger.ExitMethod("approvalService.ApproveTransaction", "transactionID", transactionID)
	return txn, nil
}

func (s *approvalService) RejectTransaction(ctx context.Context, transactionID int32, reason string) (*domain.Transaction, error) {
	txn, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.TransactionStatusPending {
		return nil, ErrNotPending
	}

	if err := s.transactions.SetStatus(ctx, transactionID, domain.TransactionStatusRejected, reason); err != nil {
		return nil, err
	}
	txn.Status = domain.TransactionStatusRejected
	if reason != "" {
		txn.Notes = reason
	}

	verb := "Setoran"
	if txn.Type == domain.TransactionTypeWithdrawal {
		verb = "Penarikan"
	}
	message := fmt.Sprintf("%s sebesar %s (%s) ditolak.", verb, finance.FormatRupiah(txn.Amount), txn.TransactionNumber)
	if reason != "" {
		message += " Alasan: " + reason
	}
	s.notifyMember(ctx, txn.MemberID, domain.NotificationSeverityError, verb+" Ditolak", message,
		map[string]string{"transaction_id": fmt.Sprint(txn.ID)})

	return txn, nil
}

func (s *approvalService) ListLoans(ctx context.Context, status domain.LoanStatus) ([]domain.Loan, error) {
	return s.loans.List(ctx, status)
}

// ApproveLoan activates the loan and lays out its repayment schedule, one
// installment per month starting a month after today.
func (s *approvalService) ApproveLoan(ctx context.Context, loanID int32) (*domain.Loan, error) {
	logger.EnterMethod("approvalService.ApproveLoan", "loanID", loanID)

	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusPending {
		return nil, ErrNotPending
	}

	// A second open loan must never slip through, even if requests raced.
	if _, err := s.loans.GetActiveByMember(ctx, loan.MemberID); err == nil {
		return nil, ErrActiveLoanExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	approvedAt := now.Format("2006-01-02")
	loan.Status = domain.LoanStatusApproved
	loan.ApprovedAt = &approvedAt
	loan.RemainingAmount = loan.TotalPayment
	if err := s.loans.Update(ctx, loan); err != nil {
		logger.ExitMethodWithError("approvalService.ApproveLoan", err, "loanID", loanID)
		return nil, err
	}

	quote := finance.LoanQuote{
		MonthlyInstallment: loan.MonthlyInstallment,
		TotalPayment:       loan.TotalPayment,
		TotalInterest:      loan.TotalInterest,
	}
	quote.LastInstallment = loan.TotalPayment - loan.MonthlyInstallment*int64(loan.TenureMonths-1)

	var installments []domain.Installment
	for _, spec := range finance.BuildSchedule(quote, loan.TenureMonths, now) {
		installments = append(installments, domain.Installment{
			Month:   spec.Month,
			Amount:  spec.Amount,
			DueDate: spec.DueDate.Format("2006-01-02"),
			Status:  domain.InstallmentStatusUnpaid,
		})
	}
	if err := s.loans.CreateInstallments(ctx, loanID, installments); err != nil {
		logger.ExitMethodWithError("approvalService.ApproveLoan", err, "loanID", loanID)
		return nil, err
	}
	loan.Installments = installments

	s.notifyMember(ctx, loan.MemberID, domain.NotificationSeveritySuccess,
		"Pinjaman Disetujui",
		fmt.Sprintf("Pinjaman sebesar %s telah disetujui. Angsuran %s per bulan selama %d bulan, mulai %s.",
			finance.FormatRupiah(loan.Amount), finance.FormatRupiah(loan.MonthlyInstallment),
			loan.TenureMonths, installments[0].DueDate),
		map[string]string{"loan_id": fmt.Sprint(loan.ID)})

	logger.ExitMethod("approvalService.ApproveLoan", "loanID", loanID)
	return loan, nil
}

func (s *approvalService) RejectLoan(ctx context.Context, loanID int32, reason string) (*domain.Loan, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusPending {
		return nil, ErrNotPending
	}

	rejectedAt := time.Now().Format("2006-01-02")
	loan.Status = domain.LoanStatusRejected
	loan.RejectedAt = &rejectedAt
	if err := s.loans.Update(ctx, loan); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Pengajuan pinjaman sebesar %s ditolak.", finance.FormatRupiah(loan.Amount))
	if reason != "" {
		message += " Alasan: " + reason
	}
	s.notifyMember(ctx, loan.MemberID, domain.NotificationSeverityError, "Pinjaman Ditolak", message,
		map[string]string{"loan_id": fmt.Sprint(loan.ID)})

	return loan, nil
}

// ResendWhatsApp pushes a transaction's status message through the gateway
// again, on an admin's request. Unlike the notifier path this one is
// synchronous so the admin sees the outcome.
func (s *approvalService) ResendWhatsApp(ctx context.Context, transactionID int32) (*domain.Transaction, error) {
	txn, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	member, err := s.members.GetByID(ctx, txn.MemberID)
	if err != nil {
		return nil, err
	}
	if member.Phone == "" {
		return nil, ErrNoPhoneNumber
	}

	verb := "Setoran"
	switch txn.Type {
	case domain.TransactionTypeWithdrawal:
		verb = "Penarikan"
	case domain.TransactionTypeInstallmentPayment:
		verb = "Pembayaran angsuran"
	}
	message := fmt.Sprintf("%s sebesar %s (%s) berstatus %s.", verb, finance.FormatRupiah(txn.Amount), txn.TransactionNumber, txn.Status)
	if err := s.wa.Send(ctx, member.Phone, message); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.transactions.MarkWhatsAppSent(ctx, txn.ID, now); err != nil {
		return nil, err
	}
	txn.WhatsAppSent = true
	sentAt := now.Format(time.RFC3339)
	txn.WhatsAppSentAt = &sentAt
	return txn, nil
}

// Dashboard aggregates the admin overview numbers straight from the ledger.
func (s *approvalService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	logger.EnterMethod("approvalService.Dashboard")

	stats := &domain.DashboardStats{}
	var err error
	if stats.TotalMembers, err = s.members.CountByStatus(ctx, ""); err != nil {
		return nil, err
	}
	if stats.ActiveMembers, err = s.members.CountByStatus(ctx, domain.AccountStatusActive); err != nil {
		return nil, err
	}
	if stats.PendingMembers, err = s.members.CountByStatus(ctx, domain.AccountStatusPending); err != nil {
		return nil, err
	}
	if stats.TotalSavings, err = s.transactions.TotalSavings(ctx); err != nil {
		return nil, err
	}
	if stats.OutstandingLoans, err = s.loans.OutstandingTotal(ctx); err != nil {
		return nil, err
	}
	if stats.OverdueInstallments, err = s.loans.CountOverdueInstallments(ctx, time.Now()); err != nil {
		return nil, err
	}
	if stats.PendingTransactions, err = s.transactions.CountByStatus(ctx, domain.TransactionStatusPending); err != nil {
		return nil, err
	}
	if stats.PendingLoans, err = s.loans.CountByStatus(ctx, domain.LoanStatusPending); err != nil {
		return nil, err
	}

	recent, _, err := s.transactions.List(ctx, "", "", 1, 10)
	if err != nil {
		logger.ExitMethodWithError("approvalService.Dashboard", err)
		return nil, err
	}
	stats.RecentTransactions = recent

	logger.ExitMethod("approvalService.Dashboard", "totalMembers", stats.TotalMembers)
	return stats, nil
}

func (s *approvalService) notifyMember(ctx context.Context, memberID int32, severity domain.NotificationSeverity, title, message string, attrs map[string]string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, memberID, severity, title, message, attrs); err != nil {
		logger.Warn("approval notification failed", "memberID", memberID, "error", err)
	}
}

func (s *approvalService) emailStatus(ctx context.Context, member *domain.Member, status, reason string) {
	if s.email == nil {
		return
	}
	if err := s.email.SendAccountStatus(ctx, member.Email, member.Name, status, reason); err != nil {
		logger.Warn("status email failed", "memberID", member.ID, "error", err)
	}
}
