package repository

import (
	"context"
	"errors"
	"time"

	"koperasi-backend/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id int32) (*domain.Member, error)
	GetByEmail(ctx context.Context, email string) (*domain.Member, error)
	Update(ctx context.Context, member *domain.Member) error
	UpdatePassword(ctx context.Context, id int32, passwordHash string) error
	SetAccountStatus(ctx context.Context, id int32, status domain.AccountStatus) error
	List(ctx context.Context, status domain.AccountStatus, query string) ([]domain.Member, error)
	ListActive(ctx context.Context) ([]domain.Member, error)
	ListAdmins(ctx context.Context) ([]domain.Member, error)

	// CountByStatus counts members in the given state; an empty status counts
	// every member.
	CountByStatus(ctx context.Context, status domain.AccountStatus) (int32, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	GetByID(ctx context.Context, id int32) (*domain.Transaction, error)
	SetStatus(ctx context.Context, id int32, status domain.TransactionStatus, notes string) error
	ListByMember(ctx context.Context, memberID int32, page, pageSize int32) ([]domain.Transaction, int32, error)
	List(ctx context.Context, status domain.TransactionStatus, txType domain.TransactionType, page, pageSize int32) ([]domain.Transaction, int32, error)

	// Derived savings views over approved rows.
	Balance(ctx context.Context, memberID int32) (int64, error)
	Breakdown(ctx context.Context, memberID int32) (*domain.SavingsBreakdown, error)
	MonthlyActivity(ctx context.Context, memberID int32, months int) ([]domain.MonthlyActivity, error)
	HasPrincipalDeposit(ctx context.Context, memberID int32) (bool, error)

	// MemberContributions aggregates approved deposits and transaction counts
	// for one fiscal year, across all active members.
	MemberContributions(ctx context.Context, year int32) ([]domain.MemberContribution, error)

	// TotalSavings sums approved deposits minus approved withdrawals across
	// every member.
	TotalSavings(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.TransactionStatus) (int32, error)

	MarkWhatsAppSent(ctx context.Context, id int32, at time.Time) error
}

type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id int32) (*domain.Loan, error)
	Update(ctx context.Context, loan *domain.Loan) error
	ListByMember(ctx context.Context, memberID int32) ([]domain.Loan, error)
	List(ctx context.Context, status domain.LoanStatus) ([]domain.Loan, error)
	GetActiveByMember(ctx context.Context, memberID int32) (*domain.Loan, error)

	CreateInstallments(ctx context.Context, loanID int32, installments []domain.Installment) error
	ListInstallments(ctx context.Context, loanID int32) ([]domain.Installment, error)
	GetInstallment(ctx context.Context, id int32) (*domain.Installment, error)

	// SettleInstallment records an installment payment atomically: the
	// installment flips to paid, the loan's remaining amount drops, the loan
	// completes when it reaches zero, and both ledger rows are inserted (the
	// installment payment plus the voluntary withdrawal that funds it). All
	// five effects commit together or not at all.
	SettleInstallment(ctx context.Context, loanID, installmentID int32, paidAt time.Time, payment, withdrawal *domain.Transaction) (*domain.Loan, error)

	// ListDueInstallments returns unpaid installments of approved loans due
	// inside [from, to], joined with member contact details for reminders.
	ListDueInstallments(ctx context.Context, from, to time.Time) ([]domain.DueInstallment, error)

	// OutstandingTotal sums the remaining amount of every approved loan.
	OutstandingTotal(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.LoanStatus) (int32, error)
	CountOverdueInstallments(ctx context.Context, asOf time.Time) (int32, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, memberID int32, limit, offset int32) ([]domain.Notification, int32, error)
	CountUnread(ctx context.Context, memberID int32) (int32, error)
	MarkAsRead(ctx context.Context, id, memberID int32) error
	MarkAllAsRead(ctx context.Context, memberID int32) error
	ListUnsentWhatsApp(ctx context.Context, limit int32) ([]domain.Notification, error)
	MarkWhatsAppSent(ctx context.Context, id int32, at time.Time) error
}

type SHURepository interface {
	UpsertConfig(ctx context.Context, cfg *domain.SHUConfig) error
	GetConfig(ctx context.Context, year int32) (*domain.SHUConfig, error)

	// ReplaceRecords drops the year's calculated (not yet distributed) records
	// and inserts the fresh batch in one transaction.
	ReplaceRecords(ctx context.Context, year int32, records []domain.SHURecord) error
	ListRecords(ctx context.Context, year int32) ([]domain.SHURecord, error)
	ListRecordsByMember(ctx context.Context, memberID int32) ([]domain.SHURecord, error)
	CountByStatus(ctx context.Context, year int32, status domain.SHUStatus) (int32, error)

	// MarkDistributed finalizes the year's calculated records and reports how
	// many rows were finalized.
	MarkDistributed(ctx context.Context, year int32, at time.Time) (int64, error)
}
