package service

import (
	"context"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/finance"
)

type AuthService interface {
	Register(ctx context.Context, m *domain.Member, password string) (*domain.Member, error)
	Login(ctx context.Context, email, password string) (*domain.Member, string, string, error) // member, access, refresh
	RefreshToken(ctx context.Context, refresh string) (string, string, error)
	ChangePassword(ctx context.Context, memberID int32, oldPassword, newPassword string) error
}

type MemberService interface {
	GetProfile(ctx context.Context, memberID int32) (*domain.Member, error)
	UpdateProfile(ctx context.Context, member *domain.Member) error
	ListMembers(ctx context.Context, status domain.AccountStatus, query string) ([]domain.Member, error)
}

type SavingsService interface {
	Deposit(ctx context.Context, memberID int32, category domain.SavingsCategory, amount int64, notes, proofURL string, ocr *domain.OCRResult) (*domain.Transaction, error)
	Withdraw(ctx context.Context, memberID int32, amount int64, notes string) (*domain.Transaction, error)
	GetBalance(ctx context.Context, memberID int32) (int64, error)
	GetBreakdown(ctx context.Context, memberID int32) (*domain.SavingsBreakdown, error)
	GetMonthlyActivity(ctx context.Context, memberID int32, months int) ([]domain.MonthlyActivity, error)
	ListTransactions(ctx context.Context, memberID int32, page, pageSize int32) ([]domain.Transaction, int32, error)
	GetTransaction(ctx context.Context, memberID, transactionID int32) (*domain.Transaction, error)
}

type LoanService interface {
	Quote(ctx context.Context, principal int64, tenureMonths int32) (finance.LoanQuote, error)
	Request(ctx context.Context, memberID int32, principal int64, tenureMonths int32, purpose string) (*domain.Loan, error)
	Get(ctx context.Context, memberID, loanID int32) (*domain.Loan, error)
	ListByMember(ctx context.Context, memberID int32) ([]domain.Loan, error)
	GetActive(ctx context.Context, memberID int32) (*domain.Loan, error)
	PayInstallment(ctx context.Context, memberID, loanID, installmentID int32) (*domain.Loan, *domain.Transaction, error)
}

// ApprovalService carries the admin approval workflows. Every state change
// flows pending -> approved/rejected exactly once.
type ApprovalService interface {
	ApproveMember(ctx context.Context, memberID int32) (*domain.Member, error)
	SetMemberStatus(ctx context.Context, memberID int32, status domain.AccountStatus, reason string) (*domain.Member, error)

	ListTransactions(ctx context.Context, status domain.TransactionStatus, txType domain.TransactionType, page, pageSize int32) ([]domain.Transaction, int32, error)
	ApproveTransaction(ctx context.Context, transactionID int32) (*domain.Transaction, error)
	RejectTransaction(ctx context.Context, transactionID int32, reason string) (*domain.Transaction, error)

	ListLoans(ctx context.Context, status domain.LoanStatus) ([]domain.Loan, error)
	ApproveLoan(ctx context.Context, loanID int32) (*domain.Loan, error)
	RejectLoan(ctx context.Context, loanID int32, reason string) (*domain.Loan, error)

	ResendWhatsApp(ctx context.Context, transactionID int32) (*domain.Transaction, error)
	Dashboard(ctx context.Context) (*domain.DashboardStats, error)
}

type SHUService interface {
	SaveConfig(ctx context.Context, input SHUConfigInput) (*domain.SHUConfig, error)
	GetConfig(ctx context.Context, year int32) (*domain.SHUConfig, error)
	Calculate(ctx context.Context, year int32) ([]domain.SHURecord, error)
	Distribute(ctx context.Context, year int32) (int64, error)
	Report(ctx context.Context, year int32) ([]domain.SHURecord, error)
	MemberHistory(ctx context.Context, memberID int32) ([]domain.SHURecord, error)
}

type NotificationService interface {
	List(ctx context.Context, memberID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	CountUnread(ctx context.Context, memberID int32) (int32, error)
	MarkAsRead(ctx context.Context, memberID, notificationID int32) error
	MarkAllAsRead(ctx context.Context, memberID int32) error
}

type EmailService interface {
	SendWelcome(ctx context.Context, email, name string) error
	SendAccountStatus(ctx context.Context, email, name, status, reason string) error
}

// WhatsAppClient talks to the self-hosted WhatsApp gateway.
type WhatsAppClient interface {
	Send(ctx context.Context, phone, message string) error
	Status(ctx context.Context) error
}
