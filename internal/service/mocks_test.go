package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"koperasi-backend/internal/domain"
)

// MockMemberRepo
type MockMemberRepo struct {
	mock.Mock
}

func (m *MockMemberRepo) Create(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}
func (m *MockMemberRepo) GetByID(ctx context.Context, id int32) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockMemberRepo) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockMemberRepo) Update(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}
func (m *MockMemberRepo) UpdatePassword(ctx context.Context, id int32, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}
func (m *MockMemberRepo) SetAccountStatus(ctx context.Context, id int32, status domain.AccountStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockMemberRepo) List(ctx context.Context, status domain.AccountStatus, query string) ([]domain.Member, error) {
	args := m.Called(ctx, status, query)
	return args.Get(0).([]domain.Member), args.Error(1)
}
func (m *MockMemberRepo) ListActive(ctx context.Context) ([]domain.Member, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Member), args.Error(1)
}
func (m *MockMemberRepo) ListAdmins(ctx context.Context) ([]domain.Member, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Member), args.Error(1)
}
func (m *MockMemberRepo) CountByStatus(ctx context.Context, status domain.AccountStatus) (int32, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int32), args.Error(1)
}

// MockTransactionRepo
type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, txn *domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}
func (m *MockTransactionRepo) GetByID(ctx context.Context, id int32) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) SetStatus(ctx context.Context, id int32, status domain.TransactionStatus, notes string) error {
	args := m.Called(ctx, id, status, notes)
	return args.Error(0)
}
func (m *MockTransactionRepo) ListByMember(ctx context.Context, memberID int32, page, pageSize int32) ([]domain.Transaction, int32, error) {
	args := m.Called(ctx, memberID, page, pageSize)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int32), args.Error(2)
}
func (m *MockTransactionRepo) List(ctx context.Context, status domain.TransactionStatus, txType domain.TransactionType, page, pageSize int32) ([]domain.Transaction, int32, error) {
	args := m.Called(ctx, status, txType, page, pageSize)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int32), args.Error(2)
}
func (m *MockTransactionRepo) Balance(ctx context.Context, memberID int32) (int64, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockTransactionRepo) Breakdown(ctx context.Context, memberID int32) (*domain.SavingsBreakdown, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavingsBreakdown), args.Error(1)
}
func (m *MockTransactionRepo) MonthlyActivity(ctx context.Context, memberID int32, months int) ([]domain.MonthlyActivity, error) {
	args := m.Called(ctx, memberID, months)
	return args.Get(0).([]domain.MonthlyActivity), args.Error(1)
}
func (m *MockTransactionRepo) HasPrincipalDeposit(ctx context.Context, memberID int32) (bool, error) {
	args := m.Called(ctx, memberID)
	return args.Bool(0), args.Error(1)
}
func (m *MockTransactionRepo) MemberContributions(ctx context.Context, year int32) ([]domain.MemberContribution, error) {
	args := m.Called(ctx, year)
	return args.Get(0).([]domain.MemberContribution), args.Error(1)
}
func (m *MockTransactionRepo) TotalSavings(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockTransactionRepo) CountByStatus(ctx context.Context, status domain.TransactionStatus) (int32, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockTransactionRepo) MarkWhatsAppSent(ctx context.Context, id int32, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockLoanRepo
type MockLoanRepo struct {
	mock.Mock
}

func (m *MockLoanRepo) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}
func (m *MockLoanRepo) GetByID(ctx context.Context, id int32) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) Update(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}
func (m *MockLoanRepo) ListByMember(ctx context.Context, memberID int32) ([]domain.Loan, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).([]domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) List(ctx context.Context, status domain.LoanStatus) ([]domain.Loan, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) GetActiveByMember(ctx context.Context, memberID int32) (*domain.Loan, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) CreateInstallments(ctx context.Context, loanID int32, installments []domain.Installment) error {
	args := m.Called(ctx, loanID, installments)
	return args.Error(0)
}
func (m *MockLoanRepo) ListInstallments(ctx context.Context, loanID int32) ([]domain.Installment, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).([]domain.Installment), args.Error(1)
}
func (m *MockLoanRepo) GetInstallment(ctx context.Context, id int32) (*domain.Installment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Installment), args.Error(1)
}
func (m *MockLoanRepo) SettleInstallment(ctx context.Context, loanID, installmentID int32, paidAt time.Time, payment, withdrawal *domain.Transaction) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, installmentID, paidAt, payment, withdrawal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) ListDueInstallments(ctx context.Context, from, to time.Time) ([]domain.DueInstallment, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]domain.DueInstallment), args.Error(1)
}
func (m *MockLoanRepo) OutstandingTotal(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockLoanRepo) CountByStatus(ctx context.Context, status domain.LoanStatus) (int32, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockLoanRepo) CountOverdueInstallments(ctx context.Context, asOf time.Time) (int32, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int32), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, memberID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, memberID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) CountUnread(ctx context.Context, memberID int32) (int32, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, memberID int32) error {
	args := m.Called(ctx, id, memberID)
	return args.Error(0)
}
func (m *MockNotificationRepo) MarkAllAsRead(ctx context.Context, memberID int32) error {
	args := m.Called(ctx, memberID)
	return args.Error(0)
}
func (m *MockNotificationRepo) ListUnsentWhatsApp(ctx context.Context, limit int32) ([]domain.Notification, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Notification), args.Error(1)
}
func (m *MockNotificationRepo) MarkWhatsAppSent(ctx context.Context, id int32, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockSHURepo
type MockSHURepo struct {
	mock.Mock
}

func (m *MockSHURepo) UpsertConfig(ctx context.Context, cfg *domain.SHUConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}
func (m *MockSHURepo) GetConfig(ctx context.Context, year int32) (*domain.SHUConfig, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SHUConfig), args.Error(1)
}
func (m *MockSHURepo) ReplaceRecords(ctx context.Context, year int32, records []domain.SHURecord) error {
	args := m.Called(ctx, year, records)
	return args.Error(0)
}
func (m *MockSHURepo) ListRecords(ctx context.Context, year int32) ([]domain.SHURecord, error) {
	args := m.Called(ctx, year)
	return args.Get(0).([]domain.SHURecord), args.Error(1)
}
func (m *MockSHURepo) ListRecordsByMember(ctx context.Context, memberID int32) ([]domain.SHURecord, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).([]domain.SHURecord), args.Error(1)
}
func (m *MockSHURepo) CountByStatus(ctx context.Context, year int32, status domain.SHUStatus) (int32, error) {
	args := m.Called(ctx, year, status)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockSHURepo) MarkDistributed(ctx context.Context, year int32, at time.Time) (int64, error) {
	args := m.Called(ctx, year, at)
	return args.Get(0).(int64), args.Error(1)
}

// MockWhatsAppClient
type MockWhatsAppClient struct {
	mock.Mock
}

func (m *MockWhatsAppClient) Send(ctx context.Context, phone, message string) error {
	args := m.Called(ctx, phone, message)
	return args.Error(0)
}
func (m *MockWhatsAppClient) Status(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
