package service

import (
	"context"
	"errors"
	"time"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/finance"
	"koperasi-backend/internal/logger"
	"koperasi-backend/internal/repository"
)

var (
	ErrAmountNotPositive    = errors.New("amount must be positive")
	ErrInsufficientBalance  = errors.New("insufficient voluntary savings balance")
	ErrMemberNotActive      = errors.New("member account is not active")
	ErrInvalidCategory      = errors.New("invalid savings category")
	ErrPrincipalAlreadyPaid = errors.New("principal deposit already recorded")
	ErrAccessDenied         = errors.New("access denied")
)

type savingsService struct {
	members      repository.MemberRepository
	transactions repository.TransactionRepository
	locks        *MemberLocks
}

func NewSavingsService(members repository.MemberRepository, transactions repository.TransactionRepository, locks *MemberLocks) SavingsService {
	return &savingsService{
		members:      members,
		transactions: transactions,
		locks:        locks,
	}
}

// Deposit records a pending deposit. Nothing lands on the balance until an
// admin approves the transaction.
func (s *savingsService) Deposit(ctx context.Context, memberID int32, category domain.SavingsCategory, amount int64, notes, proofURL string, ocr *domain.OCRResult) (*domain.Transaction, error) {
	logger.EnterMethod("savingsService.Deposit", "memberID", memberID, "category", category, "amount", amount)

	if amount <= 0 {
		return nil, ErrAmountNotPositive
	}
	switch category {
	case domain.SavingsCategoryPrincipal, domain.SavingsCategoryMandatory, domain.SavingsCategoryVoluntary:
	default:
		return nil, ErrInvalidCategory
	}

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	// The one-time principal deposit is the exception to the active-only
	// rule: a pending member pays it as part of onboarding.
	if !member.CanTransact() && category != domain.SavingsCategoryPrincipal {
		return nil, ErrMemberNotActive
	}

	if category == domain.SavingsCategoryPrincipal {
		exists, err := s.transactions.HasPrincipalDeposit(ctx, memberID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrPrincipalAlreadyPaid
		}
	}

	txn := &domain.Transaction{
		TransactionNumber: finance.RandomTransactionNumber(time.Now()),
		MemberID:          memberID,
		MemberName:        member.Name,
		Type:              domain.TransactionTypeDeposit,
		SavingsCategory:   &category,
		Amount:            amount,
		Status:            domain.TransactionStatusPending,
		Notes:             notes,
		ProofURL:          proofURL,
		OCRResult:         ocr,
	}
	if err := s.transactions.Create(ctx, txn); err != nil {
		logger.ExitMethodWithError("savingsService.Deposit", err, "memberID", memberID)
		return nil, err
	}

	logger.ExitMethod("savingsService.Deposit", "transactionID", txn.ID)
	return txn, nil
}

// Withdraw records a pending withdrawal against the voluntary bucket. The
// balance check repeats at approval time, so an approved deposit vanishing in
// between cannot overdraw the member.
func (s *savingsService) Withdraw(ctx context.Context, memberID int32, amount int64, notes string) (*domain.Transaction, error) {
	logger.EnterMethod("savingsService.Withdraw", "memberID", memberID, "amount", amount)

	if amount <= 0 {
		return nil, ErrAmountNotPositive
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

	breakdown, err := s.transactions.Breakdown(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if amount > breakdown.Voluntary {
		logger.ExitMethodWithError("savingsService.Withdraw", ErrInsufficientBalance, "memberID", memberID, "voluntary", breakdown.Voluntary)
		return nil, ErrInsufficientBalance
	}

	txn := &domain.Transaction{
		TransactionNumber: finance.RandomTransactionNumber(time.Now()),
		MemberID:          memberID,
		MemberName:        member.Name,
		Type:              domain.TransactionTypeWithdrawal,
		Amount:            amount,
		Status:            domain.TransactionStatusPending,
		Notes:             notes,
	}
	if err := s.transactions.Create(ctx, txn); err != nil {
		logger.ExitMethodWithError("savingsService.Withdraw", err, "memberID", memberID)
		return nil, err
	}

	logger.ExitMethod("savingsService.Withdraw", "transactionID", txn.ID)
	return txn, nil
}

func (s *savingsService) GetBalance(ctx context.Context, memberID int32) (int64, error) {
	return s.transactions.Balance(ctx, memberID)
}

func (s *savingsService) GetBreakdown(ctx context.Context, memberID int32) (*domain.SavingsBreakdown, error) {
	return s.transactions.Breakdown(ctx, memberID)
}

func (s *savingsService) GetMonthlyActivity(ctx context.Context, memberID int32, months int) ([]domain.MonthlyActivity, error) {
	if months <= 0 || months > 24 {
		months = 6
	}
	return s.transactions.MonthlyActivity(ctx, memberID, months)
}

func (s *savingsService) ListTransactions(ctx context.Context, memberID int32, page, pageSize int32) ([]domain.Transaction, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.transactions.ListByMember(ctx, memberID, page, pageSize)
}

func (s *savingsService) GetTransaction(ctx context.Context, memberID, transactionID int32) (*domain.Transaction, error) {
	txn, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.MemberID != memberID {
		return nil, ErrAccessDenied
	}
	return txn, nil
}
