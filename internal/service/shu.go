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
	ErrAlreadyDistributed = errors.New("shu for this year is already distributed")
	ErrNothingCalculated  = errors.New("no calculated shu records for this year")
	ErrInvalidShares      = errors.New("invalid shu share configuration")
)

type shuService struct {
	shu          repository.SHURepository
	transactions repository.TransactionRepository
	notifier     *Notifier
	defaults     domain.SHUConfig
}

// NewSHUService builds the profit-sharing service. defaults fill in share
// percentages when an admin saves a config without them.
func NewSHUService(shu repository.SHURepository, transactions repository.TransactionRepository, notifier *Notifier, defaults domain.SHUConfig) SHUService {
	return &shuService{
		shu:          shu,
		transactions: transactions,
		notifier:     notifier,
		defaults:     defaults,
	}
}

// SHUConfigInput carries an admin's config submission. A nil share was left
// out of the request and falls back to the configured default; an explicit
// zero stays zero.
type SHUConfigInput struct {
	Year                    int32
	GrossProfit             int64
	OperatingCost           int64
	SavingsSharePercent     *float64
	TransactionSharePercent *float64
	SocialFundPercent       *float64
	ManagementPercent       *float64
	ReserveRatio            *float64
}

func (s *shuService) SaveConfig(ctx context.Context, input SHUConfigInput) (*domain.SHUConfig, error) {
	cfg := s.defaults
	cfg.Year = input.Year
	cfg.GrossProfit = input.GrossProfit
	cfg.OperatingCost = input.OperatingCost
	if input.SavingsSharePercent != nil {
		cfg.SavingsSharePercent = *input.SavingsSharePercent
	}
	if input.TransactionSharePercent != nil {
		cfg.TransactionSharePercent = *input.TransactionSharePercent
	}
	if input.SocialFundPercent != nil {
		cfg.SocialFundPercent = *input.SocialFundPercent
	}
	if input.ManagementPercent != nil {
		cfg.ManagementPercent = *input.ManagementPercent
	}
	if input.ReserveRatio != nil {
		cfg.ReserveRatio = *input.ReserveRatio
	}

	if err := finance.ValidateShares(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShares, err)
	}

	// A distributed year is closed; its parameters must not drift afterwards.
	distributed, err := s.shu.CountByStatus(ctx, cfg.Year, domain.SHUStatusDistributed)
	if err != nil {
		return nil, err
	}
	if distributed > 0 {
		return nil, ErrAlreadyDistributed
	}

	if err := s.shu.UpsertConfig(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *shuService) GetConfig(ctx context.Context, year int32) (*domain.SHUConfig, error) {
	return s.shu.GetConfig(ctx, year)
}

// Calculate recomputes the year's distribution from approved ledger activity.
// Safe to repeat until the year is distributed; each run replaces the
// previous calculated batch.
func (s *shuService) Calculate(ctx context.Context, year int32) ([]domain.SHURecord, error) {
	logger.EnterMethod("shuService.Calculate", "year", year)

	distributed, err := s.shu.CountByStatus(ctx, year, domain.SHUStatusDistributed)
	if err != nil {
		return nil, err
	}
	if distributed > 0 {
		logger.ExitMethodWithError("shuService.Calculate", ErrAlreadyDistributed, "year", year)
		return nil, ErrAlreadyDistributed
	}

	cfg, err := s.shu.GetConfig(ctx, year)
	if err != nil {
		return nil, err
	}

	contributions, err := s.transactions.MemberContributions(ctx, year)
	if err != nil {
		return nil, err
	}

	dist, err := finance.DistributeSHU(*cfg, contributions)
	if err != nil {
		return nil, err
	}

	calculatedAt := time.Now().Format("2006-01-02")
	records := make([]domain.SHURecord, 0, len(dist.MemberShares))
	for _, share := range dist.MemberShares {
		records = append(records, domain.SHURecord{
			Year:                    year,
			MemberID:                share.MemberID,
			MemberName:              share.MemberName,
			TotalSavings:            share.TotalSavings,
			TransactionCount:        share.TransactionCount,
			SavingsContribution:     share.SavingsContribution,
			TransactionContribution: share.TransactionContribution,
			SHUSavings:              share.SHUSavings,
			SHUTransaction:          share.SHUTransaction,
			TotalSHU:                share.TotalSHU,
			Status:                  domain.SHUStatusCalculated,
			CalculatedAt:            calculatedAt,
		})
	}

	if err := s.shu.ReplaceRecords(ctx, year, records); err != nil {
		logger.ExitMethodWithError("shuService.Calculate", err, "year", year)
		return nil, err
	}

	logger.ExitMethod("shuService.Calculate", "year", year, "members", len(records))
	return records, nil
}

// Distribute finalizes the year. Records flip to distributed exactly once and
// every member gets notified of their share.
func (s *shuService) Distribute(ctx context.Context, year int32) (int64, error) {
	logger.EnterMethod("shuService.Distribute", "year", year)

	records, err := s.shu.ListRecords(ctx, year)
	if err != nil {
		return 0, err
	}

	affected, err := s.shu.MarkDistributed(ctx, year, time.Now())
	if err != nil {
		logger.ExitMethodWithError("shuService.Distribute", err, "year", year)
		return 0, err
	}
	if affected == 0 {
		if len(records) > 0 {
			return 0, ErrAlreadyDistributed
		}
		return 0, ErrNothingCalculated
	}

	for _, rec := range records {
		if rec.Status != domain.SHUStatusCalculated || rec.TotalSHU <= 0 {
			continue
		}
		s.notify(ctx, rec.MemberID, fmt.Sprintf(
			"SHU tahun %d telah dibagikan. Bagian Anda sebesar %s (simpanan %s, transaksi %s).",
			year, finance.FormatRupiah(rec.TotalSHU),
			finance.FormatRupiah(rec.SHUSavings), finance.FormatRupiah(rec.SHUTransaction)))
	}

	logger.ExitMethod("shuService.Distribute", "year", year, "records", affected)
	return affected, nil
}

func (s *shuService) Report(ctx context.Context, year int32) ([]domain.SHURecord, error) {
	return s.shu.ListRecords(ctx, year)
}

func (s *shuService) MemberHistory(ctx context.Context, memberID int32) ([]domain.SHURecord, error) {
	return s.shu.ListRecordsByMember(ctx, memberID)
}

func (s *shuService) notify(ctx context.Context, memberID int32, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, memberID, domain.NotificationSeveritySuccess, "Pembagian SHU", message, nil); err != nil {
		logger.Warn("shu notification failed", "memberID", memberID, "error", err)
	}
}
