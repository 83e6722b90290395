package finance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"koperasi-backend/internal/domain"
)

// SHUDistribution is the outcome of one year's profit-sharing calculation.
// MemberShares hold the per-member amounts; the social-fund and management
// shares stay at cooperative level and are reported here so no rupiah of the
// net profit goes unaccounted.
type SHUDistribution struct {
	NetProfit      int64
	SocialFund     int64
	ManagementFund int64
	MemberShares   []MemberShare
}

type MemberShare struct {
	MemberID                int32
	MemberName              string
	TotalSavings            int64
	TransactionCount        int32
	SavingsContribution     float64 // percent of the savings pool
	TransactionContribution float64 // percent of the transaction pool
	SHUSavings              int64
	SHUTransaction          int64
	TotalSHU                int64
}

// ValidateShares checks that the configured percentage splits are individually
// sane and jointly do not exceed the whole.
func ValidateShares(cfg domain.SHUConfig) error {
	shares := []struct {
		name  string
		value float64
	}{
		{"savings share", cfg.SavingsSharePercent},
		{"transaction share", cfg.TransactionSharePercent},
		{"social fund share", cfg.SocialFundPercent},
		{"management share", cfg.ManagementPercent},
	}
	sum := 0.0
	for _, s := range shares {
		if s.value < 0 {
			return fmt.Errorf("%s must not be negative, got %v", s.name, s.value)
		}
		sum += s.value
	}
	if sum > 100 {
		return fmt.Errorf("share percentages sum to %v, must not exceed 100", sum)
	}
	if cfg.ReserveRatio < 0 || cfg.ReserveRatio >= 1 {
		return fmt.Errorf("reserve ratio must be in [0,1), got %v", cfg.ReserveRatio)
	}
	return nil
}

// DistributeSHU computes the profit distribution for one fiscal year.
//
// Net profit is (gross - operating costs) with the reserve ratio held back
// first. Member pools (savings share, transaction share) are then divided
// proportionally to each member's contribution. Per-member amounts round
// down to whole rupiah so the distributed total can never exceed the pool.
// A membership with zero aggregate savings or transactions yields zero
// contributions rather than a division by zero.
func DistributeSHU(cfg domain.SHUConfig, members []domain.MemberContribution) (SHUDistribution, error) {
	if err := ValidateShares(cfg); err != nil {
		return SHUDistribution{}, err
	}

	gross := decimal.NewFromInt(cfg.GrossProfit)
	costs := decimal.NewFromInt(cfg.OperatingCost)
	retained := decimal.NewFromFloat(1 - cfg.ReserveRatio)
	net := gross.Sub(costs).Mul(retained).Round(0)
	if net.IsNegative() {
		return SHUDistribution{}, fmt.Errorf("operating costs %d exceed gross profit %d", cfg.OperatingCost, cfg.GrossProfit)
	}

	savingsPool := net.Mul(decimal.NewFromFloat(cfg.SavingsSharePercent)).Div(oneHundred)
	transactionPool := net.Mul(decimal.NewFromFloat(cfg.TransactionSharePercent)).Div(oneHundred)
	socialFund := net.Mul(decimal.NewFromFloat(cfg.SocialFundPercent)).Div(oneHundred).Floor()
	managementFund := net.Mul(decimal.NewFromFloat(cfg.ManagementPercent)).Div(oneHundred).Floor()

	var totalSavings, totalTransactions int64
	for _, m := range members {
		totalSavings += m.TotalSavings
		totalTransactions += int64(m.TransactionCount)
	}
	savingsTotal := decimal.NewFromInt(totalSavings)
	transactionTotal := decimal.NewFromInt(totalTransactions)

	dist := SHUDistribution{
		NetProfit:      net.IntPart(),
		SocialFund:     socialFund.IntPart(),
		ManagementFund: managementFund.IntPart(),
		MemberShares:   make([]MemberShare, 0, len(members)),
	}

	for _, m := range members {
		share := MemberShare{
			MemberID:         m.MemberID,
			MemberName:       m.MemberName,
			TotalSavings:     m.TotalSavings,
			TransactionCount: m.TransactionCount,
		}

		if totalSavings > 0 {
			frac := decimal.NewFromInt(m.TotalSavings).Div(savingsTotal)
			share.SavingsContribution, _ = frac.Mul(oneHundred).Round(2).Float64()
			share.SHUSavings = savingsPool.Mul(frac).Floor().IntPart()
		}
		if totalTransactions > 0 {
			frac := decimal.NewFromInt(int64(m.TransactionCount)).Div(transactionTotal)
			share.TransactionContribution, _ = frac.Mul(oneHundred).Round(2).Float64()
			share.SHUTransaction = transactionPool.Mul(frac).Floor().IntPart()
		}
		share.TotalSHU = share.SHUSavings + share.SHUTransaction
		dist.MemberShares = append(dist.MemberShares, share)
	}

	return dist, nil
}
