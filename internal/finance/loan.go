package finance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// LoanQuote is the outcome of pricing a flat-rate loan.
//
// The interest model is simple flat interest: the full rate applies to the
// original principal every month of the tenure, not to a reducing balance.
// Each installment is the total payable divided by the tenure rounded up, so
// the cooperative never under-collects; the final installment absorbs the
// rounding remainder so the schedule sums exactly to TotalPayment.
type LoanQuote struct {
	MonthlyInstallment int64 `json:"monthly_installment"`
	LastInstallment    int64 `json:"last_installment"`
	TotalPayment       int64 `json:"total_payment"`
	TotalInterest      int64 `json:"total_interest"`
}

// CalculateLoan prices a loan of the given principal over tenureMonths at
// monthlyRatePercent per month.
func CalculateLoan(principal int64, tenureMonths int32, monthlyRatePercent float64) (LoanQuote, error) {
	if principal <= 0 {
		return LoanQuote{}, fmt.Errorf("principal must be positive, got %d", principal)
	}
	if tenureMonths <= 0 {
		return LoanQuote{}, fmt.Errorf("tenure must be positive, got %d", tenureMonths)
	}
	if monthlyRatePercent < 0 {
		return LoanQuote{}, fmt.Errorf("interest rate must not be negative, got %v", monthlyRatePercent)
	}

	p := decimal.NewFromInt(principal)
	rate := decimal.NewFromFloat(monthlyRatePercent).Div(oneHundred)
	tenure := decimal.NewFromInt32(tenureMonths)

	totalInterest := p.Mul(rate).Mul(tenure).Round(0)
	totalPayment := p.Add(totalInterest)
	monthly := totalPayment.Div(tenure).Ceil()
	last := totalPayment.Sub(monthly.Mul(decimal.NewFromInt32(tenureMonths - 1)))

	return LoanQuote{
		MonthlyInstallment: monthly.IntPart(),
		LastInstallment:    last.IntPart(),
		TotalPayment:       totalPayment.IntPart(),
		TotalInterest:      totalInterest.IntPart(),
	}, nil
}

// InstallmentSpec is one scheduled repayment produced by BuildSchedule.
type InstallmentSpec struct {
	Month   int32
	Amount  int64
	DueDate time.Time
}

// BuildSchedule lays out the repayment schedule for an approved loan: one
// installment per tenure month, due monthly starting one month after the
// approval date. The final installment carries the quote's reconciled amount.
func BuildSchedule(quote LoanQuote, tenureMonths int32, approvedAt time.Time) []InstallmentSpec {
	schedule := make([]InstallmentSpec, 0, tenureMonths)
	for m := int32(1); m <= tenureMonths; m++ {
		amount := quote.MonthlyInstallment
		if m == tenureMonths {
			amount = quote.LastInstallment
		}
		schedule = append(schedule, InstallmentSpec{
			Month:   m,
			Amount:  amount,
			DueDate: approvedAt.AddDate(0, int(m), 0),
		})
	}
	return schedule
}
