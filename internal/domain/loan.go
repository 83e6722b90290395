package domain

import "time"

type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "pending"
	LoanStatusApproved  LoanStatus = "approved"
	LoanStatusRejected  LoanStatus = "rejected"
	LoanStatusCompleted LoanStatus = "completed"
)

type InstallmentStatus string

const (
	InstallmentStatusUnpaid InstallmentStatus = "unpaid"
	InstallmentStatusPaid   InstallmentStatus = "paid"

	// InstallmentStatusOverdue is a derived display label, never stored.
	InstallmentStatusOverdue InstallmentStatus = "overdue"
)

type Loan struct {
	ID                 int32         `json:"id"`
	MemberID           int32         `json:"member_id"`
	MemberName         string        `json:"member_name"`
	Amount             int64         `json:"amount"` // principal
	Purpose            string        `json:"purpose"`
	Status             LoanStatus    `json:"status"`
	TenureMonths       int32         `json:"tenure_months"`
	InterestRate       float64       `json:"interest_rate"` // percent per month, flat
	MonthlyInstallment int64         `json:"monthly_installment"`
	TotalPayment       int64         `json:"total_payment"`
	TotalInterest      int64         `json:"total_interest"`
	RemainingAmount    int64         `json:"remaining_amount"`
	ApprovedAt         *string       `json:"approved_at,omitempty"`
	RejectedAt         *string       `json:"rejected_at,omitempty"`
	CreatedOn          string        `json:"created_on"`
	Installments       []Installment `json:"installments,omitempty"`
}

// Active reports whether the loan still binds the member: approved with an
// outstanding balance. A member may hold at most one active loan.
func (l *Loan) Active() bool {
	return l.Status == LoanStatusApproved && l.RemainingAmount > 0
}

type Installment struct {
	ID      int32             `json:"id"`
	LoanID  int32             `json:"loan_id"`
	Month   int32             `json:"month"` // 1..tenure
	Amount  int64             `json:"amount"`
	DueDate string            `json:"due_date"`
	Status  InstallmentStatus `json:"status"`
	PaidAt  *string           `json:"paid_at,omitempty"`
}

// DisplayStatus recomputes the overdue label at read time. The stored status
// stays "unpaid" until the installment is actually settled, so the label can
// never drift stale in the database.
func (i *Installment) DisplayStatus(now time.Time) InstallmentStatus {
	if i.Status == InstallmentStatusPaid {
		return InstallmentStatusPaid
	}
	due, err := time.Parse("2006-01-02", i.DueDate)
	if err == nil && due.Before(now.Truncate(24*time.Hour)) {
		return InstallmentStatusOverdue
	}
	return InstallmentStatusUnpaid
}

// NextDue returns the lowest-month installment that has not been paid, or nil
// when every installment is settled.
func (l *Loan) NextDue() *Installment {
	for idx := range l.Installments {
		if l.Installments[idx].Status != InstallmentStatusPaid {
			return &l.Installments[idx]
		}
	}
	return nil
}

// DueInstallment is an unpaid installment joined with the borrower's contact
// details, as consumed by the reminder jobs.
type DueInstallment struct {
	InstallmentID int32
	LoanID        int32
	MemberID      int32
	MemberName    string
	Phone         string
	Month         int32
	Amount        int64
	DueDate       string
}
