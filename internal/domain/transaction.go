package domain

type TransactionType string

const (
	TransactionTypeDeposit            TransactionType = "deposit"
	TransactionTypeWithdrawal         TransactionType = "withdrawal"
	TransactionTypeInstallmentPayment TransactionType = "installment-payment"
)

type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusApproved TransactionStatus = "approved"
	TransactionStatusRejected TransactionStatus = "rejected"
)

type SavingsCategory string

const (
	SavingsCategoryPrincipal SavingsCategory = "principal" // simpanan pokok
	SavingsCategoryMandatory SavingsCategory = "mandatory" // simpanan wajib
	SavingsCategoryVoluntary SavingsCategory = "voluntary" // simpanan sukarela
)

// OCRResult is informational metadata extracted from a transfer proof.
// Approval decisions never consult it.
type OCRResult struct {
	SenderName      string `json:"sender_name"`
	Amount          int64  `json:"amount"`
	Date            string `json:"date"`
	ReferenceNumber string `json:"reference_number"`
	Confidence      int    `json:"confidence"`
}

type Transaction struct {
	ID                int32             `json:"id"`
	TransactionNumber string            `json:"transaction_number"`
	MemberID          int32             `json:"member_id"`
	MemberName        string            `json:"member_name"`
	Type              TransactionType   `json:"type"`
	SavingsCategory   *SavingsCategory  `json:"savings_category,omitempty"`
	Amount            int64             `json:"amount"`
	Status            TransactionStatus `json:"status"`
	Date              string            `json:"date"`
	Notes             string            `json:"notes,omitempty"`
	ProofURL          string            `json:"proof_url,omitempty"`
	OCRResult         *OCRResult        `json:"ocr_result,omitempty"`
	LoanID            *int32            `json:"loan_id,omitempty"`
	WhatsAppSent      bool              `json:"whatsapp_sent"`
	WhatsAppSentAt    *string           `json:"whatsapp_sent_at,omitempty"`
	CreatedOn         string            `json:"created_on"`
}

// SavingsBreakdown is a derived per-member view over approved transactions.
// Voluntary is net of all approved withdrawals, clamped at zero; principal
// and mandatory are locked and never reduced by withdrawals.
type SavingsBreakdown struct {
	MemberID  int32 `json:"member_id"`
	Principal int64 `json:"principal"`
	Mandatory int64 `json:"mandatory"`
	Voluntary int64 `json:"voluntary"`
	Total     int64 `json:"total"`
}

// MonthlyActivity is one month of deposit/withdrawal sums for a member.
type MonthlyActivity struct {
	Month       string `json:"month"` // yyyy-mm
	Deposits    int64  `json:"deposits"`
	Withdrawals int64  `json:"withdrawals"`
}
