package domain

type SHUStatus string

const (
	SHUStatusCalculated  SHUStatus = "calculated"
	SHUStatusDistributed SHUStatus = "distributed"
)

// SHUConfig holds the admin-configured parameters for one fiscal year's
// profit sharing (Sisa Hasil Usaha).
type SHUConfig struct {
	Year                    int32   `json:"year"`
	GrossProfit             int64   `json:"gross_profit"`
	OperatingCost           int64   `json:"operating_cost"`
	SavingsSharePercent     float64 `json:"savings_share_percent"`
	TransactionSharePercent float64 `json:"transaction_share_percent"`
	SocialFundPercent       float64 `json:"social_fund_percent"`
	ManagementPercent       float64 `json:"management_percent"`
	ReserveRatio            float64 `json:"reserve_ratio"`
	UpdatedOn               string  `json:"updated_on"`
}

// SHURecord is one member's share of a year's distribution. Immutable once
// distributed.
type SHURecord struct {
	ID                       int32     `json:"id"`
	Year                     int32     `json:"year"`
	MemberID                 int32     `json:"member_id"`
	MemberName               string    `json:"member_name"`
	TotalSavings             int64     `json:"total_savings"`
	TransactionCount         int32     `json:"transaction_count"`
	SavingsContribution      float64   `json:"savings_contribution"`      // percent
	TransactionContribution  float64   `json:"transaction_contribution"`  // percent
	SHUSavings               int64     `json:"shu_savings"`
	SHUTransaction           int64     `json:"shu_transaction"`
	TotalSHU                 int64     `json:"total_shu"`
	Status                   SHUStatus `json:"status"`
	CalculatedAt             string    `json:"calculated_at"`
	DistributedAt            *string   `json:"distributed_at,omitempty"`
}

// MemberContribution is the per-member yearly aggregate the SHU calculator
// consumes: approved deposits (no withdrawal offset) and approved transaction
// count within the fiscal year.
type MemberContribution struct {
	MemberID         int32
	MemberName       string
	TotalSavings     int64
	TransactionCount int32
}
