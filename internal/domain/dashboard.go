package domain

// DashboardStats summarizes the cooperative for the admin landing page.
// Every number is recomputed from the ledger on each request.
type DashboardStats struct {
	TotalMembers        int32         `json:"total_members"`
	ActiveMembers       int32         `json:"active_members"`
	PendingMembers      int32         `json:"pending_members"`
	TotalSavings        int64         `json:"total_savings"`
	OutstandingLoans    int64         `json:"outstanding_loans"`
	OverdueInstallments int32         `json:"overdue_installments"`
	PendingTransactions int32         `json:"pending_transactions"`
	PendingLoans        int32         `json:"pending_loans"`
	RecentTransactions  []Transaction `json:"recent_transactions"`
}
