package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/service"
)

// AdminHandler carries every admin-only route: member approval, transaction
// and loan approval, and the yearly SHU cycle.
type AdminHandler struct {
	members   service.MemberService
	approvals service.ApprovalService
	shu       service.SHUService
}

func NewAdminHandler(members service.MemberService, approvals service.ApprovalService, shu service.SHUService) *AdminHandler {
	return &AdminHandler{members: members, approvals: approvals, shu: shu}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.approvals.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	status := domain.AccountStatus(r.URL.Query().Get("status"))
	query := r.URL.Query().Get("q")

	members, err := h.members.ListMembers(r.Context(), status, query)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *AdminHandler) ApproveMember(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	member, err := h.approvals.ApproveMember(r.Context(), memberID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

type setStatusRequest struct {
	Status domain.AccountStatus `json:"status"`
	Reason string               `json:"reason"`
}

func (h *AdminHandler) SetMemberStatus(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req setStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch req.Status {
	case domain.AccountStatusActive, domain.AccountStatusSuspended:
	default:
		writeError(w, http.StatusBadRequest, "status must be active or suspended")
		return
	}

	member, err := h.approvals.SetMemberStatus(r.Context(), memberID, req.Status, req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *AdminHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	status := domain.TransactionStatus(r.URL.Query().Get("status"))
	txType := domain.TransactionType(r.URL.Query().Get("type"))
	page, pageSize := paginationParams(r)

	transactions, total, err := h.approvals.ListTransactions(r.Context(), status, txType, page, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionListResponse{
		Transactions: transactions,
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
	})
}

func (h *AdminHandler) ApproveTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	txn, err := h.approvals.ApproveTransaction(r.Context(), transactionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) RejectTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req rejectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	txn, err := h.approvals.RejectTransaction(r.Context(), transactionID, req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (h *AdminHandler) ResendWhatsApp(w http.ResponseWriter, r *http.Request) {
	transactionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	txn, err := h.approvals.ResendWhatsApp(r.Context(), transactionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (h *AdminHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	status := domain.LoanStatus(r.URL.Query().Get("status"))

	loans, err := h.approvals.ListLoans(r.Context(), status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}

func (h *AdminHandler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	loan, err := h.approvals.ApproveLoan(r.Context(), loanID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *AdminHandler) RejectLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req rejectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	loan, err := h.approvals.RejectLoan(r.Context(), loanID, req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

// shuConfigRequest uses pointers for the share fields so a share the admin
// left out of the payload is distinguishable from one set to zero.
type shuConfigRequest struct {
	Year                    int32    `json:"year"`
	GrossProfit             int64    `json:"gross_profit"`
	OperatingCost           int64    `json:"operating_cost"`
	SavingsSharePercent     *float64 `json:"savings_share_percent"`
	TransactionSharePercent *float64 `json:"transaction_share_percent"`
	SocialFundPercent       *float64 `json:"social_fund_percent"`
	ManagementPercent       *float64 `json:"management_percent"`
	ReserveRatio            *float64 `json:"reserve_ratio"`
}

func (h *AdminHandler) SaveSHUConfig(w http.ResponseWriter, r *http.Request) {
	var req shuConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Year == 0 {
		writeError(w, http.StatusBadRequest, "year is required")
		return
	}

	cfg, err := h.shu.SaveConfig(r.Context(), service.SHUConfigInput{
		Year:                    req.Year,
		GrossProfit:             req.GrossProfit,
		OperatingCost:           req.OperatingCost,
		SavingsSharePercent:     req.SavingsSharePercent,
		TransactionSharePercent: req.TransactionSharePercent,
		SocialFundPercent:       req.SocialFundPercent,
		ManagementPercent:       req.ManagementPercent,
		ReserveRatio:            req.ReserveRatio,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *AdminHandler) GetSHUConfig(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	cfg, err := h.shu.GetConfig(r.Context(), year)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *AdminHandler) CalculateSHU(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	records, err := h.shu.Calculate(r.Context(), year)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

type distributeResponse struct {
	Year    int32 `json:"year"`
	Members int64 `json:"members"`
}

func (h *AdminHandler) DistributeSHU(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	affected, err := h.shu.Distribute(r.Context(), year)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, distributeResponse{Year: year, Members: affected})
}

func (h *AdminHandler) SHUReport(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	records, err := h.shu.Report(r.Context(), year)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func yearParam(w http.ResponseWriter, r *http.Request) (int32, bool) {
	raw := mux.Vars(r)["year"]
	year, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || year < 2000 || year > 2200 {
		writeError(w, http.StatusBadRequest, "invalid year")
		return 0, false
	}
	return int32(year), true
}
