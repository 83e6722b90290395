package http

import (
	"net/http"
	"strconv"
	"time"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/service"
)

type LoanHandler struct {
	loans service.LoanService
}

func NewLoanHandler(loans service.LoanService) *LoanHandler {
	return &LoanHandler{loans: loans}
}

// Quote prices a loan without creating anything, so the member can preview
// the installment schedule before committing.
func (h *LoanHandler) Quote(w http.ResponseWriter, r *http.Request) {
	principal, err := strconv.ParseInt(r.URL.Query().Get("amount"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	tenure, err := strconv.ParseInt(r.URL.Query().Get("tenure_months"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenure_months")
		return
	}

	quote, err := h.loans.Quote(r.Context(), principal, int32(tenure))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

type loanRequest struct {
	Amount       int64  `json:"amount"`
	TenureMonths int32  `json:"tenure_months"`
	Purpose      string `json:"purpose"`
}

func (h *LoanHandler) Request(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}

	var req loanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	loan, err := h.loans.Request(r.Context(), memberID, req.Amount, req.TenureMonths, req.Purpose)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}

	loans, err := h.loans.ListByMember(r.Context(), memberID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}

func (h *LoanHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}

	loan, err := h.loans.GetActive(r.Context(), memberID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, withDisplayStatuses(loan))
}

func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}

	loanID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	loan, err := h.loans.Get(r.Context(), memberID, loanID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, withDisplayStatuses(loan))
}

type payInstallmentResponse struct {
	Loan    *domain.Loan        `json:"loan"`
	Payment *domain.Transaction `json:"payment"`
}

func (h *LoanHandler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}

	loanID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	installmentID, ok := pathID(w, r, "installmentId")
	if !ok {
		return
	}

	loan, payment, err := h.loans.PayInstallment(r.Context(), memberID, loanID, installmentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payInstallmentResponse{Loan: loan, Payment: payment})
}

// withDisplayStatuses relabels unpaid installments that are past due. The
// stored status is untouched; overdue exists only on the way out.
func withDisplayStatuses(loan *domain.Loan) *domain.Loan {
	now := time.Now()
	for i := range loan.Installments {
		loan.Installments[i].Status = loan.Installments[i].DisplayStatus(now)
	}
	return loan
}
