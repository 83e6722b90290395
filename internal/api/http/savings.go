package http

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/logger"
	"koperasi-backend/internal/service"
	"koperasi-backend/internal/storage"
)

// UploadPolicy bounds transfer-proof uploads, sourced from the storage
// configuration.
type UploadPolicy struct {
	MaxBytes     int64
	AllowedTypes []string
}

func (p UploadPolicy) allows(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, allowed := range p.AllowedTypes {
		if mediaType == allowed {
			return true
		}
	}
	return false
}

type SavingsHandler struct {
	savings service.SavingsService
	proofs  storage.ProofStorage
	uploads UploadPolicy
}

func NewSavingsHandler(savings service.SavingsService, proofs storage.ProofStorage, uploads UploadPolicy) *SavingsHandler {
	if uploads.MaxBytes <= 0 {
		uploads.MaxBytes = 5 << 20
	}
	return &SavingsHandler{savings: savings, proofs: proofs, uploads: uploads}
}

// Deposit accepts a multipart form: category, amount, notes, an optional
// transfer-proof image under "proof" and an optional "ocr_result" JSON field.
func (h *SavingsHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxBytes)
	if err := r.ParseMultipartForm(h.uploads.MaxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "upload exceeds the size limit or the form is malformed")
		return
	}

	amount, err := strconv.ParseInt(r.FormValue("amount"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	category := domain.SavingsCategory(r.FormValue("category"))
	notes := r.FormValue("notes")

	var ocr *domain.OCRResult
	if raw := r.FormValue("ocr_result"); raw != "" {
		ocr = &domain.OCRResult{}
		if err := json.Unmarshal([]byte(raw), ocr); err != nil {
			writeError(w, http.StatusBadRequest, "invalid ocr_result")
			return
		}
	}

	proofURL := ""
	if file, header, err := r.FormFile("proof"); err == nil {
		defer file.Close()
		if !h.uploads.allows(header.Header.Get("Content-Type")) {
			writeError(w, http.StatusBadRequest, "proof file type is not allowed")
			return
		}
		_, url, err := h.proofs.Save(r.Context(), header.Filename, file)
		if err != nil {
			logger.Error("proof upload failed", "memberID", memberID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to store proof")
			return
		}
		proofURL = url
	}

	txn, err := h.savings.Deposit(r.Context(), memberID, category, amount, notes, proofURL, ocr)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

type withdrawRequest struct {
	Amount int64  `json:"amount"`
	Notes  string `json:"notes"`
}

func (h *SavingsHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}

	var req withdrawRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	txn, err := h.savings.Withdraw(r.Context(), memberID, req.Amount, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

type balanceResponse struct {
	Balance   int64                    `json:"balance"`
	Breakdown *domain.SavingsBreakdown `json:"breakdown"`
}

func (h *SavingsHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}

	balance, err := h.savings.GetBalance(r.Context(), memberID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	breakdown, err := h.savings.GetBreakdown(r.Context(), memberID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Balance: balance, Breakdown: breakdown})
}

func (h *SavingsHandler) GetMonthlyActivity(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}

	months, _ := strconv.Atoi(r.URL.Query().Get("months"))
	activity, err := h.savings.GetMonthlyActivity(r.Context(), memberID, months)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

type transactionListResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
	Total        int32                `json:"total"`
	Page         int32                `json:"page"`
	PageSize     int32                `json:"page_size"`
}

func (h *SavingsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}

	page, pageSize := paginationParams(r)
	transactions, total, err := h.savings.ListTransactions(r.Context(), memberID, page, pageSize)
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

func (h *SavingsHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}

	transactionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	txn, err := h.savings.GetTransaction(r.Context(), memberID, transactionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func paginationParams(r *http.Request) (page, pageSize int32) {
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = int32(v)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil {
		pageSize = int32(v)
	}
	return page, pageSize
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int32, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return int32(id), true
}
