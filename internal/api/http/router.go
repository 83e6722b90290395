package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"koperasi-backend/internal/security"
	"koperasi-backend/internal/service"
	"koperasi-backend/internal/storage"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth          service.AuthService
	Members       service.MemberService
	Savings       service.SavingsService
	Loans         service.LoanService
	Approvals     service.ApprovalService
	SHU           service.SHUService
	Notifications service.NotificationService
	WhatsApp      service.WhatsAppClient
}

// NewRouter builds the full API surface under /api/v1. Member routes sit
// behind JWT auth; the /admin subtree additionally requires the admin role.
func NewRouter(svcs Services, tokens security.TokenManager, proofs storage.ProofStorage, uploads UploadPolicy, db *sql.DB) *mux.Router {
	router := mux.NewRouter()
	router.Use(Recover, LogRequests)

	router.HandleFunc("/healthz", healthHandler(db, svcs.WhatsApp)).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	authHandler := NewAuthHandler(svcs.Auth)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(Authenticate(tokens))

	authed.HandleFunc("/auth/change-password", authHandler.ChangePassword).Methods(http.MethodPost)

	memberHandler := NewMemberHandler(svcs.Members, svcs.SHU)
	authed.HandleFunc("/members/me", memberHandler.GetProfile).Methods(http.MethodGet)
	authed.HandleFunc("/members/me", memberHandler.UpdateProfile).Methods(http.MethodPut)
	authed.HandleFunc("/members/me/shu", memberHandler.SHUHistory).Methods(http.MethodGet)

	savingsHandler := NewSavingsHandler(svcs.Savings, proofs, uploads)
	authed.HandleFunc("/savings/deposit", savingsHandler.Deposit).Methods(http.MethodPost)
	authed.HandleFunc("/savings/withdraw", savingsHandler.Withdraw).Methods(http.MethodPost)
	authed.HandleFunc("/savings/balance", savingsHandler.GetBalance).Methods(http.MethodGet)
	authed.HandleFunc("/savings/activity", savingsHandler.GetMonthlyActivity).Methods(http.MethodGet)
	authed.HandleFunc("/transactions", savingsHandler.ListTransactions).Methods(http.MethodGet)
	authed.HandleFunc("/transactions/{id:[0-9]+}", savingsHandler.GetTransaction).Methods(http.MethodGet)

	loanHandler := NewLoanHandler(svcs.Loans)
	authed.HandleFunc("/loans/quote", loanHandler.Quote).Methods(http.MethodGet)
	authed.HandleFunc("/loans", loanHandler.Request).Methods(http.MethodPost)
	authed.HandleFunc("/loans", loanHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/loans/active", loanHandler.GetActive).Methods(http.MethodGet)
	authed.HandleFunc("/loans/{id:[0-9]+}", loanHandler.Get).Methods(http.MethodGet)
	authed.HandleFunc("/loans/{id:[0-9]+}/installments/{installmentId:[0-9]+}/pay", loanHandler.PayInstallment).Methods(http.MethodPost)

	notificationHandler := NewNotificationHandler(svcs.Notifications)
	authed.HandleFunc("/notifications", notificationHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/{id:[0-9]+}/read", notificationHandler.MarkAsRead).Methods(http.MethodPost)
	authed.HandleFunc("/notifications/read-all", notificationHandler.MarkAllAsRead).Methods(http.MethodPost)

	fileHandler := NewFileHandler(proofs)
	authed.HandleFunc("/files/{key}", fileHandler.Download).Methods(http.MethodGet)

	admin := authed.PathPrefix("/admin").Subrouter()
	admin.Use(RequireAdmin)

	adminHandler := NewAdminHandler(svcs.Members, svcs.Approvals, svcs.SHU)
	admin.HandleFunc("/dashboard", adminHandler.Dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/members", adminHandler.ListMembers).Methods(http.MethodGet)
	admin.HandleFunc("/members/{id:[0-9]+}/approve", adminHandler.ApproveMember).Methods(http.MethodPost)
	admin.HandleFunc("/members/{id:[0-9]+}/status", adminHandler.SetMemberStatus).Methods(http.MethodPut)
	admin.HandleFunc("/transactions", adminHandler.ListTransactions).Methods(http.MethodGet)
	admin.HandleFunc("/transactions/{id:[0-9]+}/approve", adminHandler.ApproveTransaction).Methods(http.MethodPost)
	admin.HandleFunc("/transactions/{id:[0-9]+}/reject", adminHandler.RejectTransaction).Methods(http.MethodPost)
	admin.HandleFunc("/transactions/{id:[0-9]+}/resend-whatsapp", adminHandler.ResendWhatsApp).Methods(http.MethodPost)
	admin.HandleFunc("/loans", adminHandler.ListLoans).Methods(http.MethodGet)
	admin.HandleFunc("/loans/{id:[0-9]+}/approve", adminHandler.ApproveLoan).Methods(http.MethodPost)
	admin.HandleFunc("/loans/{id:[0-9]+}/reject", adminHandler.RejectLoan).Methods(http.MethodPost)
	admin.HandleFunc("/shu/config", adminHandler.SaveSHUConfig).Methods(http.MethodPost)
	admin.HandleFunc("/shu/{year:[0-9]+}/config", adminHandler.GetSHUConfig).Methods(http.MethodGet)
	admin.HandleFunc("/shu/{year:[0-9]+}/calculate", adminHandler.CalculateSHU).Methods(http.MethodPost)
	admin.HandleFunc("/shu/{year:[0-9]+}/distribute", adminHandler.DistributeSHU).Methods(http.MethodPost)
	admin.HandleFunc("/shu/{year:[0-9]+}/report", adminHandler.SHUReport).Methods(http.MethodGet)

	return router
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	WhatsApp string `json:"whatsapp"`
}

func healthHandler(db *sql.DB, wa service.WhatsAppClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Database: "ok", WhatsApp: "ok"}
		status := http.StatusOK

		if err := db.PingContext(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
		if wa != nil {
			if err := wa.Status(ctx); err != nil {
				resp.WhatsApp = "unreachable"
			}
		} else {
			resp.WhatsApp = "disabled"
		}

		writeJSON(w, status, resp)
	}
}
