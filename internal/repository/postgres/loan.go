package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/logger"
	"koperasi-backend/internal/repository"
)

type loanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) repository.LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `l.id, l.member_id, m.name, l.amount, COALESCE(l.purpose, ''), l.status, l.tenure_months, l.interest_rate, l.monthly_installment, l.total_payment, l.total_interest, l.remaining_amount, l.approved_at, l.rejected_at, l.created_on`

func (r *loanRepository) Create(ctx context.Context, l *domain.Loan) error {
	query := `INSERT INTO loans (member_id, amount, purpose, status, tenure_months, interest_rate, monthly_installment, total_payment, total_interest, remaining_amount, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	l.CreatedOn = time.Now().Format("2006-01-02")
	return r.db.QueryRowContext(ctx, query,
		l.MemberID, l.Amount, l.Purpose, l.Status, l.TenureMonths, l.InterestRate,
		l.MonthlyInstallment, l.TotalPayment, l.TotalInterest, l.RemainingAmount, l.CreatedOn,
	).Scan(&l.ID)
}

func (r *loanRepository) GetByID(ctx context.Context, id int32) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans l JOIN members m ON l.member_id = m.id WHERE l.id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	loan, err := scanLoan(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	installments, err := r.ListInstallments(ctx, loan.ID)
	if err != nil {
		return nil, err
	}
	loan.Installments = installments
	return loan, nil
}

func (r *loanRepository) Update(ctx context.Context, l *domain.Loan) error {
	query := `UPDATE loans SET status=$1, remaining_amount=$2, approved_at=$3, rejected_at=$4 WHERE id=$5`
	_, err := r.db.ExecContext(ctx, query, l.Status, l.RemainingAmount, l.ApprovedAt, l.RejectedAt, l.ID)
	return err
}

func (r *loanRepository) ListByMember(ctx context.Context, memberID int32) ([]domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans l JOIN members m ON l.member_id = m.id WHERE l.member_id = $1 ORDER BY l.created_on DESC, l.id DESC`
	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLoans(rows)
}

func (r *loanRepository) List(ctx context.Context, status domain.LoanStatus) ([]domain.Loan, error) {
	logger.EnterMethod("loanRepository.List", "status", status)

	query := `SELECT ` + loanColumns + ` FROM loans l JOIN members m ON l.member_id = m.id WHERE ($1 = '' OR l.status = $1) ORDER BY l.created_on DESC, l.id DESC`
	logger.DatabaseCall("SELECT", "loans JOIN members", "status", status)

	rows, err := r.db.QueryContext(ctx, query, string(status))
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		logger.ExitMethodWithError("loanRepository.List", err)
		return nil, err
	}
	defer rows.Close()

	loans, err := collectLoans(rows)
	if err != nil {
		logger.ExitMethodWithError("loanRepository.List", err)
		return nil, err
	}
	logger.DatabaseResult("SELECT", int64(len(loans)), nil)
	logger.ExitMethod("loanRepository.List", "count", len(loans))
	return loans, nil
}

// GetActiveByMember returns the member's approved loan with an outstanding
// balance, or ErrNotFound when the member has none.
func (r *loanRepository) GetActiveByMember(ctx context.Context, memberID int32) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans l JOIN members m ON l.member_id = m.id
	          WHERE l.member_id = $1 AND l.status = 'approved' AND l.remaining_amount > 0
	          ORDER BY l.id LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, memberID)
	loan, err := scanLoan(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	installments, err := r.ListInstallments(ctx, loan.ID)
	if err != nil {
		return nil, err
	}
	loan.Installments = installments
	return loan, nil
}

func (r *loanRepository) CreateInstallments(ctx context.Context, loanID int32, installments []domain.Installment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO installments (loan_id, month, amount, due_date, status) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	for i := range installments {
		inst := &installments[i]
		inst.LoanID = loanID
		if inst.Status == "" {
			inst.Status = domain.InstallmentStatusUnpaid
		}
		if err := tx.QueryRowContext(ctx, query, loanID, inst.Month, inst.Amount, inst.DueDate, inst.Status).Scan(&inst.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *loanRepository) ListInstallments(ctx context.Context, loanID int32) ([]domain.Installment, error) {
	query := `SELECT id, loan_id, month, amount, due_date, status, paid_at FROM installments WHERE loan_id = $1 ORDER BY month`
	rows, err := r.db.QueryContext(ctx, query, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var installments []domain.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows.Scan)
		if err != nil {
			return nil, err
		}
		installments = append(installments, *inst)
	}
	return installments, rows.Err()
}

func (r *loanRepository) GetInstallment(ctx context.Context, id int32) (*domain.Installment, error) {
	query := `SELECT id, loan_id, month, amount, due_date, status, paid_at FROM installments WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	inst, err := scanInstallment(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return inst, err
}

func (r *loanRepository) SettleInstallment(ctx context.Context, loanID, installmentID int32, paidAt time.Time, payment, withdrawal *domain.Transaction) (*domain.Loan, error) {
	logger.EnterMethod("loanRepository.SettleInstallment", "loanID", loanID, "installmentID", installmentID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Flip the installment, guarding against double settlement.
	res, err := tx.ExecContext(ctx,
		`UPDATE installments SET status = 'paid', paid_at = $1 WHERE id = $2 AND loan_id = $3 AND status != 'paid'`,
		paidAt, installmentID, loanID)
	if err != nil {
		logger.ExitMethodWithError("loanRepository.SettleInstallment", err)
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("installment %d of loan %d: %w", installmentID, loanID, repository.ErrNotFound)
	}

	// Draw down the outstanding balance, never below zero.
	var remaining int64
	err = tx.QueryRowContext(ctx,
		`UPDATE loans SET remaining_amount = GREATEST(remaining_amount - $1, 0) WHERE id = $2 RETURNING remaining_amount`,
		payment.Amount, loanID).Scan(&remaining)
	if err != nil {
		logger.ExitMethodWithError("loanRepository.SettleInstallment", err)
		return nil, err
	}
	if remaining == 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE loans SET status = 'completed' WHERE id = $1`, loanID); err != nil {
			return nil, err
		}
	}

	// Record the payment in the transaction ledger.
	now := time.Now()
	if payment.Date == "" {
		payment.Date = now.Format("2006-01-02")
	}
	payment.CreatedOn = now.Format("2006-01-02")
	err = tx.QueryRowContext(ctx,
		`INSERT INTO transactions (transaction_number, member_id, type, amount, status, date, notes, loan_id, whatsapp_sent, created_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		payment.TransactionNumber, payment.MemberID, payment.Type, payment.Amount, payment.Status,
		payment.Date, payment.Notes, loanID, payment.WhatsAppSent, payment.CreatedOn,
	).Scan(&payment.ID)
	if err != nil {
		logger.ExitMethodWithError("loanRepository.SettleInstallment", err)
		return nil, err
	}

	// The installment is funded from voluntary savings, so a matching approved
	// withdrawal keeps the savings ledger in balance.
	if withdrawal.Date == "" {
		withdrawal.Date = now.Format("2006-01-02")
	}
	withdrawal.CreatedOn = now.Format("2006-01-02")
	err = tx.QueryRowContext(ctx,
		`INSERT INTO transactions (transaction_number, member_id, type, savings_category, amount, status, date, notes, loan_id, whatsapp_sent, created_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
		withdrawal.TransactionNumber, withdrawal.MemberID, withdrawal.Type, withdrawal.SavingsCategory,
		withdrawal.Amount, withdrawal.Status, withdrawal.Date, withdrawal.Notes, loanID,
		withdrawal.WhatsAppSent, withdrawal.CreatedOn,
	).Scan(&withdrawal.ID)
	if err != nil {
		logger.ExitMethodWithError("loanRepository.SettleInstallment", err)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	logger.ExitMethod("loanRepository.SettleInstallment", "loanID", loanID, "remaining", remaining)
	return r.GetByID(ctx, loanID)
}

func (r *loanRepository) ListDueInstallments(ctx context.Context, from, to time.Time) ([]domain.DueInstallment, error) {
	query := `SELECT i.id, i.loan_id, l.member_id, m.name, m.phone, i.month, i.amount, i.due_date
	          FROM installments i
	          JOIN loans l ON i.loan_id = l.id
	          JOIN members m ON l.member_id = m.id
	          WHERE i.status = 'unpaid' AND l.status = 'approved' AND i.due_date BETWEEN $1 AND $2
	          ORDER BY i.due_date, i.id`
	rows, err := r.db.QueryContext(ctx, query, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []domain.DueInstallment
	for rows.Next() {
		var d domain.DueInstallment
		var dueDate time.Time
		if err := rows.Scan(&d.InstallmentID, &d.LoanID, &d.MemberID, &d.MemberName, &d.Phone, &d.Month, &d.Amount, &dueDate); err != nil {
			return nil, err
		}
		d.DueDate = dueDate.Format("2006-01-02")
		due = append(due, d)
	}
	return due, rows.Err()
}

func (r *loanRepository) OutstandingTotal(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(SUM(remaining_amount), 0) FROM loans WHERE status = 'approved'`
	var total int64
	err := r.db.QueryRowContext(ctx, query).Scan(&total)
	return total, err
}

func (r *loanRepository) CountByStatus(ctx context.Context, status domain.LoanStatus) (int32, error) {
	query := `SELECT count(*) FROM loans WHERE ($1 = '' OR status = $1)`
	var count int32
	err := r.db.QueryRowContext(ctx, query, string(status)).Scan(&count)
	return count, err
}

func (r *loanRepository) CountOverdueInstallments(ctx context.Context, asOf time.Time) (int32, error) {
	query := `SELECT count(*) FROM installments i JOIN loans l ON i.loan_id = l.id
	          WHERE i.status = 'unpaid' AND l.status = 'approved' AND i.due_date < $1`
	var count int32
	err := r.db.QueryRowContext(ctx, query, asOf.Format("2006-01-02")).Scan(&count)
	return count, err
}

func scanLoan(scan func(dest ...any) error) (*domain.Loan, error) {
	l := &domain.Loan{}
	var approvedAt, rejectedAt sql.NullTime
	var createdOn time.Time
	err := scan(
		&l.ID, &l.MemberID, &l.MemberName, &l.Amount, &l.Purpose, &l.Status, &l.TenureMonths,
		&l.InterestRate, &l.MonthlyInstallment, &l.TotalPayment, &l.TotalInterest,
		&l.RemainingAmount, &approvedAt, &rejectedAt, &createdOn,
	)
	if err != nil {
		return nil, err
	}
	if approvedAt.Valid {
		s := approvedAt.Time.Format("2006-01-02")
		l.ApprovedAt = &s
	}
	if rejectedAt.Valid {
		s := rejectedAt.Time.Format("2006-01-02")
		l.RejectedAt = &s
	}
	l.CreatedOn = createdOn.Format("2006-01-02")
	return l, nil
}

func scanInstallment(scan func(dest ...any) error) (*domain.Installment, error) {
	inst := &domain.Installment{}
	var dueDate time.Time
	var paidAt sql.NullTime
	err := scan(&inst.ID, &inst.LoanID, &inst.Month, &inst.Amount, &dueDate, &inst.Status, &paidAt)
	if err != nil {
		return nil, err
	}
	inst.DueDate = dueDate.Format("2006-01-02")
	if paidAt.Valid {
		s := paidAt.Time.Format(time.RFC3339)
		inst.PaidAt = &s
	}
	return inst, nil
}

func collectLoans(rows *sql.Rows) ([]domain.Loan, error) {
	var loans []domain.Loan
	for rows.Next() {
		loan, err := scanLoan(rows.Scan)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *loan)
	}
	return loans, rows.Err()
}
