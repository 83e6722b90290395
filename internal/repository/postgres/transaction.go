package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/logger"
	"koperasi-backend/internal/repository"
)

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `t.id, t.transaction_number, t.member_id, m.name, t.type, t.savings_category, t.amount, t.status, t.date, COALESCE(t.notes, ''), COALESCE(t.proof_url, ''), t.ocr_result, t.loan_id, t.whatsapp_sent, t.whatsapp_sent_at, t.created_on`

func (r *transactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	query := `INSERT INTO transactions (transaction_number, member_id, type, savings_category, amount, status, date, notes, proof_url, ocr_result, loan_id, whatsapp_sent, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	now := time.Now()
	if txn.Date == "" {
		txn.Date = now.Format("2006-01-02")
	}
	txn.CreatedOn = now.Format("2006-01-02")

	var ocrJSON interface{}
	if txn.OCRResult != nil {
		data, err := json.Marshal(txn.OCRResult)
		if err != nil {
			return err
		}
		ocrJSON = data
	}
	var category interface{}
	if txn.SavingsCategory != nil {
		category = *txn.SavingsCategory
	}

	return r.db.QueryRowContext(ctx, query,
		txn.TransactionNumber, txn.MemberID, txn.Type, category, txn.Amount, txn.Status,
		txn.Date, txn.Notes, txn.ProofURL, ocrJSON, txn.LoanID, txn.WhatsAppSent, txn.CreatedOn,
	).Scan(&txn.ID)
}

func (r *transactionRepository) GetByID(ctx context.Context, id int32) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions t JOIN members m ON t.member_id = m.id WHERE t.id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	txn, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return txn, err
}

func (r *transactionRepository) SetStatus(ctx context.Context, id int32, status domain.TransactionStatus, notes string) error {
	query := `UPDATE transactions SET status=$1, notes=CASE WHEN $2 = '' THEN notes ELSE $2 END WHERE id=$3`
	res, err := r.db.ExecContext(ctx, query, status, notes, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *transactionRepository) ListByMember(ctx context.Context, memberID int32, page, pageSize int32) ([]domain.Transaction, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + transactionColumns + ` FROM transactions t JOIN members m ON t.member_id = m.id
	          WHERE t.member_id = $1 ORDER BY t.created_on DESC, t.id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, memberID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var count int32
	countQuery := `SELECT count(*) FROM transactions WHERE member_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, memberID).Scan(&count); err != nil {
		return nil, 0, err
	}

	txs, err := collectTransactions(rows)
	return txs, count, err
}

func (r *transactionRepository) List(ctx context.Context, status domain.TransactionStatus, txType domain.TransactionType, page, pageSize int32) ([]domain.Transaction, int32, error) {
	logger.EnterMethod("transactionRepository.List", "status", status, "type", txType)

	offset := (page - 1) * pageSize
	query := `SELECT ` + transactionColumns + ` FROM transactions t JOIN members m ON t.member_id = m.id
	          WHERE ($1 = '' OR t.status = $1) AND ($2 = '' OR t.type = $2)
	          ORDER BY t.created_on DESC, t.id DESC LIMIT $3 OFFSET $4`
	logger.DatabaseCall("SELECT", "transactions JOIN members", "status", status, "type", txType)

	rows, err := r.db.QueryContext(ctx, query, string(status), string(txType), pageSize, offset)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		logger.ExitMethodWithError("transactionRepository.List", err)
		return nil, 0, err
	}
	defer rows.Close()

	var count int32
	countQuery := `SELECT count(*) FROM transactions WHERE ($1 = '' OR status = $1) AND ($2 = '' OR type = $2)`
	if err := r.db.QueryRowContext(ctx, countQuery, string(status), string(txType)).Scan(&count); err != nil {
		logger.ExitMethodWithError("transactionRepository.List", err)
		return nil, 0, err
	}

	txs, err := collectTransactions(rows)
	if err != nil {
		logger.ExitMethodWithError("transactionRepository.List", err)
		return nil, 0, err
	}
	logger.DatabaseResult("SELECT", int64(len(txs)), nil)
	logger.ExitMethod("transactionRepository.List", "count", len(txs))
	return txs, count, nil
}

// Balance is the member's withdrawable view of the ledger: approved deposits
// minus approved withdrawals. Pending and rejected rows never count.
func (r *transactionRepository) Balance(ctx context.Context, memberID int32) (int64, error) {
	query := `SELECT COALESCE(SUM(CASE WHEN type = 'deposit' THEN amount WHEN type = 'withdrawal' THEN -amount ELSE 0 END), 0)
	          FROM transactions WHERE member_id = $1 AND status = 'approved'`
	var balance int64
	err := r.db.QueryRowContext(ctx, query, memberID).Scan(&balance)
	return balance, err
}

// Breakdown splits the member's approved savings by category. Withdrawals only
// ever draw down the voluntary bucket; principal and mandatory stay locked.
func (r *transactionRepository) Breakdown(ctx context.Context, memberID int32) (*domain.SavingsBreakdown, error) {
	query := `SELECT
	            COALESCE(SUM(amount) FILTER (WHERE type = 'deposit' AND savings_category = 'principal'), 0),
	            COALESCE(SUM(amount) FILTER (WHERE type = 'deposit' AND savings_category = 'mandatory'), 0),
	            COALESCE(SUM(amount) FILTER (WHERE type = 'deposit' AND savings_category = 'voluntary'), 0),
	            COALESCE(SUM(amount) FILTER (WHERE type = 'withdrawal'), 0)
	          FROM transactions WHERE member_id = $1 AND status = 'approved'`

	b := &domain.SavingsBreakdown{MemberID: memberID}
	var voluntaryDeposits, withdrawals int64
	err := r.db.QueryRowContext(ctx, query, memberID).Scan(&b.Principal, &b.Mandatory, &voluntaryDeposits, &withdrawals)
	if err != nil {
		return nil, err
	}
	b.Voluntary = voluntaryDeposits - withdrawals
	if b.Voluntary < 0 {
		b.Voluntary = 0
	}
	b.Total = b.Principal + b.Mandatory + b.Voluntary
	return b, nil
}

func (r *transactionRepository) MonthlyActivity(ctx context.Context, memberID int32, months int) ([]domain.MonthlyActivity, error) {
	query := `SELECT to_char(date, 'YYYY-MM') AS month,
	            COALESCE(SUM(amount) FILTER (WHERE type = 'deposit'), 0),
	            COALESCE(SUM(amount) FILTER (WHERE type = 'withdrawal'), 0)
	          FROM transactions
	          WHERE member_id = $1 AND status = 'approved' AND date >= date_trunc('month', CURRENT_DATE) - ($2 - 1) * INTERVAL '1 month'
	          GROUP BY month ORDER BY month`
	rows, err := r.db.QueryContext(ctx, query, memberID, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activity []domain.MonthlyActivity
	for rows.Next() {
		var a domain.MonthlyActivity
		if err := rows.Scan(&a.Month, &a.Deposits, &a.Withdrawals); err != nil {
			return nil, err
		}
		activity = append(activity, a)
	}
	return activity, rows.Err()
}

func (r *transactionRepository) HasPrincipalDeposit(ctx context.Context, memberID int32) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM transactions WHERE member_id = $1 AND type = 'deposit' AND savings_category = 'principal' AND status != 'rejected')`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, memberID).Scan(&exists)
	return exists, err
}

func (r *transactionRepository) MemberContributions(ctx context.Context, year int32) ([]domain.MemberContribution, error) {
	logger.EnterMethod("transactionRepository.MemberContributions", "year", year)

	query := `SELECT m.id, m.name,
	            COALESCE(SUM(t.amount) FILTER (WHERE t.type = 'deposit'), 0),
	            COUNT(t.id)
	          FROM members m
	          LEFT JOIN transactions t ON t.member_id = m.id
	            AND t.status = 'approved'
	            AND EXTRACT(YEAR FROM t.date) = $1
	          WHERE m.account_status = 'active'
	          GROUP BY m.id, m.name ORDER BY m.id`
	logger.DatabaseCall("SELECT", "members LEFT JOIN transactions", "year", year)

	rows, err := r.db.QueryContext(ctx, query, year)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err, "year", year)
		logger.ExitMethodWithError("transactionRepository.MemberContributions", err, "year", year)
		return nil, err
	}
	defer rows.Close()

	var contributions []domain.MemberContribution
	for rows.Next() {
		var c domain.MemberContribution
		if err := rows.Scan(&c.MemberID, &c.MemberName, &c.TotalSavings, &c.TransactionCount); err != nil {
			logger.ExitMethodWithError("transactionRepository.MemberContributions", err, "year", year)
			return nil, err
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.DatabaseResult("SELECT", int64(len(contributions)), nil, "year", year)
	logger.ExitMethod("transactionRepository.MemberContributions", "year", year, "count", len(contributions))
	return contributions, nil
}

func (r *transactionRepository) TotalSavings(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(SUM(CASE WHEN type = 'deposit' THEN amount WHEN type = 'withdrawal' THEN -amount ELSE 0 END), 0)
	          FROM transactions WHERE status = 'approved'`
	var total int64
	err := r.db.QueryRowContext(ctx, query).Scan(&total)
	return total, err
}

func (r *transactionRepository) CountByStatus(ctx context.Context, status domain.TransactionStatus) (int32, error) {
	query := `SELECT count(*) FROM transactions WHERE ($1 = '' OR status = $1)`
	var count int32
	err := r.db.QueryRowContext(ctx, query, string(status)).Scan(&count)
	return count, err
}

func (r *transactionRepository) MarkWhatsAppSent(ctx context.Context, id int32, at time.Time) error {
	query := `UPDATE transactions SET whatsapp_sent = true, whatsapp_sent_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, at, id)
	return err
}

func scanTransaction(scan func(dest ...any) error) (*domain.Transaction, error) {
	txn := &domain.Transaction{}
	var category sql.NullString
	var ocrJSON []byte
	var loanID sql.NullInt32
	var sentAt sql.NullTime
	var date, createdOn time.Time

	err := scan(
		&txn.ID, &txn.TransactionNumber, &txn.MemberID, &txn.MemberName, &txn.Type, &category,
		&txn.Amount, &txn.Status, &date, &txn.Notes, &txn.ProofURL, &ocrJSON, &loanID,
		&txn.WhatsAppSent, &sentAt, &createdOn,
	)
	if err != nil {
		return nil, err
	}
	if category.Valid {
		c := domain.SavingsCategory(category.String)
		txn.SavingsCategory = &c
	}
	if len(ocrJSON) > 0 {
		var ocr domain.OCRResult
		if err := json.Unmarshal(ocrJSON, &ocr); err != nil {
			return nil, err
		}
		txn.OCRResult = &ocr
	}
	if loanID.Valid {
		id := loanID.Int32
		txn.LoanID = &id
	}
	if sentAt.Valid {
		s := sentAt.Time.Format(time.RFC3339)
		txn.WhatsAppSentAt = &s
	}
	txn.Date = date.Format("2006-01-02")
	txn.CreatedOn = createdOn.Format("2006-01-02")
	return txn, nil
}

func collectTransactions(rows *sql.Rows) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *txn)
	}
	return txs, rows.Err()
}
