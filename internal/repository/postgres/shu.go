package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/logger"
	"koperasi-backend/internal/repository"
)

type shuRepository struct {
	db *sql.DB
}

func NewSHURepository(db *sql.DB) repository.SHURepository {
	return &shuRepository{db: db}
}

func (r *shuRepository) UpsertConfig(ctx context.Context, cfg *domain.SHUConfig) error {
	query := `INSERT INTO shu_config (year, gross_profit, operating_cost, savings_share_percent, transaction_share_percent, social_fund_percent, management_percent, reserve_ratio, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          ON CONFLICT (year) DO UPDATE SET
	            gross_profit = EXCLUDED.gross_profit,
	            operating_cost = EXCLUDED.operating_cost,
	            savings_share_percent = EXCLUDED.savings_share_percent,
	            transaction_share_percent = EXCLUDED.transaction_share_percent,
	            social_fund_percent = EXCLUDED.social_fund_percent,
	            management_percent = EXCLUDED.management_percent,
	            reserve_ratio = EXCLUDED.reserve_ratio,
	            updated_on = EXCLUDED.updated_on`
	cfg.UpdatedOn = time.Now().Format("2006-01-02")
	_, err := r.db.ExecContext(ctx, query,
		cfg.Year, cfg.GrossProfit, cfg.OperatingCost, cfg.SavingsSharePercent,
		cfg.TransactionSharePercent, cfg.SocialFundPercent, cfg.ManagementPercent,
		cfg.ReserveRatio, cfg.UpdatedOn)
	return err
}

func (r *shuRepository) GetConfig(ctx context.Context, year int32) (*domain.SHUConfig, error) {
	query := `SELECT year, gross_profit, operating_cost, savings_share_percent, transaction_share_percent, social_fund_percent, management_percent, reserve_ratio, updated_on
	          FROM shu_config WHERE year = $1`
	cfg := &domain.SHUConfig{}
	var updatedOn time.Time
	err := r.db.QueryRowContext(ctx, query, year).Scan(
		&cfg.Year, &cfg.GrossProfit, &cfg.OperatingCost, &cfg.SavingsSharePercent,
		&cfg.TransactionSharePercent, &cfg.SocialFundPercent, &cfg.ManagementPercent,
		&cfg.ReserveRatio, &updatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	cfg.UpdatedOn = updatedOn.Format("2006-01-02")
	return cfg, nil
}

func (r *shuRepository) ReplaceRecords(ctx context.Context, year int32, records []domain.SHURecord) error {
	logger.EnterMethod("shuRepository.ReplaceRecords", "year", year, "count", len(records))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Only calculated rows may be recomputed; distributed rows are immutable.
	if _, err := tx.ExecContext(ctx, `DELETE FROM shu_records WHERE year = $1 AND status = 'calculated'`, year); err != nil {
		logger.ExitMethodWithError("shuRepository.ReplaceRecords", err, "year", year)
		return err
	}

	query := `INSERT INTO shu_records (year, member_id, total_savings, transaction_count, savings_contribution, transaction_contribution, shu_savings, shu_transaction, total_shu, status, calculated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	for i := range records {
		rec := &records[i]
		if err := tx.QueryRowContext(ctx, query,
			year, rec.MemberID, rec.TotalSavings, rec.TransactionCount,
			rec.SavingsContribution, rec.TransactionContribution,
			rec.SHUSavings, rec.SHUTransaction, rec.TotalSHU,
			rec.Status, rec.CalculatedAt,
		).Scan(&rec.ID); err != nil {
			logger.ExitMethodWithError("shuRepository.ReplaceRecords", err, "year", year)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.ExitMethod("shuRepository.ReplaceRecords", "year", year, "count", len(records))
	return nil
}

const shuRecordColumns = `r.id, r.year, r.member_id, m.name, r.total_savings, r.transaction_count, r.savings_contribution, r.transaction_contribution, r.shu_savings, r.shu_transaction, r.total_shu, r.status, r.calculated_at, r.distributed_at`

func (r *shuRepository) ListRecords(ctx context.Context, year int32) ([]domain.SHURecord, error) {
	query := `SELECT ` + shuRecordColumns + ` FROM shu_records r JOIN members m ON r.member_id = m.id WHERE r.year = $1 ORDER BY r.total_shu DESC, r.member_id`
	rows, err := r.db.QueryContext(ctx, query, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSHURecords(rows)
}

func (r *shuRepository) ListRecordsByMember(ctx context.Context, memberID int32) ([]domain.SHURecord, error) {
	query := `SELECT ` + shuRecordColumns + ` FROM shu_records r JOIN members m ON r.member_id = m.id WHERE r.member_id = $1 ORDER BY r.year DESC`
	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSHURecords(rows)
}

func (r *shuRepository) CountByStatus(ctx context.Context, year int32, status domain.SHUStatus) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM shu_records WHERE year = $1 AND status = $2`, year, status).Scan(&count)
	return count, err
}

func (r *shuRepository) MarkDistributed(ctx context.Context, year int32, at time.Time) (int64, error) {
	query := `UPDATE shu_records SET status = 'distributed', distributed_at = $1 WHERE year = $2 AND status = 'calculated'`
	res, err := r.db.ExecContext(ctx, query, at, year)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func collectSHURecords(rows *sql.Rows) ([]domain.SHURecord, error) {
	var records []domain.SHURecord
	for rows.Next() {
		var rec domain.SHURecord
		var calculatedAt time.Time
		var distributedAt sql.NullTime
		if err := rows.Scan(
			&rec.ID, &rec.Year, &rec.MemberID, &rec.MemberName, &rec.TotalSavings, &rec.TransactionCount,
			&rec.SavingsContribution, &rec.TransactionContribution, &rec.SHUSavings, &rec.SHUTransaction,
			&rec.TotalSHU, &rec.Status, &calculatedAt, &distributedAt,
		); err != nil {
			return nil, err
		}
		rec.CalculatedAt = calculatedAt.Format("2006-01-02")
		if distributedAt.Valid {
			s := distributedAt.Time.Format("2006-01-02")
			rec.DistributedAt = &s
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
