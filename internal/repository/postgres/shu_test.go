package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/repository"
	"koperasi-backend/internal/repository/postgres"
)

func TestSHURepository_Config(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewSHURepository(db)
	ctx := context.Background()

	t.Run("Upsert", func(t *testing.T) {
		cfg := &domain.SHUConfig{
			Year:                    2024,
			GrossProfit:             100_000_000,
			OperatingCost:           20_000_000,
			SavingsSharePercent:     40,
			TransactionSharePercent: 30,
			SocialFundPercent:       20,
			ManagementPercent:       10,
			ReserveRatio:            0.20,
		}

		mock.ExpectExec("INSERT INTO shu_config").
			WithArgs(cfg.Year, cfg.GrossProfit, cfg.OperatingCost, cfg.SavingsSharePercent,
				cfg.TransactionSharePercent, cfg.SocialFundPercent, cfg.ManagementPercent,
				cfg.ReserveRatio, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpsertConfig(ctx, cfg)
		assert.NoError(t, err)
		assert.NotEmpty(t, cfg.UpdatedOn)
	})

	t.Run("GetMissingYear", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM shu_config").
			WithArgs(int32(2019)).
			WillReturnRows(sqlmock.NewRows([]string{"year"}))

		_, err := repo.GetConfig(ctx, 2019)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestSHURepository_ReplaceRecords(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewSHURepository(db)
	ctx := context.Background()

	t.Run("DropsCalculatedThenInserts", func(t *testing.T) {
		records := []domain.SHURecord{
			{
				Year: 2024, MemberID: 1, TotalSavings: 2_000_000, TransactionCount: 8,
				SavingsContribution: 100, TransactionContribution: 100,
				SHUSavings: 25_600_000, SHUTransaction: 19_200_000, TotalSHU: 44_800_000,
				Status: domain.SHUStatusCalculated, CalculatedAt: "2024-12-31",
			},
		}

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM shu_records").
			WithArgs(int32(2024)).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectQuery("INSERT INTO shu_records").
			WithArgs(int32(2024), records[0].MemberID, records[0].TotalSavings, records[0].TransactionCount,
				records[0].SavingsContribution, records[0].TransactionContribution,
				records[0].SHUSavings, records[0].SHUTransaction, records[0].TotalSHU,
				records[0].Status, records[0].CalculatedAt).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(51))
		mock.ExpectCommit()

		err := repo.ReplaceRecords(ctx, 2024, records)
		assert.NoError(t, err)
		assert.Equal(t, int32(51), records[0].ID)
	})
}

func TestSHURepository_MarkDistributed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewSHURepository(db)
	ctx := context.Background()

	t.Run("ReportsFinalizedRows", func(t *testing.T) {
		at := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
		mock.ExpectExec("UPDATE shu_records SET status = 'distributed'").
			WithArgs(at, int32(2024)).
			WillReturnResult(sqlmock.NewResult(0, 12))

		affected, err := repo.MarkDistributed(ctx, 2024, at)
		assert.NoError(t, err)
		assert.Equal(t, int64(12), affected)
	})
}
