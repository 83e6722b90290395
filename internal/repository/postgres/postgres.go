package postgres

import (
	"database/sql"

	"koperasi-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.MemberRepository
	repository.TransactionRepository
	repository.LoanRepository
	repository.NotificationRepository
	repository.SHURepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		MemberRepository:       NewMemberRepository(db),
		TransactionRepository:  NewTransactionRepository(db),
		LoanRepository:         NewLoanRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		SHURepository:          NewSHURepository(db),
	}
}
