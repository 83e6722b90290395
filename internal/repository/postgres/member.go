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

type memberRepository struct {
	db *sql.DB
}

func NewMemberRepository(db *sql.DB) repository.MemberRepository {
	return &memberRepository{db: db}
}

const memberColumns = `id, name, email, phone, password_hash, COALESCE(photo_url, ''), role, account_status, COALESCE(address, ''), COALESCE(occupation, ''), birth_date, member_since, created_on, updated_on`

func (r *memberRepository) Create(ctx context.Context, m *domain.Member) error {
	query := `INSERT INTO members (name, email, phone, password_hash, photo_url, role, account_status, address, occupation, birth_date, member_since, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	now := time.Now().Format("2006-01-02")
	m.CreatedOn = now
	m.UpdatedOn = now
	if m.MemberSince == "" {
		m.MemberSince = now
	}
	var birthDate interface{}
	if m.BirthDate != "" {
		birthDate = m.BirthDate
	}
	return r.db.QueryRowContext(ctx, query,
		m.Name, m.Email, m.Phone, m.PasswordHash, m.PhotoURL, m.Role, m.AccountStatus,
		m.Address, m.Occupation, birthDate, m.MemberSince, m.CreatedOn, m.UpdatedOn,
	).Scan(&m.ID)
}

func (r *memberRepository) GetByID(ctx context.Context, id int32) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return r.scanMember(r.db.QueryRowContext(ctx, query, id))
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE LOWER(email) = LOWER($1)`
	return r.scanMember(r.db.QueryRowContext(ctx, query, email))
}

func (r *memberRepository) scanMember(row *sql.Row) (*domain.Member, error) {
	m := &domain.Member{}
	var birthDate sql.NullTime
	var memberSince, createdOn, updatedOn time.Time
	err := row.Scan(
		&m.ID, &m.Name, &m.Email, &m.Phone, &m.PasswordHash, &m.PhotoURL,
		&m.Role, &m.AccountStatus, &m.Address, &m.Occupation,
		&birthDate, &memberSince, &createdOn, &updatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if birthDate.Valid {
		m.BirthDate = birthDate.Time.Format("2006-01-02")
	}
	m.MemberSince = memberSince.Format("2006-01-02")
	m.CreatedOn = createdOn.Format("2006-01-02")
	m.UpdatedOn = updatedOn.Format("2006-01-02")
	return m, nil
}

func (r *memberRepository) Update(ctx context.Context, m *domain.Member) error {
	query := `UPDATE members SET name=$1, email=$2, phone=$3, photo_url=$4, address=$5, occupation=$6, birth_date=$7, updated_on=$8 WHERE id=$9`
	m.UpdatedOn = time.Now().Format("2006-01-02")
	var birthDate interface{}
	if m.BirthDate != "" {
		birthDate = m.BirthDate
	}
	_, err := r.db.ExecContext(ctx, query, m.Name, m.Email, m.Phone, m.PhotoURL, m.Address, m.Occupation, birthDate, m.UpdatedOn, m.ID)
	return err
}

func (r *memberRepository) UpdatePassword(ctx context.Context, id int32, passwordHash string) error {
	query := `UPDATE members SET password_hash=$1, updated_on=$2 WHERE id=$3`
	_, err := r.db.ExecContext(ctx, query, passwordHash, time.Now().Format("2006-01-02"), id)
	return err
}

func (r *memberRepository) SetAccountStatus(ctx context.Context, id int32, status domain.AccountStatus) error {
	query := `UPDATE members SET account_status=$1, updated_on=$2 WHERE id=$3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now().Format("2006-01-02"), id)
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

func (r *memberRepository) List(ctx context.Context, status domain.AccountStatus, search string) ([]domain.Member, error) {
	logger.EnterMethod("memberRepository.List", "status", status, "search", search)

	query := `SELECT ` + memberColumns + ` FROM members WHERE ($1 = '' OR account_status = $1) AND ($2 = '' OR name ILIKE $3 OR email ILIKE $3) ORDER BY name`
	logger.DatabaseCall("SELECT", "members", "status", status)

	rows, err := r.db.QueryContext(ctx, query, string(status), search, "%"+search+"%")
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		logger.ExitMethodWithError("memberRepository.List", err)
		return nil, err
	}
	defer rows.Close()

	members, err := collectMembers(rows)
	if err != nil {
		logger.ExitMethodWithError("memberRepository.List", err)
		return nil, err
	}
	logger.DatabaseResult("SELECT", int64(len(members)), nil)
	logger.ExitMethod("memberRepository.List", "count", len(members))
	return members, nil
}

func (r *memberRepository) ListActive(ctx context.Context) ([]domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE account_status = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, domain.AccountStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMembers(rows)
}

func (r *memberRepository) ListAdmins(ctx context.Context) ([]domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE role = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, domain.MemberRoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMembers(rows)
}

func (r *memberRepository) CountByStatus(ctx context.Context, status domain.AccountStatus) (int32, error) {
	query := `SELECT count(*) FROM members WHERE ($1 = '' OR account_status = $1)`
	var count int32
	err := r.db.QueryRowContext(ctx, query, string(status)).Scan(&count)
	return count, err
}

func collectMembers(rows *sql.Rows) ([]domain.Member, error) {
	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		var birthDate sql.NullTime
		var memberSince, createdOn, updatedOn time.Time
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Email, &m.Phone, &m.PasswordHash, &m.PhotoURL,
			&m.Role, &m.AccountStatus, &m.Address, &m.Occupation,
			&birthDate, &memberSince, &createdOn, &updatedOn,
		); err != nil {
			return nil, err
		}
		if birthDate.Valid {
			m.BirthDate = birthDate.Time.Format("2006-01-02")
		}
		m.MemberSince = memberSince.Format("2006-01-02")
		m.CreatedOn = createdOn.Format("2006-01-02")
		m.UpdatedOn = updatedOn.Format("2006-01-02")
		members = append(members, m)
	}
	return members, rows.Err()
}
