package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/logger"
	"koperasi-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	logger.EnterMethod("notificationRepository.Create", "memberID", n.MemberID, "title", n.Title)

	attrs, err := json.Marshal(n.Attributes)
	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "reason", "failed to marshal attributes")
		return err
	}

	query := `INSERT INTO notifications (member_id, title, message, severity, is_read, attributes, whatsapp_sent, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	logger.DatabaseCall("INSERT", "notifications", "memberID", n.MemberID)

	if n.Severity == "" {
		n.Severity = domain.NotificationSeverityInfo
	}
	n.CreatedOn = time.Now().Format("2006-01-02")
	err = r.db.QueryRowContext(ctx, query, n.MemberID, n.Title, n.Message, n.Severity, n.IsRead, attrs, n.WhatsAppSent, n.CreatedOn).Scan(&n.ID)
	logger.DatabaseResult("INSERT", 1, err, "notificationID", n.ID)

	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "memberID", n.MemberID)
	} else {
		logger.ExitMethod("notificationRepository.Create", "notificationID", n.ID)
	}
	return err
}

func (r *notificationRepository) List(ctx context.Context, memberID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	query := `SELECT id, member_id, title, message, severity, is_read, attributes, whatsapp_sent, whatsapp_sent_at, created_on
	          FROM notifications WHERE member_id = $1 ORDER BY created_on DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, memberID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var count int32
	countQuery := `SELECT count(*) FROM notifications WHERE member_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, memberID).Scan(&count); err != nil {
		return nil, 0, err
	}

	notes, err := collectNotifications(rows)
	return notes, count, err
}

func (r *notificationRepository) CountUnread(ctx context.Context, memberID int32) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM notifications WHERE member_id = $1 AND is_read = FALSE`, memberID).Scan(&count)
	return count, err
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, memberID int32) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND member_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, memberID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("notification not found or access denied")
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, memberID int32) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE member_id = $1 AND is_read = FALSE`, memberID)
	return err
}

func (r *notificationRepository) ListUnsentWhatsApp(ctx context.Context, limit int32) ([]domain.Notification, error) {
	// Members without a phone number are excluded here; their rows can never
	// be delivered and would otherwise fill the oldest-first batch forever.
	query := `SELECT n.id, n.member_id, n.title, n.message, n.severity, n.is_read, n.attributes, n.whatsapp_sent, n.whatsapp_sent_at, n.created_on
	          FROM notifications n
	          JOIN members m ON n.member_id = m.id
	          WHERE n.whatsapp_sent = FALSE AND m.phone <> '' ORDER BY n.created_on, n.id LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (r *notificationRepository) MarkWhatsAppSent(ctx context.Context, id int32, at time.Time) error {
	query := `UPDATE notifications SET whatsapp_sent = TRUE, whatsapp_sent_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, at, id)
	return err
}

func collectNotifications(rows *sql.Rows) ([]domain.Notification, error) {
	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var attrs []byte
		var sentAt sql.NullTime
		var createdOn time.Time
		if err := rows.Scan(&n.ID, &n.MemberID, &n.Title, &n.Message, &n.Severity, &n.IsRead, &attrs, &n.WhatsAppSent, &sentAt, &createdOn); err != nil {
			return nil, err
		}
		n.CreatedOn = createdOn.Format("2006-01-02")
		if sentAt.Valid {
			s := sentAt.Time.Format(time.RFC3339)
			n.WhatsAppSentAt = &s
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &n.Attributes); err != nil {
				return nil, err
			}
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
