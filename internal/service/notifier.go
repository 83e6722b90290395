package service

import (
	"context"
	"time"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/logger"
	"koperasi-backend/internal/repository"
)

// Notifier fans a single event out to the member's in-app feed and, best
// effort, to WhatsApp. The in-app notification is written synchronously; the
// WhatsApp send runs in the background and never blocks or fails the calling
// operation. Unsent messages keep whatsapp_sent = false so the retry job can
// pick them up later.
type Notifier struct {
	notes   repository.NotificationRepository
	members repository.MemberRepository
	wa      WhatsAppClient
}

func NewNotifier(notes repository.NotificationRepository, members repository.MemberRepository, wa WhatsAppClient) *Notifier {
	return &Notifier{notes: notes, members: members, wa: wa}
}

func (n *Notifier) Notify(ctx context.Context, memberID int32, severity domain.NotificationSeverity, title, message string, attrs map[string]string) error {
	note := &domain.Notification{
		MemberID:   memberID,
		Title:      title,
		Message:    message,
		Severity:   severity,
		Attributes: attrs,
	}
	if err := n.notes.Create(ctx, note); err != nil {
		return err
	}

	go n.sendWhatsApp(note.ID, memberID, title, message)
	return nil
}

func (n *Notifier) sendWhatsApp(noteID, memberID int32, title, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	member, err := n.members.GetByID(ctx, memberID)
	if err != nil {
		logger.Error("whatsapp delivery skipped, member lookup failed", "memberID", memberID, "error", err)
		return
	}
	if member.Phone == "" {
		return
	}

	if err := n.wa.Send(ctx, member.Phone, title+"\n\n"+message); err != nil {
		logger.Warn("whatsapp delivery deferred", "notificationID", noteID, "error", err)
		return
	}
	if err := n.notes.MarkWhatsAppSent(ctx, noteID, time.Now()); err != nil {
		logger.Error("failed to mark notification as sent", "notificationID", noteID, "error", err)
	}
}

// ResendPending pushes notifications the gateway missed earlier. Used by the
// retry job; returns how many messages went out.
func (n *Notifier) ResendPending(ctx context.Context, limit int32) (int, error) {
	pending, err := n.notes.ListUnsentWhatsApp(ctx, limit)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, note := range pending {
		member, err := n.members.GetByID(ctx, note.MemberID)
		if err != nil || member.Phone == "" {
			continue
		}
		if err := n.wa.Send(ctx, member.Phone, note.Title+"\n\n"+note.Message); err != nil {
			logger.Warn("whatsapp retry failed", "notificationID", note.ID, "error", err)
			continue
		}
		if err := n.notes.MarkWhatsAppSent(ctx, note.ID, time.Now()); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
