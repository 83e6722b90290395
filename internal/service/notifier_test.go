package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/service"
)

func TestNotifier_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("InAppThenWhatsApp", func(t *testing.T) {
		notes := new(MockNotificationRepo)
		members := new(MockMemberRepo)
		wa := new(MockWhatsAppClient)
		notifier := service.NewNotifier(notes, members, wa)

		done := make(chan struct{})
		notes.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*domain.Notification).ID = 21
			}).Return(nil)
		members.On("GetByID", mock.Anything, int32(1)).Return(activeMember(1), nil)
		wa.On("Send", mock.Anything, "+628123456789", "Setoran Diterima\n\nSetoran Anda sedang diverifikasi.").Return(nil)
		notes.On("MarkWhatsAppSent", mock.Anything, int32(21), mock.AnythingOfType("time.Time")).
			Run(func(mock.Arguments) { close(done) }).Return(nil)

		err := notifier.Notify(ctx, 1, domain.NotificationSeverityInfo, "Setoran Diterima", "Setoran Anda sedang diverifikasi.", nil)
		assert.NoError(t, err)

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("whatsapp delivery did not complete")
		}
		wa.AssertExpectations(t)
	})

	t.Run("GatewayFailureLeavesUnsent", func(t *testing.T) {
		notes := new(MockNotificationRepo)
		members := new(MockMemberRepo)
		wa := new(MockWhatsAppClient)
		notifier := service.NewNotifier(notes, members, wa)

		done := make(chan struct{})
		notes.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil)
		members.On("GetByID", mock.Anything, int32(1)).Return(activeMember(1), nil)
		wa.On("Send", mock.Anything, "+628123456789", mock.AnythingOfType("string")).
			Run(func(mock.Arguments) { close(done) }).Return(errors.New("gateway timeout"))

		err := notifier.Notify(ctx, 1, domain.NotificationSeverityInfo, "Judul", "Isi pesan.", nil)
		assert.NoError(t, err)

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("whatsapp send was never attempted")
		}
		notes.AssertNotCalled(t, "MarkWhatsAppSent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CreateFailurePropagates", func(t *testing.T) {
		notes := new(MockNotificationRepo)
		notifier := service.NewNotifier(notes, new(MockMemberRepo), new(MockWhatsAppClient))

		notes.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(errors.New("db down"))

		err := notifier.Notify(ctx, 1, domain.NotificationSeverityInfo, "Judul", "Isi pesan.", nil)
		assert.Error(t, err)
	})
}

func TestNotifier_ResendPending(t *testing.T) {
	ctx := context.Background()

	t.Run("SendsAndMarksEach", func(t *testing.T) {
		notes := new(MockNotificationRepo)
		members := new(MockMemberRepo)
		wa := new(MockWhatsAppClient)
		notifier := service.NewNotifier(notes, members, wa)

		notes.On("ListUnsentWhatsApp", ctx, int32(50)).Return([]domain.Notification{
			{ID: 1, MemberID: 1, Title: "Angsuran Jatuh Tempo", Message: "Angsuran ke-2 jatuh tempo besok."},
			{ID: 2, MemberID: 1, Title: "Setoran Disetujui", Message: "Setoran Anda telah disetujui."},
		}, nil)
		members.On("GetByID", ctx, int32(1)).Return(activeMember(1), nil)
		wa.On("Send", ctx, "+628123456789", mock.AnythingOfType("string")).Return(nil)
		notes.On("MarkWhatsAppSent", ctx, mock.AnythingOfType("int32"), mock.AnythingOfType("time.Time")).Return(nil)

		sent, err := notifier.ResendPending(ctx, 50)
		assert.NoError(t, err)
		assert.Equal(t, 2, sent)
	})

	t.Run("SkipsMembersWithoutPhone", func(t *testing.T) {
		notes := new(MockNotificationRepo)
		members := new(MockMemberRepo)
		wa := new(MockWhatsAppClient)
		notifier := service.NewNotifier(notes, members, wa)

		phoneless := activeMember(4)
		phoneless.Phone = ""
		notes.On("ListUnsentWhatsApp", ctx, int32(50)).Return([]domain.Notification{
			{ID: 3, MemberID: 4, Title: "Judul", Message: "Isi"},
		}, nil)
		members.On("GetByID", ctx, int32(4)).Return(phoneless, nil)

		sent, err := notifier.ResendPending(ctx, 50)
		assert.NoError(t, err)
		assert.Equal(t, 0, sent)
		wa.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("FailedSendStaysPending", func(t *testing.T) {
		notes := new(MockNotificationRepo)
		members := new(MockMemberRepo)
		wa := new(MockWhatsAppClient)
		notifier := service.NewNotifier(notes, members, wa)

		notes.On("ListUnsentWhatsApp", ctx, int32(10)).Return([]domain.Notification{
			{ID: 5, MemberID: 1, Title: "Judul", Message: "Isi"},
		}, nil)
		members.On("GetByID", ctx, int32(1)).Return(activeMember(1), nil)
		wa.On("Send", ctx, "+628123456789", mock.AnythingOfType("string")).Return(errors.New("unreachable"))

		sent, err := notifier.ResendPending(ctx, 10)
		assert.NoError(t, err)
		assert.Equal(t, 0, sent)
		notes.AssertNotCalled(t, "MarkWhatsAppSent", mock.Anything, mock.Anything, mock.Anything)
	})
}
