package service

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(host string, port int, username, password, from string) EmailService {
	return &emailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *emailService) SendWelcome(ctx context.Context, email, name string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Pendaftaran Anggota Koperasi Diterima")

	body := fmt.Sprintf("Halo %s,\n\nPendaftaran Anda sebagai anggota koperasi telah kami terima dan sedang menunggu persetujuan pengurus.\n\nAnda akan menerima pemberitahuan setelah akun diaktifkan.\n\nSalam,\nPengurus Koperasi", name)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}

	return nil
}

func (s *emailService) SendAccountStatus(ctx context.Context, email, name, status, reason string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Status Keanggotaan Koperasi")

	body := fmt.Sprintf("Halo %s,\n\nStatus keanggotaan Anda telah diperbarui menjadi: %s.", name, status)
	if reason != "" {
		body += fmt.Sprintf("\n\nKeterangan: %s", reason)
	}
	body += "\n\nSalam,\nPengurus Koperasi"

	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send account status email: %w", err)
	}

	return nil
}
