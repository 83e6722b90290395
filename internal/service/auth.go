package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/logger"
	"koperasi-backend/internal/repository"
	"koperasi-backend/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAccountSuspended   = errors.New("account is suspended")
)

type authService struct {
	members  repository.MemberRepository
	tokens   security.TokenManager
	email    EmailService
	notifier *Notifier
}

func NewAuthService(members repository.MemberRepository, tokens security.TokenManager, email EmailService, notifier *Notifier) AuthService {
	return &authService{
		members:  members,
		tokens:   tokens,
		email:    email,
		notifier: notifier,
	}
}

// Register creates the account in pending state. The member becomes active
// only after an admin approves the registration and the principal deposit.
func (s *authService) Register(ctx context.Context, m *domain.Member, password string) (*domain.Member, error) {
	logger.EnterMethod("authService.Register", "email", m.Email)

	if _, err := s.members.GetByEmail(ctx, m.Email); err == nil {
		logger.ExitMethodWithError("authService.Register", ErrEmailTaken, "email", m.Email)
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	m.PasswordHash = string(hash)
	m.Role = domain.MemberRoleMember
	m.AccountStatus = domain.AccountStatusPending

	if err := s.members.Create(ctx, m); err != nil {
		logger.ExitMethodWithError("authService.Register", err, "email", m.Email)
		return nil, err
	}

	if s.email != nil {
		if err := s.email.SendWelcome(ctx, m.Email, m.Name); err != nil {
			logger.Warn("welcome email failed", "email", m.Email, "error", err)
		}
	}
	s.notifyAdmins(ctx, m)

	logger.ExitMethod("authService.Register", "memberID", m.ID)
	return m, nil
}

// notifyAdmins tells every admin a registration is waiting for approval.
func (s *authService) notifyAdmins(ctx context.Context, m *domain.Member) {
	if s.notifier == nil {
		return
	}
	admins, err := s.members.ListAdmins(ctx)
	if err != nil {
		logger.Warn("admin lookup for registration notice failed", "error", err)
		return
	}
	for _, admin := range admins {
		err := s.notifier.Notify(ctx, admin.ID, domain.NotificationSeverityInfo,
			"Pendaftaran Anggota Baru",
			fmt.Sprintf("%s (%s) mendaftar sebagai anggota dan menunggu persetujuan.", m.Name, m.Email),
			map[string]string{"member_id": fmt.Sprint(m.ID)})
		if err != nil {
			logger.Warn("registration notice failed", "adminID", admin.ID, "error", err)
		}
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.Member, string, string, error) {
	member, err := s.members.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	// Pending members may log in and browse; suspended accounts are locked out.
	if member.AccountStatus == domain.AccountStatusSuspended {
		return nil, "", "", ErrAccountSuspended
	}

	access, refresh, err := s.generateTokens(member)
	if err != nil {
		return nil, "", "", err
	}
	return member, access, refresh, nil
}

func (s *authService) RefreshToken(ctx context.Context, refresh string) (string, string, error) {
	claims, err := s.tokens.ValidateToken(refresh)
	if err != nil {
		return "", "", ErrInvalidToken
	}
	if claims.Type != security.TokenTypeRefresh {
		return "", "", ErrInvalidToken
	}

	// Re-read the member so a role or status change takes effect immediately.
	member, err := s.members.GetByID(ctx, claims.MemberID)
	if err != nil {
		return "", "", ErrInvalidToken
	}
	return s.generateTokens(member)
}

func (s *authService) ChangePassword(ctx context.Context, memberID int32, oldPassword, newPassword string) error {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.members.UpdatePassword(ctx, memberID, string(hash))
}

func (s *authService) generateTokens(m *domain.Member) (string, string, error) {
	access, err := s.tokens.GenerateAccessToken(m.ID, m.Email, string(m.Role))
	if err != nil {
		return "", "", err
	}
	refresh, err := s.tokens.GenerateRefreshToken(m.ID, m.Email)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
