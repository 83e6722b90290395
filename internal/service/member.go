package service

import (
	"context"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/repository"
)

type memberService struct {
	members repository.MemberRepository
}

func NewMemberService(members repository.MemberRepository) MemberService {
	return &memberService{members: members}
}

func (s *memberService) GetProfile(ctx context.Context, memberID int32) (*domain.Member, error) {
	return s.members.GetByID(ctx, memberID)
}

func (s *memberService) UpdateProfile(ctx context.Context, member *domain.Member) error {
	current, err := s.members.GetByID(ctx, member.ID)
	if err != nil {
		return err
	}

	// Profile edits never touch credentials, role or account status.
	current.Name = member.Name
	current.Phone = member.Phone
	current.Address = member.Address
	current.Occupation = member.Occupation
	current.BirthDate = member.BirthDate
	if member.PhotoURL != "" {
		current.PhotoURL = member.PhotoURL
	}
	if member.Email != "" {
		current.Email = member.Email
	}

	if err := s.members.Update(ctx, current); err != nil {
		return err
	}
	*member = *current
	return nil
}

func (s *memberService) ListMembers(ctx context.Context, status domain.AccountStatus, query string) ([]domain.Member, error) {
	return s.members.List(ctx, status, query)
}
