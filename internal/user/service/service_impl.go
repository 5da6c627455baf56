package service

import (
	"context"
	"strings"

	"github.com/freshmart/storefront/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:  p.Log.Named("user.service"),
		repo: p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" {
		return nil, domain.ErrMissingFields
	}

	users, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return nil, domain.ErrDuplicateEmail
		}
	}

	role := req.Role
	if role != domain.RoleAdmin {
		role = domain.RoleUser
	}

	created, err := s.repo.Insert(ctx, domain.User{
		Username: username,
		Email:    email,
		FullName: strings.TrimSpace(req.FullName),
		Role:     role,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.All(ctx)
}
