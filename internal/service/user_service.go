package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crosspost-labs/crosspost/internal/models"
	"github.com/crosspost-labs/crosspost/internal/repository"
)

type UserService interface {
	// InitProfile is the explicit post-registration step: the identity
	// provider calls it once after creating a user. Idempotent.
	InitProfile(ctx context.Context, userID int64) error
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
}

type userService struct {
	p repository.ProfileRepository
}

func NewUserService(p repository.ProfileRepository) UserService {
	return &userService{p: p}
}

func (s *userService) InitProfile(ctx context.Context, userID int64) error {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return err
	}

	if err := s.p.Create(ctx, userID); err != nil {
		return fmt.Errorf("Error creating profile")
	}

	return nil
}

func (s *userService) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	profile, err := s.p.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting profile")
	}
	if profile == nil {
		err = errors.New("Profile doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	return profile, nil
}
