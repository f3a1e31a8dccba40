package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
)

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to load profile", err)
	}
	return user, nil
}

// Rename changes the display name of userID.
func (uc *UseCase) Rename(ctx context.Context, userID, name string) (*domain.User, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	user, err := uc.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = strings.TrimSpace(name)
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to update profile", err)
	}
	logger.FromContext(ctx, uc.logger).Info("profile updated")
	return user, nil
}
