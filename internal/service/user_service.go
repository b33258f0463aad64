package service

import (
	"context"

	"github.com/spec-kit/room-booking/internal/domain"
	"github.com/spec-kit/room-booking/internal/repository"
	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

// UserService exposes tier metadata.
type UserService struct {
	userTypes repository.UserTypeRepository
}

// NewUserService constructs the service.
func NewUserService(userTypes repository.UserTypeRepository) *UserService {
	return &UserService{userTypes: userTypes}
}

// ListUserTypes returns every quota tier.
func (s *UserService) ListUserTypes(ctx context.Context) ([]domain.UserType, error) {
	types, err := s.userTypes.List(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return types, nil
}
