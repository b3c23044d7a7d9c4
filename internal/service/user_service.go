package service

import (
	"github.com/flipflow/flipflow-backend/internal/apperror"
	"github.com/flipflow/flipflow-backend/internal/models"
	"github.com/flipflow/flipflow-backend/internal/plan"
	"github.com/flipflow/flipflow-backend/internal/repository"
	"github.com/flipflow/flipflow-backend/pkg/bcrypt"
)

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetProfile(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, apperror.FromError(err)
	}
	// Normalize garbage tier values on the way out; the reader must never
	// see a tier the rules tables don't know.
	user.Plan = string(plan.ResolveTier(user.Plan))
	return user, nil
}

func (s *UserService) UpdateProfile(userID uint, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, apperror.FromError(err)
	}

	user.FullName = req.FullName
	if err := s.userRepo.Update(user); err != nil {
		return nil, apperror.FromError(err)
	}
	return user, nil
}

func (s *UserService) ChangePassword(userID uint, req models.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return apperror.FromError(err)
	}

	if err := bcrypt.ComparePassword(user.Password, req.CurrentPassword); err != nil {
		return apperror.New(apperror.KindAuth, "current password is incorrect")
	}

	hashedPassword, err := bcrypt.HashPassword(req.NewPassword)
	if err != nil {
		return apperror.FromError(err)
	}

	return s.userRepo.UpdatePassword(user.ID, hashedPassword)
}
