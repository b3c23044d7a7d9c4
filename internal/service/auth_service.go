package service

import (
	"go.uber.org/zap"

	"github.com/flipflow/flipflow-backend/internal/apperror"
	"github.com/flipflow/flipflow-backend/internal/models"
	"github.com/flipflow/flipflow-backend/internal/plan"
	"github.com/flipflow/flipflow-backend/internal/repository"
	"github.com/flipflow/flipflow-backend/pkg/bcrypt"
	"github.com/flipflow/flipflow-backend/pkg/email"
	jwtpkg "github.com/flipflow/flipflow-backend/pkg/jwt"
)

type AuthService struct {
	userRepo     *repository.UserRepository
	emailService *email.EmailService
	tokens       *jwtpkg.Manager
	log          *zap.Logger
}

func NewAuthService(userRepo *repository.UserRepository, emailService *email.EmailService, tokens *jwtpkg.Manager, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		emailService: emailService,
		tokens:       tokens,
		log:          log,
	}
}

func (s *AuthService) Register(req models.RegisterRequest) (*models.AuthResponse, error) {
	exists, err := s.userRepo.EmailExists(req.Email)
	if err != nil {
		return nil, apperror.FromError(err)
	}
	if exists {
		return nil, apperror.New(apperror.KindConflict, "an account with this email already exists")
	}

	hashedPassword, err := bcrypt.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.FromError(err)
	}

	user := &models.User{
		FullName: req.FullName,
		Email:    req.Email,
		Password: hashedPassword,
		Plan:     string(plan.TierFree),
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, apperror.FromError(err)
	}

	token, err := s.tokens.GenerateToken(user.Email, user.ID)
	if err != nil {
		return nil, apperror.FromError(err)
	}

	go func() {
		if err := s.emailService.SendWelcomeEmail(user.Email, user.FullName); err != nil {
			s.log.Warn("welcome email failed", zap.String("email", user.Email), zap.Error(err))
		}
	}()

	return &models.AuthResponse{Token: token, User: *user}, nil
}

func (s *AuthService) Login(req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		return nil, apperror.New(apperror.KindAuth, "invalid email or password")
	}

	if err := bcrypt.ComparePassword(user.Password, req.Password); err != nil {
		return nil, apperror.New(apperror.KindAuth, "invalid email or password")
	}

	token, err := s.tokens.GenerateToken(user.Email, user.ID)
	if err != nil {
		return nil, apperror.FromError(err)
	}

	return &models.AuthResponse{Token: token, User: *user}, nil
}

// ForgotPassword never reports whether the address exists.
func (s *AuthService) ForgotPassword(emailAddr string) error {
	user, err := s.userRepo.GetByEmail(emailAddr)
	if err != nil {
		return nil
	}

	resetToken, err := s.tokens.GenerateResetToken(user.Email)
	if err != nil {
		return apperror.FromError(err)
	}

	if err := s.emailService.SendPasswordResetEmail(user.Email, resetToken); err != nil {
		return apperror.FromError(err)
	}
	return nil
}

func (s *AuthService) ResetPassword(token, newPassword string) error {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return apperror.New(apperror.KindAuth, "invalid or expired token")
	}

	emailAddr, ok := claims["sub"].(string)
	if !ok {
		return apperror.New(apperror.KindAuth, "invalid token claims")
	}
	if tokenType, _ := claims["type"].(string); tokenType != "password_reset" {
		return apperror.New(apperror.KindAuth, "invalid token type")
	}

	user, err := s.userRepo.GetByEmail(emailAddr)
	if err != nil {
		return apperror.FromError(err)
	}

	hashedPassword, err := bcrypt.HashPassword(newPassword)
	if err != nil {
		return apperror.FromError(err)
	}

	return s.userRepo.UpdatePassword(user.ID, hashedPassword)
}
