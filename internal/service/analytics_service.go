package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/flipflow/flipflow-backend/internal/apperror"
	"github.com/flipflow/flipflow-backend/internal/models"
	"github.com/flipflow/flipflow-backend/internal/permission"
	"github.com/flipflow/flipflow-backend/internal/plan"
	"github.com/flipflow/flipflow-backend/internal/repository"
)

const recentViewsLimit = 50

type AnalyticsService struct {
	flipbookRepo *repository.FlipbookRepository
	viewRepo     *repository.FlipbookViewRepository
	userRepo     *repository.UserRepository
	log          *zap.Logger
}

func NewAnalyticsService(
	flipbookRepo *repository.FlipbookRepository,
	viewRepo *repository.FlipbookViewRepository,
	userRepo *repository.UserRepository,
	log *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		flipbookRepo: flipbookRepo,
		viewRepo:     viewRepo,
		userRepo:     userRepo,
		log:          log,
	}
}

// RecordView stores a view event and bumps the counter. Authorization
// errors surface; storage errors are logged and swallowed so tracking never
// degrades the viewing flow.
func (s *AnalyticsService) RecordView(ctx context.Context, flipbookID uint, viewer Viewer, userAgent string) error {
	flipbook, err := s.flipbookRepo.GetByID(flipbookID)
	if err != nil {
		return apperror.FromError(err)
	}

	perm := permission.Validate(permission.ResourceFlipbookView, permission.ActionInsert, permission.Context{
		Authenticated: viewer.Authenticated,
		UserID:        viewer.UserID,
		OwnerID:       flipbook.UserID,
		IsPublic:      flipbook.IsPublic,
	})
	if !perm.Allowed {
		if perm.Reason == permission.ReasonRequiresAuth {
			return apperror.New(apperror.KindAuth, "sign in to record views")
		}
		return apperror.New(apperror.KindPermission, "views cannot be recorded for this flipbook")
	}

	view := &models.FlipbookView{
		FlipbookID: flipbookID,
		UserAgent:  userAgent,
	}
	if err := s.viewRepo.RecordView(view); err != nil {
		s.log.Warn("failed to record view",
			zap.Uint("flipbook_id", flipbookID),
			zap.Error(err),
		)
		return nil
	}

	return nil
}

// GetStats returns view analytics for the flipbook's owner, a premium
// feature.
func (s *AnalyticsService) GetStats(ctx context.Context, flipbookID, userID uint) (*models.FlipbookStats, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, apperror.FromError(err)
	}

	planRes := plan.ValidateAction(plan.ActionAccessAnalytics, plan.Context{Plan: user.Plan})
	if !planRes.Allowed {
		return nil, apperror.New(apperror.KindPermission, planRes.Reason).WithMeta(map[string]interface{}{
			"upgrade_required": planRes.UpgradeRequired,
		})
	}

	flipbook, err := s.flipbookRepo.GetByID(flipbookID)
	if err != nil {
		return nil, apperror.FromError(err)
	}

	perm := permission.Validate(permission.ResourceFlipbookView, permission.ActionSelect, permission.Context{
		Authenticated: true,
		UserID:        userID,
		OwnerID:       flipbook.UserID,
		IsPublic:      flipbook.IsPublic,
	})
	if !perm.Allowed {
		return nil, apperror.New(apperror.KindPermission, "analytics are only visible to the owner")
	}

	recent, err := s.viewRepo.GetRecent(flipbookID, recentViewsLimit)
	if err != nil {
		return nil, apperror.FromError(err)
	}

	return &models.FlipbookStats{
		FlipbookID:  flipbookID,
		ViewCount:   flipbook.ViewCount,
		RecentViews: recent,
	}, nil
}
