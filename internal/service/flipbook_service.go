package service

import (
	"bytes"
	"context"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flipflow/flipflow-backend/internal/apperror"
	"github.com/flipflow/flipflow-backend/internal/cache"
	"github.com/flipflow/flipflow-backend/internal/models"
	"github.com/flipflow/flipflow-backend/internal/permission"
	"github.com/flipflow/flipflow-backend/internal/plan"
	"github.com/flipflow/flipflow-backend/pkg/pdfpipe"
	"github.com/flipflow/flipflow-backend/pkg/storage"
)

// UploadedFile carries one multipart upload through the service layer.
type UploadedFile struct {
	Filename    string
	Size        int64
	ContentType string
	Data        []byte
}

// Viewer identifies the requester for read paths; the zero value is an
// anonymous visitor.
type Viewer struct {
	Authenticated bool
	UserID        uint
}

// FlipbookStore is the persistence surface the service needs; satisfied by
// repository.FlipbookRepository, stubbed in tests.
type FlipbookStore interface {
	Create(flipbook *models.Flipbook) (*models.Flipbook, error)
	GetByID(id uint) (*models.Flipbook, error)
	GetByUserID(userID uint) ([]models.Flipbook, error)
	CountByUserID(userID uint) (int64, error)
	Update(flipbook *models.Flipbook) error
	Delete(id uint) error
}

// UserGetter is the slice of the user repository this service reads.
type UserGetter interface {
	GetByID(id uint) (*models.User, error)
}

type FlipbookService struct {
	flipbookRepo FlipbookStore
	userRepo     UserGetter
	store        storage.ObjectStorage
	cache        *cache.Store
	log          *zap.Logger
}

func NewFlipbookService(
	flipbookRepo FlipbookStore,
	userRepo UserGetter,
	store storage.ObjectStorage,
	queryCache *cache.Store,
	log *zap.Logger,
) *FlipbookService {
	return &FlipbookService{
		flipbookRepo: flipbookRepo,
		userRepo:     userRepo,
		store:        store,
		cache:        queryCache,
		log:          log,
	}
}

func userListKey(userID uint) cache.Key {
	return cache.Key{Kind: "flipbooks", Scope: "user", ID: strconv.FormatUint(uint64(userID), 10)}
}

func detailKey(id uint) cache.Key {
	return cache.Key{Kind: "flipbooks", Scope: "detail", ID: strconv.FormatUint(uint64(id), 10)}
}

func cloneList(in []models.Flipbook) []models.Flipbook {
	out := make([]models.Flipbook, len(in))
	copy(out, in)
	return out
}

// CreateFlipbook validates plan quota and the file, stores the PDF, derives
// page count and a cover thumbnail, then commits the row with an optimistic
// cache update on the owner's list.
func (s *FlipbookService) CreateFlipbook(ctx context.Context, userID uint, req models.CreateFlipbookRequest, file UploadedFile) (*models.Flipbook, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, apperror.FromError(err)
	}

	count, err := s.flipbookRepo.CountByUserID(userID)
	if err != nil {
		return nil, apperror.FromError(err)
	}

	planRes := plan.ValidateAction(plan.ActionCreateFlipbook, plan.Context{
		Plan:          user.Plan,
		FlipbookCount: int(count),
	})
	if !planRes.Allowed {
		return nil, apperror.New(apperror.KindPermission, planRes.Reason).WithMeta(map[string]interface{}{
			"upgrade_required": planRes.UpgradeRequired,
			"usage":            planRes.Usage,
			"limit":            planRes.Limit,
		})
	}

	if perm := permission.Validate(permission.ResourceFlipbook, permission.ActionInsert, permission.Context{
		Authenticated: true,
		UserID:        userID,
		OwnerID:       userID,
	}); !perm.Allowed {
		return nil, apperror.New(apperror.KindPermission, string(perm.Reason))
	}

	// Size and MIME are checked before the engine or the network see the
	// file.
	if err := storage.ValidatePDFUpload(file.Size, file.ContentType); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}

	doc, err := pdfpipe.LoadFromBytes(file.Data)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "failed to load PDF", err)
	}
	defer doc.Close()

	pdfURL, pdfKey, err := s.store.UploadPDF(ctx, userID, file.Filename, bytes.NewReader(file.Data), file.Size, file.ContentType)
	if err != nil {
		return nil, apperror.FromError(err)
	}

	showCover := true
	if req.ShowCover != nil {
		showCover = *req.ShowCover
	}

	flipbook := &models.Flipbook{
		UserID:          userID,
		Title:           req.Title,
		Description:     req.Description,
		PDFURL:          pdfURL,
		PDFKey:          pdfKey,
		IsPublic:        req.IsPublic,
		PageCount:       doc.PageCount(),
		BackgroundColor: req.BackgroundColor,
		ShowCover:       showCover,
	}

	// Cover thumbnail failures degrade the listing, not the upload.
	if coverURL := s.renderCover(ctx, userID, doc); coverURL != "" {
		flipbook.CoverURL = coverURL
	}

	listKey := userListKey(userID)
	var snapshot []models.Flipbook
	warm := false

	optimistic := *flipbook
	optimistic.TempKey = uuid.NewString()

	var created *models.Flipbook
	_, err = s.cache.Mutate(ctx, listKey,
		func(current interface{}, found bool) interface{} {
			if found {
				warm = true
				snapshot = current.([]models.Flipbook)
			}
			return append([]models.Flipbook{optimistic}, cloneList(snapshot)...)
		},
		func(ctx context.Context) (interface{}, error) {
			row, err := s.flipbookRepo.Create(flipbook)
			if err != nil {
				return nil, err
			}
			created = row
			if !warm {
				// A cold key has no snapshot to rebuild the full list
				// from; drop the entry so the next read refetches.
				return nil, nil
			}
			return append([]models.Flipbook{*row}, cloneList(snapshot)...), nil
		},
	)
	if err != nil {
		// The row never existed; drop the orphaned object.
		if delErr := s.store.DeletePDF(ctx, pdfKey); delErr != nil {
			s.log.Warn("failed to clean up PDF after create rollback",
				zap.String("key", pdfKey), zap.Error(delErr))
		}
		return nil, apperror.FromError(err)
	}

	return created, nil
}

func (s *FlipbookService) renderCover(ctx context.Context, userID uint, doc *pdfpipe.Document) string {
	if doc.PageCount() == 0 {
		return ""
	}
	page, err := doc.RenderPage(0)
	if err != nil {
		s.log.Warn("cover render failed", zap.Error(err))
		return ""
	}

	url, _, err := s.store.UploadAsset(ctx, userID, "cover.png",
		bytes.NewReader(page.PNG), int64(len(page.PNG)), "image/png")
	if err != nil {
		s.log.Warn("cover upload failed", zap.Error(err))
		return ""
	}
	return url
}

// GetUserFlipbooks lists the owner's flipbooks through the query cache.
func (s *FlipbookService) GetUserFlipbooks(ctx context.Context, userID uint) ([]models.Flipbook, error) {
	v, err := s.cache.Fetch(ctx, userListKey(userID), func(ctx context.Context) (interface{}, error) {
		return s.flipbookRepo.GetByUserID(userID)
	})
	if err != nil {
		return nil, apperror.FromError(err)
	}
	return v.([]models.Flipbook), nil
}

// GetFlipbook returns one flipbook if the viewer may see it: public rows for
// anyone, private rows for their owner.
func (s *FlipbookService) GetFlipbook(ctx context.Context, id uint, viewer Viewer) (*models.Flipbook, error) {
	flipbook, err := s.fetchDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	permCtx := permission.Context{
		Authenticated: viewer.Authenticated,
		UserID:        viewer.UserID,
		OwnerID:       flipbook.UserID,
		IsPublic:      flipbook.IsPublic,
	}
	if !permission.CanView(permCtx) {
		// Hide the row's existence from non-owners.
		return nil, apperror.New(apperror.KindNotFound, apperror.Message(apperror.KindNotFound))
	}

	return flipbook, nil
}

func (s *FlipbookService) fetchDetail(ctx context.Context, id uint) (*models.Flipbook, error) {
	v, err := s.cache.Fetch(ctx, detailKey(id), func(ctx context.Context) (interface{}, error) {
		return s.flipbookRepo.GetByID(id)
	})
	if err != nil {
		return nil, apperror.FromError(err)
	}
	return v.(*models.Flipbook), nil
}

// UpdateFlipbook applies an owner's edit optimistically on the detail entry
// and invalidates the list for refetch.
func (s *FlipbookService) UpdateFlipbook(ctx context.Context, id, userID uint, req models.UpdateFlipbookRequest) (*models.Flipbook, error) {
	flipbook, err := s.fetchDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	if !permission.CanEdit(permission.Context{
		Authenticated: true,
		UserID:        userID,
		OwnerID:       flipbook.UserID,
		IsPublic:      flipbook.IsPublic,
	}) {
		return nil, apperror.New(apperror.KindPermission, "you don't have permission to edit this flipbook")
	}

	updated := *flipbook
	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.IsPublic != nil {
		updated.IsPublic = *req.IsPublic
	}
	if req.BackgroundColor != nil {
		updated.BackgroundColor = *req.BackgroundColor
	}
	if req.ShowCover != nil {
		updated.ShowCover = *req.ShowCover
	}

	result, err := s.cache.Mutate(ctx, detailKey(id),
		func(current interface{}, found bool) interface{} {
			opt := updated
			opt.TempKey = uuid.NewString()
			return &opt
		},
		func(ctx context.Context) (interface{}, error) {
			if err := s.flipbookRepo.Update(&updated); err != nil {
				return nil, err
			}
			return &updated, nil
		},
		userListKey(flipbook.UserID),
	)
	if err != nil {
		return nil, apperror.FromError(err)
	}

	return result.(*models.Flipbook), nil
}

// DeleteFlipbook removes the row optimistically from the owner's list, then
// the stored objects once the database delete has succeeded.
func (s *FlipbookService) DeleteFlipbook(ctx context.Context, id, userID uint) error {
	flipbook, err := s.fetchDetail(ctx, id)
	if err != nil {
		return err
	}

	if !permission.CanDelete(permission.Context{
		Authenticated: true,
		UserID:        userID,
		OwnerID:       flipbook.UserID,
		IsPublic:      flipbook.IsPublic,
	}) {
		return apperror.New(apperror.KindPermission, "you don't have permission to delete this flipbook")
	}

	listKey := userListKey(flipbook.UserID)
	var snapshot []models.Flipbook
	warm := false

	prune := func(in []models.Flipbook) []models.Flipbook {
		out := make([]models.Flipbook, 0, len(in))
		for _, fb := range in {
			if fb.ID != id {
				out = append(out, fb)
			}
		}
		return out
	}

	_, err = s.cache.Mutate(ctx, listKey,
		func(current interface{}, found bool) interface{} {
			if found {
				warm = true
				snapshot = current.([]models.Flipbook)
			}
			return prune(snapshot)
		},
		func(ctx context.Context) (interface{}, error) {
			if err := s.flipbookRepo.Delete(id); err != nil {
				return nil, err
			}
			if !warm {
				// Same as create: without a snapshot the pruned list
				// would be fabricated, so force a refetch instead.
				return nil, nil
			}
			return prune(snapshot), nil
		},
		detailKey(id),
	)
	if err != nil {
		return apperror.FromError(err)
	}

	if err := s.store.DeletePDF(ctx, flipbook.PDFKey); err != nil {
		s.log.Warn("failed to delete PDF object", zap.String("key", flipbook.PDFKey), zap.Error(err))
	}
	if flipbook.LogoKey != "" {
		if err := s.store.DeleteAsset(ctx, flipbook.LogoKey); err != nil {
			s.log.Warn("failed to delete logo object", zap.String("key", flipbook.LogoKey), zap.Error(err))
		}
	}

	return nil
}

// UploadLogo attaches custom branding, a premium-gated feature.
func (s *FlipbookService) UploadLogo(ctx context.Context, id, userID uint, file UploadedFile) (*models.Flipbook, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, apperror.FromError(err)
	}

	planRes := plan.ValidateAction(plan.ActionCustomBranding, plan.Context{Plan: user.Plan})
	if !planRes.Allowed {
		return nil, apperror.New(apperror.KindPermission, planRes.Reason).WithMeta(map[string]interface{}{
			"upgrade_required": planRes.UpgradeRequired,
		})
	}

	flipbook, err := s.fetchDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if !permission.CanEdit(permission.Context{
		Authenticated: true,
		UserID:        userID,
		OwnerID:       flipbook.UserID,
		IsPublic:      flipbook.IsPublic,
	}) {
		return nil, apperror.New(apperror.KindPermission, "you don't have permission to edit this flipbook")
	}

	if err := storage.ValidateAssetUpload(file.Size, file.ContentType); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}

	logoURL, logoKey, err := s.store.UploadAsset(ctx, userID, file.Filename,
		bytes.NewReader(file.Data), file.Size, file.ContentType)
	if err != nil {
		return nil, apperror.FromError(err)
	}

	oldKey := flipbook.LogoKey
	updated := *flipbook
	updated.LogoURL = logoURL
	updated.LogoKey = logoKey

	if err := s.flipbookRepo.Update(&updated); err != nil {
		return nil, apperror.FromError(err)
	}
	s.cache.Invalidate(detailKey(id), userListKey(flipbook.UserID))

	if oldKey != "" {
		if err := s.store.DeleteAsset(ctx, oldKey); err != nil {
			s.log.Warn("failed to delete replaced logo", zap.String("key", oldKey), zap.Error(err))
		}
	}

	return &updated, nil
}

// ExportFlipbook hands back the original PDF location, gated on the premium
// export feature.
func (s *FlipbookService) ExportFlipbook(ctx context.Context, id, userID uint) (string, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", apperror.FromError(err)
	}

	planRes := plan.ValidateAction(plan.ActionExportFlipbook, plan.Context{Plan: user.Plan})
	if !planRes.Allowed {
		return "", apperror.New(apperror.KindPermission, planRes.Reason).WithMeta(map[string]interface{}{
			"upgrade_required": planRes.UpgradeRequired,
		})
	}

	flipbook, err := s.fetchDetail(ctx, id)
	if err != nil {
		return "", err
	}
	if !permission.CanView(permission.Context{
		Authenticated: true,
		UserID:        userID,
		OwnerID:       flipbook.UserID,
		IsPublic:      flipbook.IsPublic,
	}) {
		return "", apperror.New(apperror.KindNotFound, apperror.Message(apperror.KindNotFound))
	}

	return flipbook.PDFURL, nil
}
