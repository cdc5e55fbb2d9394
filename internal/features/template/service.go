package template

import (
	"context"
	"errors"
	"time"

	"go-memo/internal/features/upload"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var ErrNotOwner = errors.New("you can only modify your own templates")

type TemplateService interface {
	CreateTemplate(ctx context.Context, tpl *Template) error
	GetTemplate(ctx context.Context, id string, callerID primitive.ObjectID) (*Template, error)
	ListTemplates(ctx context.Context, callerID primitive.ObjectID) ([]*Template, error)
	UpdateTemplate(ctx context.Context, tpl *Template, callerID primitive.ObjectID) error
	DeleteTemplate(ctx context.Context, id string, callerID primitive.ObjectID) error
}

type TemplateServiceImpl struct {
	Repo    TemplateRepository
	Uploads upload.UploadService
	Logger  *zap.Logger
}

func NewTemplateService(repo TemplateRepository, uploads upload.UploadService, logger *zap.Logger) TemplateService {
	return &TemplateServiceImpl{
		Repo:    repo,
		Uploads: uploads,
		Logger:  logger,
	}
}

func (s *TemplateServiceImpl) CreateTemplate(ctx context.Context, tpl *Template) error {
	if tpl.Name == "" {
		return errors.New("name is required")
	}
	now := time.Now()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	return s.Repo.Create(ctx, tpl)
}

func (s *TemplateServiceImpl) GetTemplate(ctx context.Context, id string, callerID primitive.ObjectID) (*Template, error) {
	tpl, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tpl.IsPublic && tpl.OwnerID != callerID {
		return nil, ErrNotOwner
	}
	return tpl, nil
}

func (s *TemplateServiceImpl) ListTemplates(ctx context.Context, callerID primitive.ObjectID) ([]*Template, error) {
	return s.Repo.ListVisible(ctx, callerID)
}

func (s *TemplateServiceImpl) UpdateTemplate(ctx context.Context, tpl *Template, callerID primitive.ObjectID) error {
	existing, err := s.Repo.Get(ctx, tpl.ID.Hex())
	if err != nil {
		return err
	}
	if existing.OwnerID != callerID {
		return ErrNotOwner
	}
	tpl.OwnerID = existing.OwnerID
	tpl.CreatedAt = existing.CreatedAt
	return s.Repo.Update(ctx, tpl)
}

// DeleteTemplate removes the template and hard-deletes its images
func (s *TemplateServiceImpl) DeleteTemplate(ctx context.Context, id string, callerID primitive.ObjectID) error {
	tpl, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if tpl.OwnerID != callerID {
		return ErrNotOwner
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.Uploads.HardDeleteByDomainRef(ctx, upload.DomainTemplateImage, upload.RefID(id)); err != nil {
		s.Logger.Warn("could not clean up template images",
			zap.String("template_id", id), zap.Error(err))
	}
	return nil
}
