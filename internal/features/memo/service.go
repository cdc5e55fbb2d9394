package memo

import (
	"context"
	"errors"
	"time"

	"go-memo/internal/features/upload"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var ErrNotOwner = errors.New("you can only modify your own memos")

type MemoService interface {
	CreateMemo(ctx context.Context, memo *Memo) error
	GetMemo(ctx context.Context, id string, callerID primitive.ObjectID) (*Memo, error)
	ListMemos(ctx context.Context, ownerID primitive.ObjectID, page, limit int64) ([]*Memo, error)
	UpdateMemo(ctx context.Context, memo *Memo, callerID primitive.ObjectID) error
	DeleteMemo(ctx context.Context, id string, callerID primitive.ObjectID) error
}

type MemoServiceImpl struct {
	Repo    MemoRepository
	Uploads upload.UploadService
	Logger  *zap.Logger
}

func NewMemoService(repo MemoRepository, uploads upload.UploadService, logger *zap.Logger) MemoService {
	return &MemoServiceImpl{
		Repo:    repo,
		Uploads: uploads,
		Logger:  logger,
	}
}

func (s *MemoServiceImpl) CreateMemo(ctx context.Context, memo *Memo) error {
	if memo.Title == "" {
		return errors.New("title is required")
	}
	now := time.Now()
	memo.CreatedAt = now
	memo.UpdatedAt = now
	return s.Repo.Create(ctx, memo)
}

func (s *MemoServiceImpl) GetMemo(ctx context.Context, id string, callerID primitive.ObjectID) (*Memo, error) {
	memo, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if memo.OwnerID != callerID {
		return nil, ErrNotOwner
	}
	return memo, nil
}

func (s *MemoServiceImpl) ListMemos(ctx context.Context, ownerID primitive.ObjectID, page, limit int64) ([]*Memo, error) {
	return s.Repo.ListByOwner(ctx, ownerID, page, limit)
}

func (s *MemoServiceImpl) UpdateMemo(ctx context.Context, memo *Memo, callerID primitive.ObjectID) error {
	existing, err := s.Repo.Get(ctx, memo.ID.Hex())
	if err != nil {
		return err
	}
	if existing.OwnerID != callerID {
		return ErrNotOwner
	}
	memo.OwnerID = existing.OwnerID
	memo.CreatedAt = existing.CreatedAt
	return s.Repo.Update(ctx, memo)
}

// DeleteMemo removes the memo and hard-deletes its attached files.
// Attachment cleanup failures are logged, not surfaced: the memo
// deletion itself already succeeded.
func (s *MemoServiceImpl) DeleteMemo(ctx context.Context, id string, callerID primitive.ObjectID) error {
	memo, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if memo.OwnerID != callerID {
		return ErrNotOwner
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.Uploads.HardDeleteByDomainRef(ctx, upload.DomainMemo, upload.RefID(id)); err != nil {
		s.Logger.Warn("could not clean up memo attachments",
			zap.String("memo_id", id), zap.Error(err))
	}
	return nil
}
