package memo

import (
	"context"
	"errors"
	"testing"

	"go-memo/internal/features/upload"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeMemoRepo struct {
	memos map[string]*Memo
}

func newFakeMemoRepo() *fakeMemoRepo {
	return &fakeMemoRepo{memos: make(map[string]*Memo)}
}

func (r *fakeMemoRepo) Create(ctx context.Context, memo *Memo) error {
	if memo.ID.IsZero() {
		memo.ID = primitive.NewObjectID()
	}
	dup := *memo
	r.memos[memo.ID.Hex()] = &dup
	return nil
}

func (r *fakeMemoRepo) Get(ctx context.Context, id string) (*Memo, error) {
	memo, ok := r.memos[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	dup := *memo
	return &dup, nil
}

func (r *fakeMemoRepo) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, page, limit int64) ([]*Memo, error) {
	var out []*Memo
	for _, m := range r.memos {
		if m.OwnerID == ownerID {
			dup := *m
			out = append(out, &dup)
		}
	}
	return out, nil
}

func (r *fakeMemoRepo) Update(ctx context.Context, memo *Memo) error {
	dup := *memo
	r.memos[memo.ID.Hex()] = &dup
	return nil
}

func (r *fakeMemoRepo) Delete(ctx context.Context, id string) error {
	delete(r.memos, id)
	return nil
}

// stubUploads records HardDeleteByDomainRef calls; everything else is
// unused by the memo service.
type stubUploads struct {
	upload.UploadService
	cleaned []upload.RefID
	err     error
}

func (s *stubUploads) HardDeleteByDomainRef(ctx context.Context, domain upload.Domain, refID upload.RefID) error {
	if domain == upload.DomainMemo {
		s.cleaned = append(s.cleaned, refID)
	}
	return s.err
}

func newMemoService(repo MemoRepository, uploads upload.UploadService) *MemoServiceImpl {
	return &MemoServiceImpl{Repo: repo, Uploads: uploads, Logger: zap.NewNop()}
}

func TestCreateMemoRequiresTitle(t *testing.T) {
	svc := newMemoService(newFakeMemoRepo(), &stubUploads{})
	err := svc.CreateMemo(context.Background(), &Memo{OwnerID: primitive.NewObjectID()})
	if err == nil {
		t.Fatal("expected error for missing title")
	}
}

func TestGetMemoOwnership(t *testing.T) {
	repo := newFakeMemoRepo()
	svc := newMemoService(repo, &stubUploads{})
	ctx := context.Background()

	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	memo := &Memo{OwnerID: owner, Title: "groceries"}
	if err := svc.CreateMemo(ctx, memo); err != nil {
		t.Fatalf("CreateMemo() error = %v", err)
	}

	if _, err := svc.GetMemo(ctx, memo.ID.Hex(), owner); err != nil {
		t.Errorf("owner GetMemo() error = %v", err)
	}
	if _, err := svc.GetMemo(ctx, memo.ID.Hex(), stranger); !errors.Is(err, ErrNotOwner) {
		t.Errorf("stranger GetMemo() error = %v, want ErrNotOwner", err)
	}
}

func TestUpdateMemoPreservesOwnerAndCreatedAt(t *testing.T) {
	repo := newFakeMemoRepo()
	svc := newMemoService(repo, &stubUploads{})
	ctx := context.Background()

	owner := primitive.NewObjectID()
	memo := &Memo{OwnerID: owner, Title: "draft"}
	if err := svc.CreateMemo(ctx, memo); err != nil {
		t.Fatalf("CreateMemo() error = %v", err)
	}

	update := &Memo{
		ID:      memo.ID,
		OwnerID: primitive.NewObjectID(), // attempted owner hijack
		Title:   "final",
		Pinned:  true,
	}
	if err := svc.UpdateMemo(ctx, update, owner); err != nil {
		t.Fatalf("UpdateMemo() error = %v", err)
	}

	stored, err := repo.Get(ctx, memo.ID.Hex())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.OwnerID != owner {
		t.Error("update changed the owner")
	}
	if !stored.CreatedAt.Equal(memo.CreatedAt) {
		t.Error("update changed createdAt")
	}
	if stored.Title != "final" || !stored.Pinned {
		t.Errorf("update not applied: %+v", stored)
	}
}

func TestUpdateMemoRejectsNonOwner(t *testing.T) {
	repo := newFakeMemoRepo()
	svc := newMemoService(repo, &stubUploads{})
	ctx := context.Background()

	memo := &Memo{OwnerID: primitive.NewObjectID(), Title: "mine"}
	if err := svc.CreateMemo(ctx, memo); err != nil {
		t.Fatalf("CreateMemo() error = %v", err)
	}

	update := &Memo{ID: memo.ID, Title: "stolen"}
	if err := svc.UpdateMemo(ctx, update, primitive.NewObjectID()); !errors.Is(err, ErrNotOwner) {
		t.Errorf("error = %v, want ErrNotOwner", err)
	}
}

func TestDeleteMemoCleansUpAttachments(t *testing.T) {
	repo := newFakeMemoRepo()
	uploads := &stubUploads{}
	svc := newMemoService(repo, uploads)
	ctx := context.Background()

	owner := primitive.NewObjectID()
	memo := &Memo{OwnerID: owner, Title: "with files"}
	if err := svc.CreateMemo(ctx, memo); err != nil {
		t.Fatalf("CreateMemo() error = %v", err)
	}

	if err := svc.DeleteMemo(ctx, memo.ID.Hex(), owner); err != nil {
		t.Fatalf("DeleteMemo() error = %v", err)
	}

	if _, err := repo.Get(ctx, memo.ID.Hex()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("memo still present after delete: %v", err)
	}
	if len(uploads.cleaned) != 1 || uploads.cleaned[0] != upload.RefID(memo.ID.Hex()) {
		t.Errorf("attachment cleanup calls = %v", uploads.cleaned)
	}
}

func TestDeleteMemoSurvivesCleanupFailure(t *testing.T) {
	repo := newFakeMemoRepo()
	uploads := &stubUploads{err: errors.New("blob store down")}
	svc := newMemoService(repo, uploads)
	ctx := context.Background()

	owner := primitive.NewObjectID()
	memo := &Memo{OwnerID: owner, Title: "doomed"}
	if err := svc.CreateMemo(ctx, memo); err != nil {
		t.Fatalf("CreateMemo() error = %v", err)
	}

	if err := svc.DeleteMemo(ctx, memo.ID.Hex(), owner); err != nil {
		t.Errorf("DeleteMemo() error = %v, cleanup failures must not surface", err)
	}
}
