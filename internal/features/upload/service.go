package upload

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"go-memo/internal/config"

	"go.uber.org/zap"
)

// RawFile describes an already-stored upload handed to RegisterAsset
type RawFile struct {
	OriginalName string
	StoredName   string
	StoredPath   string
	Size         int64
	MimeType     string
}

// RegisterOptions carries the optional attributes of a new asset
type RegisterOptions struct {
	Tags        []string
	Description string
	IsPublic    bool
	ExpiresAt   *time.Time
}

type UploadService interface {
	RegisterAsset(ctx context.Context, raw RawFile, domain Domain, refID, uploadedBy RefID, opts RegisterOptions) (*FileAsset, error)
	GenerateVariants(ctx context.Context, asset *FileAsset, specs []VariantSpec) (*FileAsset, error)
	GetAsset(ctx context.Context, id string) (*FileAsset, error)
	SoftDelete(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
	HardDeleteByDomainRef(ctx context.Context, domain Domain, refID RefID) error
	QueryByDomain(ctx context.Context, domain Domain, refID RefID) ([]*FileAsset, error)
	QueryByUploader(ctx context.Context, uploader RefID, q UploaderQuery) ([]*FileAsset, error)
	RecordView(ctx context.Context, asset *FileAsset)
	RecordDownload(ctx context.Context, asset *FileAsset)
	AggregateStats(ctx context.Context) (*StorageStats, error)
}

type UploadServiceImpl struct {
	Repo      AssetRepository
	Blobs     BlobStore
	Variants  VariantGenerator // nil disables variant generation
	URLPrefix string
	Logger    *zap.Logger
}

func NewUploadService(repo AssetRepository, blobs BlobStore, variants VariantGenerator, cfg *config.Config, logger *zap.Logger) UploadService {
	return &UploadServiceImpl{
		Repo:      repo,
		Blobs:     blobs,
		Variants:  variants,
		URLPrefix: strings.TrimRight(cfg.FSURL, "/"),
		Logger:    logger,
	}
}

func isImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// RegisterAsset persists the metadata record for an already-stored blob.
// For images it probes intrinsic dimensions; a probe failure only leaves
// them unset.
func (s *UploadServiceImpl) RegisterAsset(ctx context.Context, raw RawFile, domain Domain, refID, uploadedBy RefID, opts RegisterOptions) (*FileAsset, error) {
	if _, err := ParseDomain(string(domain)); err != nil {
		return nil, err
	}
	if refID == "" || uploadedBy == "" {
		return nil, fmt.Errorf("%w: reference id and uploader id are required", ErrValidation)
	}
	if raw.OriginalName == "" || len(raw.OriginalName) > 255 {
		return nil, fmt.Errorf("%w: original name must be 1-255 characters", ErrValidation)
	}
	if len(opts.Description) > 500 {
		return nil, fmt.Errorf("%w: description must be at most 500 characters", ErrValidation)
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(raw.OriginalName), "."))

	original := ObjectMeta{
		Filename:  raw.StoredName,
		Path:      raw.StoredPath,
		URL:       s.URLPrefix + "/" + raw.StoredPath,
		Size:      raw.Size,
		MimeType:  raw.MimeType,
		Extension: ext,
	}

	if isImage(raw.MimeType) && s.Variants != nil {
		if data, err := s.Blobs.Read(raw.StoredPath); err != nil {
			s.Logger.Warn("could not read blob for dimension probe",
				zap.String("path", raw.StoredPath), zap.Error(err))
		} else if dims, err := s.Variants.ProbeDimensions(data); err != nil {
			s.Logger.Warn("could not probe image dimensions",
				zap.String("path", raw.StoredPath), zap.Error(err))
		} else {
			original.Width = dims.Width
			original.Height = dims.Height
		}
	}

	now := time.Now()
	asset := &FileAsset{
		OriginalName: raw.OriginalName,
		Domain:       domain,
		RefID:        refID,
		UploadedBy:   uploadedBy,
		Metadata: AssetMetadata{
			Original: original,
			Resized:  make(map[VariantName]ObjectMeta),
		},
		Status:      StatusActive,
		Tags:        NormalizeTags(opts.Tags),
		Description: opts.Description,
		IsPublic:    opts.IsPublic,
		ExpiresAt:   opts.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Repo.Insert(ctx, asset); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return asset, nil
}

// GenerateVariants derives the named resized copies of an image asset.
// Each successful variant is persisted immediately, so partial progress
// survives a crash mid-loop. On the first failure the asset is left in
// status "failed" with the earlier variants intact.
func (s *UploadServiceImpl) GenerateVariants(ctx context.Context, asset *FileAsset, specs []VariantSpec) (*FileAsset, error) {
	if s.Variants == nil || !isImage(asset.Metadata.Original.MimeType) {
		return asset, nil
	}
	if len(specs) == 0 {
		specs = DefaultVariantSpecs()
	}

	asset.Status = StatusProcessing
	if err := s.Repo.Update(ctx, asset); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	original, err := s.Blobs.Read(asset.Metadata.Original.Path)
	if err != nil {
		return s.failVariants(ctx, asset, specs[0].Name, err)
	}

	dir := path.Dir(asset.Metadata.Original.Path)
	stem := strings.TrimSuffix(asset.Metadata.Original.Filename, path.Ext(asset.Metadata.Original.Filename))
	ext := path.Ext(asset.Metadata.Original.Filename)

	for _, spec := range specs {
		data, dims, err := s.Variants.Resize(original, spec)
		if err != nil {
			return s.failVariants(ctx, asset, spec.Name, err)
		}

		filename := fmt.Sprintf("%s_%s%s", stem, spec.Name, ext)
		variantPath := dir + "/" + filename
		if err := s.Blobs.Write(variantPath, data); err != nil {
			return s.failVariants(ctx, asset, spec.Name, err)
		}

		asset.Metadata.Resized[spec.Name] = ObjectMeta{
			Filename: filename,
			Path:     variantPath,
			URL:      s.URLPrefix + "/" + variantPath,
			Size:     int64(len(data)),
			Width:    dims.Width,
			Height:   dims.Height,
		}
		if err := s.Repo.Update(ctx, asset); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	asset.Status = StatusActive
	if err := s.Repo.Update(ctx, asset); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return asset, nil
}

func (s *UploadServiceImpl) failVariants(ctx context.Context, asset *FileAsset, name VariantName, cause error) (*FileAsset, error) {
	asset.Status = StatusFailed
	if err := s.Repo.Update(ctx, asset); err != nil {
		s.Logger.Error("could not persist failed status",
			zap.String("asset_id", asset.ID.Hex()), zap.Error(err))
	}
	return nil, &VariantError{Variant: name, Err: cause}
}

func (s *UploadServiceImpl) GetAsset(ctx context.Context, id string) (*FileAsset, error) {
	return s.Repo.Get(ctx, id)
}

// SoftDelete marks the asset deleted while keeping the record and its
// blobs. Deleting an already-deleted asset is a normal update.
func (s *UploadServiceImpl) SoftDelete(ctx context.Context, id string) error {
	asset, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	asset.Status = StatusDeleted
	if err := s.Repo.Update(ctx, asset); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// HardDelete removes the blobs best-effort, then removes the metadata
// record unconditionally.
func (s *UploadServiceImpl) HardDelete(ctx context.Context, id string) error {
	asset, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Blobs.Delete(asset.Metadata.Original.Path); err != nil {
		s.Logger.Warn("could not delete original blob",
			zap.String("path", asset.Metadata.Original.Path), zap.Error(err))
	}
	for name, variant := range asset.Metadata.Resized {
		if err := s.Blobs.Delete(variant.Path); err != nil {
			s.Logger.Warn("could not delete variant blob",
				zap.String("variant", string(name)),
				zap.String("path", variant.Path), zap.Error(err))
		}
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// HardDeleteByDomainRef removes every active asset owned by the given
// entity. Used when the owning memo or template goes away.
func (s *UploadServiceImpl) HardDeleteByDomainRef(ctx context.Context, domain Domain, refID RefID) error {
	assets, err := s.Repo.FindByDomainRef(ctx, domain, refID)
	if err != nil {
		return err
	}
	for _, asset := range assets {
		if err := s.HardDelete(ctx, asset.ID.Hex()); err != nil {
			return err
		}
	}
	return nil
}

func (s *UploadServiceImpl) QueryByDomain(ctx context.Context, domain Domain, refID RefID) ([]*FileAsset, error) {
	return s.Repo.FindByDomainRef(ctx, domain, refID)
}

func (s *UploadServiceImpl) QueryByUploader(ctx context.Context, uploader RefID, q UploaderQuery) ([]*FileAsset, error) {
	return s.Repo.FindByUploader(ctx, uploader, q)
}

// RecordView bumps the view counter. Failures are logged and swallowed:
// access tracking must never block the read that triggered it.
func (s *UploadServiceImpl) RecordView(ctx context.Context, asset *FileAsset) {
	s.recordStat(ctx, asset, "stats.views", &asset.Stats.Views)
}

// RecordDownload bumps the download counter, same policy as RecordView
func (s *UploadServiceImpl) RecordDownload(ctx context.Context, asset *FileAsset) {
	s.recordStat(ctx, asset, "stats.downloads", &asset.Stats.Downloads)
}

func (s *UploadServiceImpl) recordStat(ctx context.Context, asset *FileAsset, field string, counter *int64) {
	now := time.Now()
	if err := s.Repo.IncrementStat(ctx, asset.ID, field, now); err != nil {
		s.Logger.Warn("could not record asset access",
			zap.String("asset_id", asset.ID.Hex()),
			zap.String("field", field), zap.Error(err))
		return
	}
	*counter++
	asset.Stats.LastAccessedAt = &now
}

func (s *UploadServiceImpl) AggregateStats(ctx context.Context) (*StorageStats, error) {
	return s.Repo.AggregateStats(ctx)
}
