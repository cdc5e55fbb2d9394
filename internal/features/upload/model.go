package upload

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Domain partitions uploads by purpose. It decides the storage prefix and
// which entity the reference id points at.
type Domain string

const (
	DomainMemo          Domain = "memo"
	DomainProfileImage  Domain = "profile-image"
	DomainTemplateImage Domain = "template-image"
	DomainAttachment    Domain = "attachment"
)

// ParseDomain validates a caller-supplied domain string
func ParseDomain(s string) (Domain, error) {
	switch Domain(s) {
	case DomainMemo, DomainProfileImage, DomainTemplateImage, DomainAttachment:
		return Domain(s), nil
	}
	return "", fmt.Errorf("%w: unknown file domain %q", ErrValidation, s)
}

type Status string

const (
	StatusActive     Status = "active"
	StatusProcessing Status = "processing"
	StatusDeleted    Status = "deleted"
	StatusFailed     Status = "failed"
)

// RefID is an opaque foreign-key value compared by its canonical string
// form. Both the owning entity id and the uploader id use it.
type RefID string

func RefIDFromObjectID(id primitive.ObjectID) RefID {
	return RefID(id.Hex())
}

// VariantName identifies one of the fixed resize targets.
type VariantName string

const (
	VariantThumbnail VariantName = "thumbnail"
	VariantSmall     VariantName = "small"
	VariantMedium    VariantName = "medium"
	VariantLarge     VariantName = "large"
)

// VariantSpec describes one resize target. Fit is always "cover, never
// enlarge" at the given quality.
type VariantSpec struct {
	Name    VariantName
	Width   int
	Height  int
	Quality int
}

// DefaultVariantSpecs returns the four standard sizes at quality 85
func DefaultVariantSpecs() []VariantSpec {
	return []VariantSpec{
		{Name: VariantThumbnail, Width: 150, Height: 150, Quality: 85},
		{Name: VariantSmall, Width: 300, Height: 300, Quality: 85},
		{Name: VariantMedium, Width: 600, Height: 600, Quality: 85},
		{Name: VariantLarge, Width: 1200, Height: 1200, Quality: 85},
	}
}

// ObjectMeta describes one stored blob, the original or a resized copy.
// MimeType and Extension are only set on the original.
type ObjectMeta struct {
	Filename  string `json:"filename" bson:"filename"`
	Path      string `json:"path" bson:"path"`
	URL       string `json:"url" bson:"url"`
	Size      int64  `json:"size" bson:"size"`
	MimeType  string `json:"mime_type,omitempty" bson:"mime_type,omitempty"`
	Extension string `json:"extension,omitempty" bson:"extension,omitempty"`
	Width     int    `json:"width,omitempty" bson:"width,omitempty"`
	Height    int    `json:"height,omitempty" bson:"height,omitempty"`
}

type AssetMetadata struct {
	Original ObjectMeta                 `json:"original" bson:"original"`
	Resized  map[VariantName]ObjectMeta `json:"resized" bson:"resized"`
}

type AssetStats struct {
	Downloads      int64      `json:"downloads" bson:"downloads"`
	Views          int64      `json:"views" bson:"views"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty" bson:"last_accessed_at,omitempty"`
}

// FileAsset is one uploaded object plus its resize variants
type FileAsset struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OriginalName string             `json:"original_name" bson:"original_name"`
	Domain       Domain             `json:"domain" bson:"domain"`
	RefID        RefID              `json:"ref_id" bson:"ref_id"`
	UploadedBy   RefID              `json:"uploaded_by" bson:"uploaded_by"`
	Metadata     AssetMetadata      `json:"metadata" bson:"metadata"`
	Status       Status             `json:"status" bson:"status"`
	Tags         []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
	IsPublic     bool               `json:"is_public" bson:"is_public"`
	ExpiresAt    *time.Time         `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	Stats        AssetStats         `json:"stats" bson:"stats"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// NormalizeTags lowercases, trims and dedupes caller-supplied tags
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
