package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/campus-api/internal/models"
	appErrors "github.com/campushq/campus-api/pkg/errors"
)

type resourceStore interface {
	Create(ctx context.Context, resource *models.Resource) error
	FindByID(ctx context.Context, id string) (*models.Resource, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Resource, error)
	Delete(ctx context.Context, id string) error
}

type fileStore interface {
	SaveStream(originalName string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type urlSigner interface {
	Generate(resourceID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (resourceID, relPath string, expiresAt time.Time, err error)
}

// DownloadLink is a signed, expiring reference to one stored file.
type DownloadLink struct {
	ResourceID string    `json:"resource_id"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ResourceService manages course material uploads. Bytes go to the storage
// backend under a generated unique filename; downloads go through signed
// tokens so the file path never leaves the server unsigned.
type ResourceService struct {
	resources resourceStore
	files     fileStore
	signer    urlSigner
	maxBytes  int64
	logger    *zap.Logger
}

// NewResourceService constructs a ResourceService.
func NewResourceService(resources resourceStore, files fileStore, signer urlSigner, maxBytes int64, logger *zap.Logger) *ResourceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	return &ResourceService{resources: resources, files: files, signer: signer, maxBytes: maxBytes, logger: logger}
}

// Upload stores the stream and records its metadata.
func (s *ResourceService) Upload(ctx context.Context, courseID, uploadedBy, originalName, contentType string, size int64, r io.Reader) (*models.Resource, error) {
	if courseID == "" || originalName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course and filename are required")
	}
	if size > s.maxBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file exceeds the upload size limit")
	}

	storedName, err := s.files.SaveStream(originalName, io.LimitReader(r, s.maxBytes))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	resource := &models.Resource{
		CourseID:     courseID,
		UploadedBy:   uploadedBy,
		OriginalName: originalName,
		StoredName:   storedName,
		SizeBytes:    size,
		ContentType:  contentType,
	}
	if err := s.resources.Create(ctx, resource); err != nil {
		// Orphaned file cleanup; the metadata row is the source of truth.
		if removeErr := s.files.Delete(storedName); removeErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("stored_name", storedName), zap.Error(removeErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record resource")
	}
	return resource, nil
}

// ListByCourse returns a course's materials.
func (s *ResourceService) ListByCourse(ctx context.Context, courseID string) ([]models.Resource, error) {
	resources, err := s.resources.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list resources")
	}
	return resources, nil
}

// Link issues a signed download token for a resource.
func (s *ResourceService) Link(ctx context.Context, resourceID string) (*DownloadLink, error) {
	resource, err := s.load(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(resource.ID, resource.StoredName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &DownloadLink{ResourceID: resource.ID, Token: token, ExpiresAt: expiresAt}, nil
}

// Open validates a signed token and returns the file plus its metadata.
// The caller owns closing the file.
func (s *ResourceService) Open(ctx context.Context, token string) (*models.Resource, *os.File, error) {
	resourceID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}
	resource, err := s.load(ctx, resourceID)
	if err != nil {
		return nil, nil, err
	}
	if resource.StoredName != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "token does not match resource")
	}
	file, err := s.files.Open(resource.StoredName)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open stored file")
	}
	return resource, file, nil
}

// Delete removes the metadata row and the stored file.
func (s *ResourceService) Delete(ctx context.Context, resourceID string) error {
	resource, err := s.load(ctx, resourceID)
	if err != nil {
		return err
	}
	if err := s.resources.Delete(ctx, resourceID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete resource")
	}
	if err := s.files.Delete(resource.StoredName); err != nil {
		s.logger.Warn("failed to delete stored file", zap.String("stored_name", resource.StoredName), zap.Error(err))
	}
	return nil
}

func (s *ResourceService) load(ctx context.Context, resourceID string) (*models.Resource, error) {
	resource, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	return resource, nil
}
