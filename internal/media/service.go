package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Folders objects are grouped under inside the bucket.
const (
	FolderProducts   = "products"
	FolderCategories = "categories"
)

// ObjectStore is the slice of the GCS client the service needs.
type ObjectStore interface {
	Upload(ctx context.Context, object, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, object string) error
	ObjectFromURL(raw string) (string, bool)
}

// Upload is one multipart file part.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// Service hosts catalog images and returns permanent public URLs.
type Service interface {
	UploadImage(ctx context.Context, folder string, file Upload) (string, error)
	UploadImages(ctx context.Context, folder string, files []Upload) ([]string, error)
	DeleteImages(ctx context.Context, urls ...string) error
}

type service struct {
	store    ObjectStore
	maxBytes int64
	logg     *logger.Logger
}

// NewService builds the image service. A nil store is allowed: every upload
// then fails with a dependency error so the rest of the API keeps working
// without a bucket.
func NewService(store ObjectStore, cfg config.MediaConfig, logg *logger.Logger) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, maxBytes: cfg.MaxUploadBytes(), logg: logg}, nil
}

func (s *service) UploadImage(ctx context.Context, folder string, file Upload) (string, error) {
	if s.store == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "image storage is not configured")
	}
	if file.Content == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image file is empty")
	}
	if file.Size > s.maxBytes {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "%s exceeds the %d MB upload limit", displayName(file), s.maxBytes>>20)
	}

	data, err := io.ReadAll(io.LimitReader(file.Content, s.maxBytes+1))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "could not read uploaded image")
	}
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image file is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "%s exceeds the %d MB upload limit", displayName(file), s.maxBytes>>20)
	}

	contentType, ext, err := sniffImage(data)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("%s is not a supported image", displayName(file)))
	}

	object := objectName(folder, ext)
	url, err := s.store.Upload(ctx, object, contentType, bytes.NewReader(data))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "image upload failed")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"object":       object,
		"content_type": contentType,
		"size_bytes":   len(data),
	}), "media.image_uploaded")
	return url, nil
}

// UploadImages uploads in order. If any upload fails the ones already
// stored are removed so a rejected request leaves no orphans.
func (s *service) UploadImages(ctx context.Context, folder string, files []Upload) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, file := range files {
		url, err := s.UploadImage(ctx, folder, file)
		if err != nil {
			if cleanupErr := s.DeleteImages(ctx, urls...); cleanupErr != nil {
				s.logg.Warn(s.logg.WithField(ctx, "cleanup_error", cleanupErr.Error()), "media.rollback_incomplete")
			}
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// DeleteImages removes hosted objects. URLs that do not belong to the bucket
// are ignored.
func (s *service) DeleteImages(ctx context.Context, urls ...string) error {
	if s.store == nil {
		return nil
	}
	var errs error
	for _, raw := range urls {
		object, ok := s.store.ObjectFromURL(raw)
		if !ok {
			continue
		}
		if err := s.store.Delete(ctx, object); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete %s: %w", object, err))
		}
	}
	return errs
}

func objectName(folder, ext string) string {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		folder = "misc"
	}
	return path.Join(folder, uuid.NewString()+strings.ToLower(ext))
}

func displayName(file Upload) string {
	if name := strings.TrimSpace(file.Filename); name != "" {
		return name
	}
	return "image"
}
