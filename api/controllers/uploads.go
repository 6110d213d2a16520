package controllers

import (
	"mime/multipart"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/media"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"go.uber.org/multierr"
)

// openedUploads holds the multipart files handed to a service call. Close
// must run once the call returns.
type openedUploads struct {
	files []multipart.File
}

func (o *openedUploads) Close() error {
	var err error
	for _, f := range o.files {
		err = multierr.Append(err, f.Close())
	}
	o.files = nil
	return err
}

// open reads the named file field into media uploads, enforcing maxBytes per file.
func (o *openedUploads) open(r *http.Request, field string, maxBytes int64) ([]media.Upload, error) {
	headers, err := validators.FormFiles(r, field, maxBytes)
	if err != nil {
		return nil, err
	}
	out := make([]media.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable upload").
				WithDetails(map[string]any{"field": field, "file": fh.Filename})
		}
		o.files = append(o.files, f)
		out = append(out, media.Upload{Filename: fh.Filename, Size: fh.Size, Content: f})
	}
	return out, nil
}

// openOne returns the first file of field, or nil when none was sent.
func (o *openedUploads) openOne(r *http.Request, field string, maxBytes int64) (*media.Upload, error) {
	uploads, err := o.open(r, field, maxBytes)
	if err != nil || len(uploads) == 0 {
		return nil, err
	}
	return &uploads[0], nil
}

// openGallery reads the product gallery, which form libraries send as either
// images or images[].
func (o *openedUploads) openGallery(r *http.Request, maxBytes int64) ([]media.Upload, error) {
	var out []media.Upload
	for _, field := range []string{"images", "images[]"} {
		uploads, err := o.open(r, field, maxBytes)
		if err != nil {
			return nil, err
		}
		out = append(out, uploads...)
	}
	return out, nil
}
