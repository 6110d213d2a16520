package validators

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// multipartMemory is how much of a form is buffered before spilling to disk.
const multipartMemory = 32 << 20

// ParseMultipart parses a multipart form. A plain urlencoded body is accepted
// too so the image fields stay optional.
func ParseMultipart(r *http.Request) error {
	err := r.ParseMultipartForm(multipartMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		if errors.Is(err, http.ErrNotMultipart) {
			if perr := r.ParseForm(); perr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, perr, "invalid form body")
			}
		}
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body")
}

// FormValue returns a trimmed form value and whether the field was sent at all.
func FormValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm != nil {
		if values, ok := r.MultipartForm.Value[key]; ok && len(values) > 0 {
			return strings.TrimSpace(values[0]), true
		}
	}
	if values, ok := r.PostForm[key]; ok && len(values) > 0 {
		return strings.TrimSpace(values[0]), true
	}
	return "", false
}

// FormFiles returns the uploaded files for key, rejecting any larger than maxBytes.
func FormFiles(r *http.Request, key string, maxBytes int64) ([]*multipart.FileHeader, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File[key]
	for _, fh := range files {
		if maxBytes > 0 && fh.Size > maxBytes {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "file too large").
				WithDetails(map[string]any{"field": key, "file": fh.Filename, "maxBytes": maxBytes})
		}
	}
	return files, nil
}
