package controllers

import (
	"mime"
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type updateCatalogItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
	ImageURL    *string `json:"imageUrl"`
}

// AdminCreateCatalogItem creates a category or tag from a multipart form with
// an optional image.
func AdminCreateCatalogItem(svc categories.Service, media config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := validators.ParseMultipart(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rawType, _ := validators.FormValue(r, "type")
		name, _ := validators.FormValue(r, "name")
		if rawType == "" || name == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Name and type are required."))
			return
		}
		kind, err := enums.ParseCatalogKind(rawType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid type."))
			return
		}

		input := categories.CreateInput{Name: name}
		input.Description, _ = validators.FormValue(r, "description")
		if input.IsActive, err = formBool(r, "isActive"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		uploads := &openedUploads{}
		defer uploads.Close()
		if input.Image, err = uploads.openOne(r, "image", media.MaxUploadBytes()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), kind, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// AdminUpdateCatalogItem handles PUT /{type}/{id}. JSON bodies update fields;
// multipart bodies may also carry a replacement image.
func AdminUpdateCatalogItem(svc categories.Service, media config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, id, err := catalogPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		uploads := &openedUploads{}
		defer uploads.Close()

		var input categories.UpdateInput
		if isMultipart(r) {
			if err := validators.ParseMultipart(r); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if v, ok := validators.FormValue(r, "name"); ok {
				input.Name = &v
			}
			if v, ok := validators.FormValue(r, "description"); ok {
				input.Description = &v
			}
			if input.IsActive, err = formBool(r, "isActive"); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if input.Image, err = uploads.openOne(r, "image", media.MaxUploadBytes()); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		} else {
			var body updateCatalogItemRequest
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input = categories.UpdateInput{
				Name:        body.Name,
				Description: body.Description,
				IsActive:    body.IsActive,
				ImageURL:    body.ImageURL,
			}
		}

		item, err := svc.Update(r.Context(), kind, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func AdminDeleteCatalogItem(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, id, err := catalogPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), kind, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": strings.ToUpper(kind.String()[:1]) + kind.String()[1:] + " deleted successfully"})
	}
}

func catalogPath(r *http.Request) (enums.CatalogKind, uuid.UUID, error) {
	kind, err := enums.ParseCatalogKind(chi.URLParam(r, "type"))
	if err != nil {
		return "", uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "Invalid type.")
	}
	id, err := pathID(r)
	if err != nil {
		return "", uuid.Nil, err
	}
	return kind, id, nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}
