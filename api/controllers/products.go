package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const maxSearchQueryLen = 100

// ListProducts serves the public catalog listing.
func ListProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter, err := listFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), products.ListParams{Page: page, Limit: limit, ListFilter: filter})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func SearchProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		base, err := listFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Search(r.Context(), products.SearchParams{
			Page:  page,
			Limit: limit,
			SearchFilter: products.SearchFilter{
				Query:      validators.SanitizeString(r.URL.Query().Get("q"), maxSearchQueryLen),
				CategoryID: base.CategoryID,
				MinPrice:   base.MinPrice,
				MaxPrice:   base.MaxPrice,
				Active:     base.Active,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ListCatalogTaxonomy returns categories and tags for storefront filters.
func ListCatalogTaxonomy(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active, err := validators.ParseQueryBool(r, "active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listing, err := svc.ListAll(r.Context(), active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// AdminCreateProduct accepts the multipart product form with mainImage and images[].
func AdminCreateProduct(svc products.Service, media config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := validators.ParseMultipart(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, uploads, err := createProductInput(r, media)
		defer uploads.Close()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AdminUpdateProduct(svc products.Service, media config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validators.ParseMultipart(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, uploads, err := updateProductInput(r, media)
		defer uploads.Close()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminDeleteProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "Product deleted successfully"})
	}
}

func listFilter(r *http.Request) (products.ListFilter, error) {
	var filter products.ListFilter
	var err error
	if filter.CategoryID, err = validators.ParseQueryUUID(r, "categoryId"); err != nil {
		return filter, err
	}
	if filter.MinPrice, err = queryDecimal(r, "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = queryDecimal(r, "maxPrice"); err != nil {
		return filter, err
	}
	if filter.Active, err = validators.ParseQueryBool(r, "active"); err != nil {
		return filter, err
	}
	filter.Tag = strings.TrimSpace(r.URL.Query().Get("tag"))
	return filter, nil
}

func createProductInput(r *http.Request, media config.MediaConfig) (products.CreateInput, *openedUploads, error) {
	uploads := &openedUploads{}
	var input products.CreateInput

	input.Name, _ = validators.FormValue(r, "name")
	input.Description, _ = validators.FormValue(r, "description")

	price, _, err := formDecimal(r, "price")
	if err != nil {
		return input, uploads, err
	}
	if price == nil {
		return input, uploads, pkgerrors.New(pkgerrors.CodeValidation, "price is required")
	}
	input.Price = *price

	if input.PreviousPrice, _, err = formDecimal(r, "previousPrice"); err != nil {
		return input, uploads, err
	}
	stock, err := formInt(r, "stock")
	if err != nil {
		return input, uploads, err
	}
	if stock != nil {
		input.Stock = *stock
	}
	categoryID, err := formUUID(r, "categoryId")
	if err != nil {
		return input, uploads, err
	}
	if categoryID == nil {
		return input, uploads, pkgerrors.New(pkgerrors.CodeValidation, "categoryId is required")
	}
	input.CategoryID = *categoryID

	if input.TagIDs, _, err = formTagIDs(r); err != nil {
		return input, uploads, err
	}
	if input.MainImage, err = uploads.openOne(r, "mainImage", media.MaxUploadBytes()); err != nil {
		return input, uploads, err
	}
	if input.Images, err = uploads.openGallery(r, media.MaxUploadBytes()); err != nil {
		return input, uploads, err
	}
	return input, uploads, nil
}

func updateProductInput(r *http.Request, media config.MediaConfig) (products.UpdateInput, *openedUploads, error) {
	uploads := &openedUploads{}
	var input products.UpdateInput
	var err error

	if v, ok := validators.FormValue(r, "name"); ok && v != "" {
		input.Name = &v
	}
	if v, ok := validators.FormValue(r, "description"); ok {
		input.Description = &v
	}
	if input.Price, _, err = formDecimal(r, "price"); err != nil {
		return input, uploads, err
	}
	prev, present, err := formDecimal(r, "previousPrice")
	if err != nil {
		return input, uploads, err
	}
	input.PreviousPrice = prev
	input.ClearPreviousPrice = present && prev == nil

	if input.Stock, err = formInt(r, "stock"); err != nil {
		return input, uploads, err
	}
	if input.CategoryID, err = formUUID(r, "categoryId"); err != nil {
		return input, uploads, err
	}
	if input.IsActive, err = formBool(r, "isActive"); err != nil {
		return input, uploads, err
	}
	tagIDs, present, err := formTagIDs(r)
	if err != nil {
		return input, uploads, err
	}
	if present {
		input.TagIDs = &tagIDs
	}
	if input.MainImage, err = uploads.openOne(r, "mainImage", media.MaxUploadBytes()); err != nil {
		return input, uploads, err
	}
	if input.Images, err = uploads.openGallery(r, media.MaxUploadBytes()); err != nil {
		return input, uploads, err
	}
	return input, uploads, nil
}
