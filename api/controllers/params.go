package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/validators"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func pageParams(r *http.Request) (int, int, error) {
	page, err := validators.ParseQueryInt(r, "page", 0, 1, 1<<20)
	if err != nil {
		return 0, 0, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func queryDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	return parseDecimal(raw, key)
}

func parseDecimal(raw, field string) (*decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "must be a number").WithDetails(map[string]any{"field": field})
	}
	return &d, nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
}

// formDecimal reads an optional numeric form field.
func formDecimal(r *http.Request, key string) (*decimal.Decimal, bool, error) {
	raw, ok := validators.FormValue(r, key)
	if !ok || raw == "" {
		return nil, ok, nil
	}
	d, err := parseDecimal(raw, key)
	return d, true, err
}

func formInt(r *http.Request, key string) (*int, error) {
	raw, ok := validators.FormValue(r, key)
	if !ok || raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "must be an integer").WithDetails(map[string]any{"field": key})
	}
	return &n, nil
}

func formBool(r *http.Request, key string) (*bool, error) {
	raw, ok := validators.FormValue(r, key)
	if !ok || raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "must be a boolean").WithDetails(map[string]any{"field": key})
	}
	return &b, nil
}

func formUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw, ok := validators.FormValue(r, key)
	if !ok || raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]any{"field": key})
	}
	return &id, nil
}

// formTagIDs decodes the JSON array string the admin UI sends as tagIds.
// The second result reports whether the field was present.
func formTagIDs(r *http.Request) ([]uuid.UUID, bool, error) {
	raw, ok := validators.FormValue(r, "tagIds")
	if !ok {
		return nil, false, nil
	}
	if raw == "" {
		return []uuid.UUID{}, true, nil
	}
	var ids []uuid.UUID
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, true, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "tagIds must be a JSON array of ids")
	}
	return ids, true, nil
}

// optionalUUID treats an empty string as absent.
func optionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]any{"field": field})
	}
	return &id, nil
}
