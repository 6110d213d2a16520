package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type cartRequest struct {
	Items      []orders.CartLine `json:"items"`
	CouponCode string            `json:"couponCode"`
}

type createOrderRequest struct {
	FirstName      string            `json:"firstName"`
	LastName       string            `json:"lastName"`
	Address        string            `json:"address"`
	MobileNumber   string            `json:"mobileNumber"`
	AnotherMobile  *string           `json:"anotherMobile"`
	AnotherAddress *string           `json:"anotherAddress"`
	CustomerEmail  *string           `json:"customerEmail" validate:"omitempty,email"`
	Items          []orders.CartLine `json:"items"`
	CouponCode     string            `json:"couponCode"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ApplyCoupon prices a cart without persisting anything.
func ApplyCoupon(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body cartRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.Quote(r.Context(), orders.QuoteInput{Items: body.Items, CouponCode: strings.TrimSpace(body.CouponCode)})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Create(r.Context(), orders.CreateInput{
			FirstName:      strings.TrimSpace(body.FirstName),
			LastName:       strings.TrimSpace(body.LastName),
			Address:        strings.TrimSpace(body.Address),
			MobileNumber:   strings.TrimSpace(body.MobileNumber),
			AnotherMobile:  blankToNil(body.AnotherMobile),
			AnotherAddress: blankToNil(body.AnotherAddress),
			CustomerEmail:  blankToNil(body.CustomerEmail),
			Items:          body.Items,
			CouponCode:     strings.TrimSpace(body.CouponCode),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// AdminListOrders filters by status and an optional created-at day range in loc.
func AdminListOrders(svc orders.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := orders.ListParams{
			Page:   page,
			Limit:  limit,
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
		}
		if params.StartDate, err = validators.ParseQueryDate(r, "startDate", loc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.EndDate, err = validators.ParseQueryDate(r, "endDate", loc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AdminGetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func AdminUpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.UpdateStatus(r.Context(), id, body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
