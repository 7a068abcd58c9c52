package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greencartlabs/greencart-backend/api/responses"
	"github.com/greencartlabs/greencart-backend/api/validators"
	product "github.com/greencartlabs/greencart-backend/internal/products"
	"github.com/greencartlabs/greencart-backend/pkg/enums"
	pkgerrors "github.com/greencartlabs/greencart-backend/pkg/errors"
	"github.com/greencartlabs/greencart-backend/pkg/logger"
	"github.com/greencartlabs/greencart-backend/pkg/types"
)

type productRequest struct {
	Name          string          `json:"name" validate:"required"`
	Description   *string         `json:"description,omitempty"`
	CategoryID    *string         `json:"category_id,omitempty"`
	SubcategoryID *string         `json:"subcategory_id,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Discount      decimal.Decimal `json:"discount"`
	Variants      types.Variants  `json:"variants,omitempty"`
	Stock         int             `json:"stock"`
	Status        string          `json:"status,omitempty"`
	Images        []string        `json:"images,omitempty"`
}

type productPage struct {
	Products   any    `json:"products"`
	NextCursor string `json:"next_cursor,omitempty"`
}

func (p productRequest) toInput() (product.CreateInput, error) {
	input := product.CreateInput{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Discount:    p.Discount,
		Variants:    p.Variants,
		Stock:       p.Stock,
		Images:      p.Images,
	}
	if p.Status != "" {
		status, err := enums.ParseProductStatus(p.Status)
		if err != nil {
			return product.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product status")
		}
		input.Status = status
	}
	var err error
	if input.CategoryID, err = parseOptionalID(p.CategoryID, "category id"); err != nil {
		return product.CreateInput{}, err
	}
	if input.SubcategoryID, err = parseOptionalID(p.SubcategoryID, "subcategory id"); err != nil {
		return product.CreateInput{}, err
	}
	return input, nil
}

func parseOptionalID(raw *string, label string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return &id, nil
}

func productListFilters(r *http.Request) (product.ListFilters, error) {
	var filters product.ListFilters
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return product.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category filter")
		}
		filters.CategoryID = &categoryID
	}
	var err error
	if filters.MinPrice, err = priceFilter(r, "min_price"); err != nil {
		return product.ListFilters{}, err
	}
	if filters.MaxPrice, err = priceFilter(r, "max_price"); err != nil {
		return product.ListFilters{}, err
	}
	return filters, nil
}

func priceFilter(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil || price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+key+" filter")
	}
	return &price, nil
}

func productIDFromURL(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return id, nil
}

// ProductList pages through the catalog with optional category and price
// filters.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := productListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productPage{Products: rows, NextCursor: next})
	}
}

// ProductDetail loads a single catalog listing.
func ProductDetail(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// AdminProductCreate adds a catalog listing.
func AdminProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, row)
	}
}

// AdminProductUpdate replaces a catalog listing.
func AdminProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// AdminProductDelete removes a catalog listing.
func AdminProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
