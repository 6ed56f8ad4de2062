package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	ierrors "github.com/jamesprial/coffee-shop/internal/errors"
	"github.com/jamesprial/coffee-shop/internal/model"
	"github.com/jamesprial/coffee-shop/internal/transport/transportcore"
	pkgoauth "github.com/jamesprial/coffee-shop/pkg/oauth"
)

// MaxBodyBytes bounds create and update request bodies.
const MaxBodyBytes = 1 << 20

// DrinksHandler serves the drink routes. Routes registered with it must
// name the path id {id}.
type DrinksHandler struct {
	service   transportcore.DrinkService
	responder transportcore.Responder
}

// NewDrinksHandler creates the drink route handlers.
func NewDrinksHandler(service transportcore.DrinkService, responder transportcore.Responder) *DrinksHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}

	return &DrinksHandler{
		service:   service,
		responder: responder,
	}
}

// List handles GET /drinks.
func (h *DrinksHandler) List(w http.ResponseWriter, r *http.Request) {
	drinks, err := h.service.List(r.Context(), authorization(r))
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.Success(w, r, map[string]any{"drinks": drinks})
}

// Detail handles GET /drinks-detail.
func (h *DrinksHandler) Detail(w http.ResponseWriter, r *http.Request) {
	drinks, err := h.service.Detail(r.Context(), authorization(r))
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.Success(w, r, map[string]any{"drinks": drinks})
}

// Create handles POST /drinks.
func (h *DrinksHandler) Create(w http.ResponseWriter, r *http.Request) {
	created, err := h.service.Create(r.Context(), authorization(r), h.body(w, r))
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.Success(w, r, map[string]any{"drinks": []model.LongDrink{created}})
}

// Update handles PATCH /drinks/{id}.
func (h *DrinksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := drinkID(r)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	updated, err := h.service.Update(r.Context(), authorization(r), id, h.body(w, r))
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.Success(w, r, map[string]any{"drinks": []model.LongDrink{updated}})
}

// Delete handles DELETE /drinks/{id}.
func (h *DrinksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := drinkID(r)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), authorization(r), id); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.Success(w, r, nil)
}

func (h *DrinksHandler) body(w http.ResponseWriter, r *http.Request) *json.Decoder {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
}

func authorization(r *http.Request) string {
	return r.Header.Get(pkgoauth.HeaderAuthorization)
}

// drinkID parses the {id} path segment. Anything but a positive integer
// names no drink, so it is a not found error.
func drinkID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w %q: %w", transportcore.ErrInvalidID, raw, ierrors.NewNotFoundError("drink", raw))
	}
	return id, nil
}
