// Package handler exposes the core over HTTP/JSON. It is presentation
// glue: all field values arrive as user-supplied text and numbers, and the
// domain services normalize and validate them.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/lista-app/lista/internal/domain/checkout"
	"github.com/lista-app/lista/internal/domain/list"
	"github.com/lista-app/lista/internal/domain/report"
)

// Handler routes API requests to the list service, checkout coordinator,
// and reporter.
type Handler struct {
	list     *list.Service
	checkout *checkout.Service
	reports  *report.Reporter
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(listSvc *list.Service, checkoutSvc *checkout.Service, reporter *report.Reporter) *Handler {
	return &Handler{
		list:     listSvc,
		checkout: checkoutSvc,
		reports:  reporter,
	}
}

// Routes returns the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/list", func(r chi.Router) {
		r.Get("/", h.getList)
		r.Delete("/", h.clearList)
		r.Post("/items", h.addItem)
		r.Put("/items/{id}", h.updateItem)
		r.Delete("/items/{id}", h.removeItem)
		r.Post("/preview", h.previewSubtotal)
	})

	r.Post("/checkout", h.postCheckout)

	r.Get("/purchases", h.getPurchases)
	r.Get("/purchases/{id}", h.getPurchaseDetail)

	r.Route("/reports", func(r chi.Router) {
		r.Get("/summary", h.getSummary)
		r.Get("/by-store", h.getSpendByStore)
	})

	return r
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Code: status, Message: message})
}

// respondDomainError maps domain errors to HTTP statuses: validation
// failures to 400, unknown ids to 404, empty-list checkout to 409, and
// everything else to a logged 500.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, list.ErrNameRequired),
		errors.Is(err, list.ErrNegativePrice),
		errors.Is(err, checkout.ErrStoreRequired):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, list.ErrItemNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, checkout.ErrEmptyList):
		respondError(w, http.StatusConflict, err.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
