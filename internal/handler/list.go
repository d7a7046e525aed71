package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lista-app/lista/internal/domain/list"
)

// itemRequest carries user-typed field values. Quantity and price accept
// both JSON numbers and numeric text; the core parses them itself rather
// than trusting pre-validated input.
type itemRequest struct {
	Name      string      `json:"name"`
	Quantity  json.Number `json:"quantity"`
	UnitPrice json.Number `json:"unitPrice"`
	OfferRule string      `json:"offerRule"`
}

type itemResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	OfferRule string  `json:"offerRule,omitempty"`
	Subtotal  float64 `json:"subtotal"`
}

type itemSavedResponse struct {
	Item          itemResponse `json:"item"`
	DuplicateName bool         `json:"duplicateName,omitempty"`
}

type listResponse struct {
	Items []itemResponse `json:"items"`
	Total float64        `json:"total"`
}

type previewRequest struct {
	Quantity  json.Number `json:"quantity"`
	UnitPrice json.Number `json:"unitPrice"`
	OfferRule string      `json:"offerRule"`
}

type previewResponse struct {
	Subtotal float64 `json:"subtotal"`
}

// parseQuantity reads a quantity from a JSON number or numeric text.
// Non-numeric input is rejected; out-of-range values are clamped later by
// the service.
func parseQuantity(n json.Number) (int, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return 0, nil
	}
	qty, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return qty, nil
}

// parsePrice reads a price from a JSON number or numeric text.
func parsePrice(n json.Number) (decimal.Decimal, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// decodeBody decodes a JSON body with numbers preserved as text.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(dst)
}

func (req *itemRequest) toParams() (list.ItemParams, error) {
	qty, err := parseQuantity(req.Quantity)
	if err != nil {
		return list.ItemParams{}, err
	}
	price, err := parsePrice(req.UnitPrice)
	if err != nil {
		return list.ItemParams{}, err
	}
	return list.ItemParams{
		Name:      req.Name,
		Quantity:  qty,
		UnitPrice: price,
		OfferRule: req.OfferRule,
	}, nil
}

func toItemResponse(it list.LineItem, subtotal decimal.Decimal) itemResponse {
	return itemResponse{
		ID:        it.ID,
		Name:      it.Name,
		Quantity:  it.Quantity,
		UnitPrice: it.UnitPrice.InexactFloat64(),
		OfferRule: it.OfferRule,
		Subtotal:  subtotal.InexactFloat64(),
	}
}

func (h *Handler) getList(w http.ResponseWriter, r *http.Request) {
	priced, total, err := h.list.Totals(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	resp := listResponse{
		Items: make([]itemResponse, len(priced)),
		Total: total.InexactFloat64(),
	}
	for i, p := range priced {
		resp.Items[i] = toItemResponse(p.LineItem, p.Subtotal)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	params, err := req.toParams()
	if err != nil {
		respondError(w, http.StatusBadRequest, "quantity and unitPrice must be numeric")
		return
	}

	item, duplicate, err := h.list.Add(r.Context(), params)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	sub := h.list.Preview(item.Quantity, item.UnitPrice, item.OfferRule)
	respondJSON(w, http.StatusCreated, itemSavedResponse{
		Item:          toItemResponse(*item, sub),
		DuplicateName: duplicate,
	})
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req itemRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	params, err := req.toParams()
	if err != nil {
		respondError(w, http.StatusBadRequest, "quantity and unitPrice must be numeric")
		return
	}

	item, duplicate, err := h.list.Update(r.Context(), id, params)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	sub := h.list.Preview(item.Quantity, item.UnitPrice, item.OfferRule)
	respondJSON(w, http.StatusOK, itemSavedResponse{
		Item:          toItemResponse(*item, sub),
		DuplicateName: duplicate,
	})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.list.Remove(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearList(w http.ResponseWriter, r *http.Request) {
	if err := h.list.Clear(r.Context()); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) previewSubtotal(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	qty, err := parseQuantity(req.Quantity)
	if err != nil {
		respondError(w, http.StatusBadRequest, "quantity must be numeric")
		return
	}
	price, err := parsePrice(req.UnitPrice)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unitPrice must be numeric")
		return
	}

	sub := h.list.Preview(qty, price, req.OfferRule)
	respondJSON(w, http.StatusOK, previewResponse{Subtotal: sub.InexactFloat64()})
}
