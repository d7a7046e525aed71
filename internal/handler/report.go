package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type purchaseResponse struct {
	ID    int64   `json:"id"`
	Date  string  `json:"date"`
	Store string  `json:"store"`
	Total float64 `json:"total"`
}

type purchaseLineResponse struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	OfferRule string  `json:"offerRule,omitempty"`
	Subtotal  float64 `json:"subtotal"`
}

type purchaseDetailResponse struct {
	PurchaseID int64                  `json:"purchaseId"`
	Items      []purchaseLineResponse `json:"items"`
	Total      float64                `json:"total"`
}

type summaryResponse struct {
	TotalSpent         float64 `json:"totalSpent"`
	PurchaseCount      int64   `json:"purchaseCount"`
	AveragePerPurchase float64 `json:"averagePerPurchase"`
}

const dateLayout = "2006-01-02"

func (h *Handler) getPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.reports.Purchases(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	resp := make([]purchaseResponse, len(purchases))
	for i, p := range purchases {
		resp[i] = purchaseResponse{
			ID:    p.ID,
			Date:  p.Date.Format(dateLayout),
			Store: p.Store,
			Total: p.Total.InexactFloat64(),
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) getPurchaseDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid purchase id")
		return
	}

	detail, err := h.reports.PurchaseDetail(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	resp := purchaseDetailResponse{
		PurchaseID: detail.PurchaseID,
		Items:      make([]purchaseLineResponse, len(detail.Items)),
		Total:      detail.Total.InexactFloat64(),
	}
	for i, it := range detail.Items {
		resp.Items[i] = purchaseLineResponse{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.InexactFloat64(),
			OfferRule: it.OfferRule,
			Subtotal:  it.Subtotal.InexactFloat64(),
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.reports.Summary(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, summaryResponse{
		TotalSpent:         s.TotalSpent.InexactFloat64(),
		PurchaseCount:      s.PurchaseCount,
		AveragePerPurchase: s.AveragePerPurchase.InexactFloat64(),
	})
}

func (h *Handler) getSpendByStore(w http.ResponseWriter, r *http.Request) {
	byStore, err := h.reports.SpendByStore(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	resp := make(map[string]float64, len(byStore))
	for store, total := range byStore {
		resp[store] = total.InexactFloat64()
	}
	respondJSON(w, http.StatusOK, resp)
}
