package handler

import (
	"net/http"
)

type checkoutRequest struct {
	Store string `json:"store"`
}

type checkoutResponse struct {
	PurchaseID int64   `json:"purchaseId"`
	Store      string  `json:"store"`
	Total      float64 `json:"total"`
	Items      int     `json:"items"`
}

func (h *Handler) postCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.checkout.Checkout(r.Context(), req.Store)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, checkoutResponse{
		PurchaseID: res.PurchaseID,
		Store:      res.Store,
		Total:      res.Total.InexactFloat64(),
		Items:      res.Items,
	})
}
