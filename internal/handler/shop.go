package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/waste-portal/internal/auth"
	"github.com/sakif/waste-portal/internal/service"
)

// ShopHandler serves the eco-shop catalog and purchases.
type ShopHandler struct {
	shop   *service.ShopService
	logger *slog.Logger
}

func NewShopHandler(shop *service.ShopService, logger *slog.Logger) *ShopHandler {
	return &ShopHandler{
		shop:   shop,
		logger: logger,
	}
}

// HandleProducts returns the catalog.
//
// HTTP: GET /api/shop/products
func (h *ShopHandler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.shop.Products())
}

type purchaseRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// HandlePurchase spends points on a product.
//
// HTTP: POST /api/shop/purchase
func (h *ShopHandler) HandlePurchase(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())

	var req purchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.shop.Purchase(r.Context(), ident.UserID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
