package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/waste-portal/internal/apperror"
	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/repository"
)

// MaxPurchaseQuantity bounds a single order.
const MaxPurchaseQuantity = 5

// Product is one entry in the fixed eco-shop catalog.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
	Category string `json:"category"`
}

var products = []Product{
	{ID: "segregation-set", Name: "3-Bin Segregation Set", Points: 300, Category: "Equipment"},
	{ID: "compost-kit", Name: "Compost Kit", Points: 400, Category: "Composting"},
	{ID: "eco-bags", Name: "Eco Bags (Set of 5)", Points: 100, Category: "Accessories"},
	{ID: "organic-fertilizer", Name: "Organic Fertilizer", Points: 160, Category: "Garden"},
	{ID: "solar-bin", Name: "Solar Waste Bin", Points: 1000, Category: "Technology"},
	{ID: "safety-gloves", Name: "Safety Gloves", Points: 60, Category: "Safety"},
}

// Purchase is the result of a successful order.
type Purchase struct {
	Product    Product `json:"product"`
	Quantity   int     `json:"quantity"`
	PointsCost int     `json:"points_cost"`
	NewBalance int     `json:"new_balance"`
}

// ShopService lets citizens spend earned points on eco products. A
// purchase is a negative ledger entry; there is no separate order store.
type ShopService struct {
	ledger repository.LedgerRepository
	logger *slog.Logger
}

func NewShopService(ledger repository.LedgerRepository, logger *slog.Logger) *ShopService {
	return &ShopService{
		ledger: ledger,
		logger: logger,
	}
}

// Products returns the catalog.
func (s *ShopService) Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// Purchase debits unit points × quantity from the buyer's balance. An
// insufficient balance fails the whole order and changes nothing.
func (s *ShopService) Purchase(ctx context.Context, userID int64, productID string, quantity int) (*Purchase, error) {
	if quantity < 1 || quantity > MaxPurchaseQuantity {
		return nil, apperror.ValidationFailed("quantity",
			fmt.Sprintf("quantity must be between 1 and %d", MaxPurchaseQuantity))
	}

	var product *Product
	for i := range products {
		if products[i].ID == productID {
			product = &products[i]
			break
		}
	}
	if product == nil {
		return nil, apperror.ValidationFailed("product_id", fmt.Sprintf("unknown product %q", productID))
	}

	cost := product.Points * quantity
	balance, err := s.ledger.Debit(ctx, userID, cost, model.RewardPurchase,
		fmt.Sprintf("purchased %dx %s", quantity, product.Name))
	if err != nil {
		return nil, err
	}

	s.logger.Info("shop purchase",
		slog.Int64("user_id", userID),
		slog.String("product", product.ID),
		slog.Int("quantity", quantity),
		slog.Int("points_cost", cost),
	)

	return &Purchase{
		Product:    *product,
		Quantity:   quantity,
		PointsCost: cost,
		NewBalance: balance,
	}, nil
}
