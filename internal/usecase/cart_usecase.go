package usecase

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase はセッションカートの業務ロジック。
// 価格・名前・画像は常にカタログから引く（クライアント送信値は使わない）。
type CartUsecase struct {
	carts       repo.CartStore
	productRepo repo.ProductRepository
}

func NewCartUsecase(carts repo.CartStore, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{carts: carts, productRepo: productRepo}
}

type CartOutput struct {
	Items []model.CartItem `json:"cart"`
	Total decimal.Decimal  `json:"total"`
}

// Quantity 省略時は1
type AddCartInput struct {
	ProductID int64
	Quantity  *int64
}

// 0以下は削除
type UpdateCartInput struct {
	ProductID int64
	Quantity  int64
}

func (u *CartUsecase) GetCart(ctx context.Context, sessionID string) (CartOutput, error) {
	cart, err := u.load(ctx, sessionID)
	if err != nil {
		return CartOutput{}, err
	}
	return toCartOutput(cart), nil
}

// 同一商品は数量加算
func (u *CartUsecase) AddToCart(ctx context.Context, sessionID string, in AddCartInput) (CartOutput, error) {
	if in.ProductID <= 0 {
		return CartOutput{}, WrapHTTPError(http.StatusBadRequest, "invalid product id", ErrValidation)
	}
	qty := int64(1)
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if qty < 1 {
		return CartOutput{}, WrapHTTPError(http.StatusBadRequest, "invalid quantity", ErrValidation)
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, WrapHTTPError(http.StatusNotFound, "product not found", err)
	}
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.mutate(ctx, sessionID, func(c *model.Cart) {
		c.Add(model.CartItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.ImageURL,
		}, qty)
	})
}

func (u *CartUsecase) UpdateCart(ctx context.Context, sessionID string, in UpdateCartInput) (CartOutput, error) {
	if in.ProductID <= 0 {
		return CartOutput{}, WrapHTTPError(http.StatusBadRequest, "invalid product id", ErrValidation)
	}
	return u.mutate(ctx, sessionID, func(c *model.Cart) {
		c.Update(in.ProductID, in.Quantity)
	})
}

// 無くてもエラーにしない
func (u *CartUsecase) RemoveFromCart(ctx context.Context, sessionID string, productID int64) (CartOutput, error) {
	return u.mutate(ctx, sessionID, func(c *model.Cart) {
		c.Remove(productID)
	})
}

func (u *CartUsecase) ClearCart(ctx context.Context, sessionID string) (CartOutput, error) {
	return u.mutate(ctx, sessionID, func(c *model.Cart) {
		c.Clear()
	})
}

func (u *CartUsecase) load(ctx context.Context, sessionID string) (model.Cart, error) {
	if sessionID == "" {
		return model.Cart{}, NewHTTPError(http.StatusBadRequest, "missing session")
	}
	cart, err := u.carts.LoadCart(ctx, sessionID)
	if err != nil {
		return model.Cart{}, WrapHTTPError(http.StatusInternalServerError, "cart store error", err)
	}
	return cart, nil
}

// 読み込み→変更→保存
func (u *CartUsecase) mutate(ctx context.Context, sessionID string, fn func(c *model.Cart)) (CartOutput, error) {
	cart, err := u.load(ctx, sessionID)
	if err != nil {
		return CartOutput{}, err
	}
	fn(&cart)
	if err := u.carts.SaveCart(ctx, sessionID, cart); err != nil {
		return CartOutput{}, WrapHTTPError(http.StatusInternalServerError, "cart store error", err)
	}
	return toCartOutput(cart), nil
}

func toCartOutput(c model.Cart) CartOutput {
	return CartOutput{Items: c.Get(), Total: c.Total()}
}
