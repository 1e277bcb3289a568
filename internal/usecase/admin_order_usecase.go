package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

type AdminOrderUsecase struct {
	orderRepo   repo.OrderRepository
	productRepo repo.ProductRepository
	tx          repo.TransactionManager
	strict      bool
}

// strict=true なら pending→confirmed→shipped→delivered 以外の遷移を拒否
func NewAdminOrderUsecase(orderRepo repo.OrderRepository, productRepo repo.ProductRepository, tx repo.TransactionManager, strict bool) *AdminOrderUsecase {
	return &AdminOrderUsecase{orderRepo: orderRepo, productRepo: productRepo, tx: tx, strict: strict}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

type StatsOutput struct {
	TotalOrders   int64           `json:"total_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalProducts int64           `json:"total_products"`
}

// 注文一覧
// status 省略時は confirmed、"all" なら全件。
func (u *AdminOrderUsecase) List(ctx context.Context, status string) ([]model.Order, error) {
	status = strings.TrimSpace(status)
	f := repo.OrderListFilter{Status: status}
	switch status {
	case "":
		f.Status = string(model.OrderStatusConfirmed)
	case model.OrderStatusAll:
		f.Status = ""
	}

	orders, err := u.orderRepo.List(ctx, f)
	if err != nil {
		return []model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return orders, nil
}

// ステータス更新
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actor string, orderID int64, in AdminUpdateOrderStatusInput) (model.Order, error) {
	if orderID <= 0 {
		return model.Order{}, WrapHTTPError(http.StatusBadRequest, "invalid id", ErrValidation)
	}
	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	if newStatus == "" {
		return model.Order{}, WrapHTTPError(http.StatusBadRequest, "status required", ErrValidation)
	}
	if len(newStatus) > model.MaxOrderStatusLen {
		return model.Order{}, WrapHTTPError(http.StatusBadRequest, "status too long", ErrValidation)
	}
	if u.strict && !newStatus.IsKnown() {
		return model.Order{}, WrapHTTPError(http.StatusBadRequest, "invalid status", ErrInvalidTransition)
	}

	var updated model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return WrapHTTPError(http.StatusNotFound, "Order not found", err)
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if u.strict && !o.Status.CanTransitionTo(newStatus) {
			return WrapHTTPError(http.StatusBadRequest,
				"cannot change "+string(o.Status)+" order to "+string(newStatus), ErrInvalidTransition)
		}

		beforeStatus := string(o.Status)
		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return WrapHTTPError(http.StatusNotFound, "Order not found", err)
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//監査ログ（UPDATE_ORDER_STATUS）
		if err := writeAudit(ctx, r, actor, model.AuditActionUpdateOrderStatus, model.AuditResourceOrder, orderID,
			map[string]string{"status": beforeStatus},
			map[string]string{"status": string(newStatus)},
		); err != nil {
			return err
		}

		reloaded, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return updated, nil
}

// 確定済み注文の件数と売上、商品数
func (u *AdminOrderUsecase) Stats(ctx context.Context) (StatsOutput, error) {
	count, err := u.orderRepo.CountByStatus(ctx, model.OrderStatusConfirmed)
	if err != nil {
		return StatsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	revenue, err := u.orderRepo.SumTotalByStatus(ctx, model.OrderStatusConfirmed)
	if err != nil {
		return StatsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	products, err := u.productRepo.Count(ctx)
	if err != nil {
		return StatsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return StatsOutput{
		TotalOrders:   count,
		TotalRevenue:  revenue,
		TotalProducts: products,
	}, nil
}
