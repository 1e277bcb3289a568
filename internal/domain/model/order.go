package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// 一覧で全ステータスを指す値
const OrderStatusAll = "all"

// status列の長さ
const MaxOrderStatusLen = 50

// pending -> confirmed -> shipped -> delivered の一方向
var orderTransitions = map[OrderStatus]OrderStatus{
	OrderStatusPending:   OrderStatusConfirmed,
	OrderStatusConfirmed: OrderStatusShipped,
	OrderStatusShipped:   OrderStatusDelivered,
}

func (s OrderStatus) IsKnown() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// 同じステータスへの遷移は許可（何もしない扱い）
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	to, ok := orderTransitions[s]
	return ok && to == next
}

// 決済確認で確定した注文
// CustomerInfo / Items は確定時点のスナップショット（JSON列）。
type Order struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerInfo CustomerInfo    `gorm:"serializer:json;type:text;not null" json:"customer_info"`
	Items        []CartItem      `gorm:"serializer:json;type:text;not null" json:"items"`
	TotalPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	PaymentRef   string          `gorm:"type:varchar(100);not null;uniqueIndex" json:"payment_ref"`
	Status       OrderStatus     `gorm:"type:varchar(50);not null;index" json:"status"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
