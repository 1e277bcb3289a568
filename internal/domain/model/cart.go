package model

import "github.com/shopspring/decimal"

// 1セッションにつき1つ
// 同じ商品IDの明細は1行だけ、数量は常に1以上。
type Cart struct {
	Items []CartItem `json:"items"`
}

// 明細のコピーを返す（nilなら空スライス）
func (c *Cart) Get() []CartItem {
	out := make([]CartItem, len(c.Items))
	copy(out, c.Items)
	return out
}

// 同一商品は数量加算、無ければ末尾に追加
func (c *Cart) Add(item CartItem, qty int64) {
	if qty <= 0 {
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += qty
			return
		}
	}
	item.Quantity = qty
	c.Items = append(c.Items, item)
}

// 数量を上書き。0以下なら明細ごと削除
func (c *Cart) Update(productID int64, qty int64) {
	for i := range c.Items {
		if c.Items[i].ProductID != productID {
			continue
		}
		if qty <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		} else {
			c.Items[i].Quantity = qty
		}
		return
	}
}

// 無くてもエラーにしない
func (c *Cart) Remove(productID int64) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// 合計 = Σ(price × quantity)
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}
