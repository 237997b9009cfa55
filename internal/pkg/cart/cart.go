package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	MinQuantity = 1
	MaxQuantity = 10
)

var ErrInvalidLine = errors.New("cart: invalid line")

// Line 购物车行：商品、数量、加入时的单价快照
type Line struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Subtotal 行小计
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart 按加入顺序保存的购物车
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// ClampQuantity 单次加购数量限制在 [1,10]
func ClampQuantity(qty int) int {
	if qty < MinQuantity {
		return MinQuantity
	}
	if qty > MaxQuantity {
		return MaxQuantity
	}
	return qty
}

// Add 加购：已存在则累加数量（保留首次价格），否则追加新行
func (c *Cart) Add(productID int64, qty int, price decimal.Decimal) {
	qty = ClampQuantity(qty)
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity += qty
			return
		}
	}
	c.lines = append(c.lines, Line{ProductID: productID, Quantity: qty, Price: price})
}

// Remove 移除商品，不存在时不做处理
func (c *Cart) Remove(productID int64) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines 按加入顺序返回副本
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Total 购物车总价
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Quantity 商品件数合计
func (c *Cart) Quantity() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Encode 序列化为 JSON 数组，保持顺序
func (c *Cart) Encode() ([]byte, error) {
	lines := c.lines
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(lines)
}

// Decode 反序列化并校验每一行
func Decode(data []byte) (*Cart, error) {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("cart: decode: %w", err)
	}
	for _, l := range lines {
		if l.ProductID <= 0 || l.Quantity <= 0 || l.Price.IsNegative() {
			return nil, fmt.Errorf("%w: product %d quantity %d", ErrInvalidLine, l.ProductID, l.Quantity)
		}
	}
	return &Cart{lines: lines}, nil
}
