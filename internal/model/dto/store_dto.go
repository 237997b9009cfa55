package dto

// CategoryItem 商品分类
type CategoryItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// ProductListRequest 商品列表请求参数
type ProductListRequest struct {
	Category string `form:"category"`
}

// ProductItem 商品列表项
type ProductItem struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Slug     string        `json:"slug"`
	Price    string        `json:"price"`
	ImageURL string        `json:"image_url"`
	Stock    int           `json:"stock"`
	Category *CategoryItem `json:"category,omitempty"`
}

// ProductListResponse 商品列表
type ProductListResponse struct {
	Category   *CategoryItem   `json:"category,omitempty"`
	Categories []*CategoryItem `json:"categories"`
	Products   []*ProductItem  `json:"products"`
}

// ProductDetail 商品详情
type ProductDetail struct {
	ProductItem
	Description string        `json:"description"`
	Reviews     []*ReviewItem `json:"reviews"`
	CanReview   bool          `json:"can_review"`
}

// CreateReviewRequest 商品评价
type CreateReviewRequest struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Review string `json:"review" binding:"max=2000"`
}

// ReviewItem 评价项
type ReviewItem struct {
	ID        int64        `json:"id"`
	Rating    int          `json:"rating"`
	Review    string       `json:"review"`
	User      *CommentUser `json:"user"`
	CreatedAt string       `json:"created_at"`
}

// AddToCartRequest 加入购物车
type AddToCartRequest struct {
	Quantity int `json:"quantity"`
}

// CartLineItem 购物车行
type CartLineItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	ImageURL  string `json:"image_url"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Subtotal  string `json:"subtotal"`
}

// CartResponse 购物车
type CartResponse struct {
	Items    []*CartLineItem `json:"items"`
	Quantity int             `json:"quantity"`
	Total    string          `json:"total"`
}

// CheckoutResponse 支付跳转
type CheckoutResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// OrderItemInfo 订单明细
type OrderItemInfo struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Subtotal  string `json:"subtotal"`
}

// OrderSummary 订单概要
type OrderSummary struct {
	ID        int64  `json:"id"`
	Total     string `json:"total"`
	IsPaid    bool   `json:"is_paid"`
	ItemCount int    `json:"item_count"`
	CreatedAt string `json:"created_at"`
}

// OrderDetail 订单详情
type OrderDetail struct {
	OrderSummary
	PaymentRef string           `json:"payment_ref"`
	Items      []*OrderItemInfo `json:"items"`
}
