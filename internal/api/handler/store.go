package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/fitness_go_server/internal/api/middleware"
	"github.com/qs3c/fitness_go_server/internal/model/dto"
	"github.com/qs3c/fitness_go_server/internal/pkg/response"
	"github.com/qs3c/fitness_go_server/internal/service"
)

type StoreHandler struct {
	catalogService  *service.CatalogService
	cartService     *service.CartService
	checkoutService *service.CheckoutService
	orderService    *service.OrderService
}

func NewStoreHandler(
	catalogService *service.CatalogService,
	cartService *service.CartService,
	checkoutService *service.CheckoutService,
	orderService *service.OrderService,
) *StoreHandler {
	return &StoreHandler{
		catalogService:  catalogService,
		cartService:     cartService,
		checkoutService: checkoutService,
		orderService:    orderService,
	}
}

// Categories 商品分类
// GET /api/v1/store/categories
func (h *StoreHandler) Categories(c *gin.Context) {
	items, err := h.catalogService.ListCategories()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, items)
}

// Products 商品列表
// GET /api/v1/store/products?category=slug
func (h *StoreHandler) Products(c *gin.Context) {
	var req dto.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.catalogService.ListProducts(req.Category)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, resp)
}

// Product 商品详情
// GET /api/v1/store/products/:id/:slug
func (h *StoreHandler) Product(c *gin.Context) {
	productID, ok := paramID(c, "id", "无效的商品ID")
	if !ok {
		return
	}

	detail, err := h.catalogService.GetProduct(productID, c.Param("slug"), middleware.OptionalUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, detail)
}

// CreateReview 商品评价
// POST /api/v1/store/products/:id/reviews
func (h *StoreHandler) CreateReview(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	productID, ok := paramID(c, "id", "无效的商品ID")
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	review, err := h.catalogService.CreateReview(userID, productID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrReviewNotAllowed):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrAlreadyReviewed):
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Created(c, "评价成功", review)
}

// Cart 查看购物车
// GET /api/v1/store/cart
func (h *StoreHandler) Cart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.cartService.Get(c.Request.Context(), userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, resp)
}

// AddToCart 加入购物车，数量缺省为 1，超出范围时截断到 [1,10]
// POST /api/v1/store/cart/:product_id
func (h *StoreHandler) AddToCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	productID, ok := paramID(c, "product_id", "无效的商品ID")
	if !ok {
		return
	}

	var req dto.AddToCartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ParamError(c, err.Error())
			return
		}
	}

	resp, err := h.cartService.Add(c.Request.Context(), userID, productID, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "已加入购物车", resp)
}

// RemoveFromCart 移出购物车
// DELETE /api/v1/store/cart/:product_id
func (h *StoreHandler) RemoveFromCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	productID, ok := paramID(c, "product_id", "无效的商品ID")
	if !ok {
		return
	}

	resp, err := h.cartService.Remove(c.Request.Context(), userID, productID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "已移出购物车", resp)
}

// Checkout 创建支付会话
// POST /api/v1/store/checkout
func (h *StoreHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.checkoutService.CheckoutCart(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartEmpty), errors.Is(err, service.ErrCartTooLarge):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrProductUnavailable):
			response.ConflictError(c, err.Error())
		case errors.Is(err, service.ErrPaymentProvider):
			response.PaymentError(c, service.ErrPaymentProvider.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.AuthError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// Orders 我的订单
// GET /api/v1/store/orders
func (h *StoreHandler) Orders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	items, err := h.orderService.List(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, items)
}

// Order 订单详情
// GET /api/v1/store/orders/:id
func (h *StoreHandler) Order(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	orderID, ok := paramID(c, "id", "无效的订单ID")
	if !ok {
		return
	}

	detail, err := h.orderService.Detail(userID, orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, detail)
}

// OrderSuccess 支付成功回跳，订单由回调创建
// GET /api/v1/store/orders/success
func (h *StoreHandler) OrderSuccess(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	if err := h.orderService.Success(c.Request.Context(), userID); err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessWithMessage(c, "支付成功，订单处理中", nil)
}

// OrderCancel 支付取消回跳，购物车保留
// GET /api/v1/store/orders/cancel
func (h *StoreHandler) OrderCancel(c *gin.Context) {
	response.SuccessWithMessage(c, "支付已取消", nil)
}
