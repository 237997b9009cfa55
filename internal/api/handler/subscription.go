package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/fitness_go_server/internal/api/middleware"
	"github.com/qs3c/fitness_go_server/internal/model/dto"
	"github.com/qs3c/fitness_go_server/internal/pkg/response"
	"github.com/qs3c/fitness_go_server/internal/service"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// Plans 订阅计划
// GET /api/v1/subscriptions/plans
func (h *SubscriptionHandler) Plans(c *gin.Context) {
	resp, err := h.subscriptionService.ListPlans(middleware.OptionalUserID(c))
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, resp)
}

// Mine 我的订阅记录
// GET /api/v1/subscriptions
func (h *SubscriptionHandler) Mine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	items, err := h.subscriptionService.ListSubscriptions(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, items)
}

// Subscribe 订阅计划，返回支付跳转地址
// POST /api/v1/subscriptions/plans/:id/subscribe
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	planID, ok := paramID(c, "id", "无效的计划ID")
	if !ok {
		return
	}

	resp, err := h.subscriptionService.Subscribe(c.Request.Context(), userID, planID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrActiveSubscriptionExists):
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

// Success 支付成功回跳
// GET /api/v1/subscriptions/success?plan_id=
func (h *SubscriptionHandler) Success(c *gin.Context) {
	var req dto.SubscriptionResultRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, "无效的计划ID")
		return
	}

	resp, err := h.subscriptionService.SubscribeSuccess(req.PlanID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}
	response.Success(c, resp)
}

// Cancel 支付取消回跳
// GET /api/v1/subscriptions/cancel
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	response.Success(c, &dto.SubscriptionResultResponse{Message: "订阅支付已取消"})
}
