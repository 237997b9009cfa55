package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/fitness_go_server/internal/pkg/logger"
	"github.com/qs3c/fitness_go_server/internal/pkg/payment"
	"github.com/qs3c/fitness_go_server/internal/pkg/response"
	"github.com/qs3c/fitness_go_server/internal/service"
)

// 回调请求体上限
const maxWebhookBody = 64 << 10

type WebhookHandler struct {
	fulfillmentService *service.FulfillmentService
}

func NewWebhookHandler(fulfillmentService *service.FulfillmentService) *WebhookHandler {
	return &WebhookHandler{
		fulfillmentService: fulfillmentService,
	}
}

// Payment 支付回调，签名必须基于原始请求体校验
// POST /api/v1/payments/webhook
func (h *WebhookHandler) Payment(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		response.ParamError(c, "读取请求体失败")
		return
	}

	result, err := h.fulfillmentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader(payment.SignatureHeader))
	if err != nil {
		if errors.Is(err, service.ErrInvalidSignature) {
			logger.Warn("payment webhook signature rejected", "ip", c.ClientIP())
			response.SignatureError(c, err.Error())
			return
		}
		// 返回 5xx 让支付服务重试
		logger.Error("payment webhook failed", "error", err)
		response.ServerError(c, "")
		return
	}

	response.Success(c, result)
}
