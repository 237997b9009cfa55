package dto

// PlanItem 订阅计划
type PlanItem struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	DurationDays int    `json:"duration_days"`
}

// PlanListResponse 订阅计划列表
type PlanListResponse struct {
	Plans              []*PlanItem       `json:"plans"`
	ActiveSubscription *SubscriptionInfo `json:"active_subscription,omitempty"`
}

// SubscriptionInfo 用户订阅
type SubscriptionInfo struct {
	ID        int64     `json:"id"`
	Plan      *PlanItem `json:"plan,omitempty"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	IsActive  bool      `json:"is_active"`
}

// SubscriptionResultRequest 支付回跳参数
type SubscriptionResultRequest struct {
	PlanID int64 `form:"plan_id"`
}

// SubscriptionResultResponse 支付回跳提示
type SubscriptionResultResponse struct {
	Message string    `json:"message"`
	Plan    *PlanItem `json:"plan,omitempty"`
}
