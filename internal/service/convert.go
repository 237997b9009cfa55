package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/qs3c/fitness_go_server/internal/model"
	"github.com/qs3c/fitness_go_server/internal/model/dto"
)

const dateLayout = "2006-01-02"

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func buildAuthor(u *model.User) *dto.PostAuthor {
	if u == nil {
		return nil
	}
	return &dto.PostAuthor{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}

func buildCommentUser(u *model.User) *dto.CommentUser {
	if u == nil {
		return nil
	}
	return &dto.CommentUser{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}

func buildPlanItem(p *model.SubscriptionPlan) *dto.PlanItem {
	if p == nil {
		return nil
	}
	return &dto.PlanItem{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        money(p.Price),
		DurationDays: p.DurationDays,
	}
}

func buildSubscriptionInfo(s *model.UserSubscription) *dto.SubscriptionInfo {
	return &dto.SubscriptionInfo{
		ID:        s.ID,
		Plan:      buildPlanItem(s.Plan),
		StartDate: s.StartDate.Format(time.RFC3339),
		EndDate:   s.EndDate.Format(time.RFC3339),
		IsActive:  s.IsActive,
	}
}

func buildOrderSummary(o *model.Order) *dto.OrderSummary {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return &dto.OrderSummary{
		ID:        o.ID,
		Total:     money(o.Total),
		IsPaid:    o.IsPaid,
		ItemCount: count,
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
	}
}

func buildCategoryItem(c *model.ProductCategory) *dto.CategoryItem {
	if c == nil {
		return nil
	}
	return &dto.CategoryItem{ID: c.ID, Name: c.Name, Slug: c.Slug, Description: c.Description}
}

func buildProductItem(p *model.Product) *dto.ProductItem {
	return &dto.ProductItem{
		ID:       p.ID,
		Name:     p.Name,
		Slug:     p.Slug,
		Price:    money(p.Price),
		ImageURL: p.ImageURL,
		Stock:    p.Stock,
		Category: buildCategoryItem(p.Category),
	}
}
