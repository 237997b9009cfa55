package dto

// UpdateProfileRequest 更新健身档案，未传字段保持不变
type UpdateProfileRequest struct {
	Bio          *string `json:"bio,omitempty" binding:"omitempty,max=1000"`
	FitnessGoals *string `json:"fitness_goals,omitempty" binding:"omitempty,max=1000"`
	Height       *string `json:"height,omitempty" binding:"omitempty,numeric"`
	Weight       *string `json:"weight,omitempty" binding:"omitempty,numeric"`
	DateOfBirth  *string `json:"date_of_birth,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Country      *string `json:"country,omitempty" binding:"omitempty,max=2"`
}

// ProfileInfo 健身档案
type ProfileInfo struct {
	UserID         int64  `json:"user_id"`
	Username       string `json:"username"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture"`
	FitnessGoals   string `json:"fitness_goals"`
	Height         string `json:"height,omitempty"`
	Weight         string `json:"weight,omitempty"`
	DateOfBirth    string `json:"date_of_birth,omitempty"`
	Age            *int   `json:"age,omitempty"`
	Country        string `json:"country"`
}

// ProfilePageResponse 个人主页
type ProfilePageResponse struct {
	Profile       *ProfileInfo        `json:"profile"`
	Subscriptions []*SubscriptionInfo `json:"subscriptions"`
	RecentOrders  []*OrderSummary     `json:"recent_orders"`
}
