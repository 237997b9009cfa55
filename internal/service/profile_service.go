package service

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/config"
	"github.com/qs3c/fitness_go_server/internal/model"
	"github.com/qs3c/fitness_go_server/internal/model/dto"
	"github.com/qs3c/fitness_go_server/internal/pkg/oss"
	"github.com/qs3c/fitness_go_server/internal/repository"
)

const recentOrdersLimit = 5

var (
	ErrInvalidMeasurement  = errors.New("身高或体重不合法")
	ErrInvalidDateOfBirth  = errors.New("出生日期不合法")
	ErrInvalidCountry      = errors.New("国家代码不合法")
	ErrStorageNotAvailable = errors.New("文件存储未配置")
	ErrFileTooLarge        = errors.New("文件过大")
	ErrUnsupportedFileType = errors.New("只支持 jpg/png/webp 格式")
)

// 身高体重上限，对应 decimal(5,2)
var maxMeasurement = decimal.RequireFromString("999.99")

var validate = validator.New()

// ImageStorage 图片存储
type ImageStorage interface {
	UploadImage(folder string, ownerID int64, data []byte, allowed []string) (string, error)
}

type ProfileService struct {
	userRepo    *repository.UserRepository
	profileRepo *repository.ProfileRepository
	subRepo     *repository.SubscriptionRepository
	orderRepo   *repository.OrderRepository
	storage     ImageStorage
	cfg         *config.Config
	now         func() time.Time
}

func NewProfileService(
	userRepo *repository.UserRepository,
	profileRepo *repository.ProfileRepository,
	subRepo *repository.SubscriptionRepository,
	orderRepo *repository.OrderRepository,
	storage ImageStorage,
	cfg *config.Config,
) *ProfileService {
	return &ProfileService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		subRepo:     subRepo,
		orderRepo:   orderRepo,
		storage:     storage,
		cfg:         cfg,
		now:         time.Now,
	}
}

// GetProfile 获取健身档案，不存在时创建
func (s *ProfileService) GetProfile(userID int64) (*dto.ProfileInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	profile, err := s.profileRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	return s.buildProfileInfo(user, profile), nil
}

// UpdateProfile 更新健身档案
func (s *ProfileService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.ProfileInfo, error) {
	if _, err := s.profileRepo.GetOrCreate(userID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.FitnessGoals != nil {
		fields["fitness_goals"] = *req.FitnessGoals
	}
	if req.Height != nil {
		v, err := parseMeasurement(*req.Height)
		if err != nil {
			return nil, err
		}
		fields["height"] = v
	}
	if req.Weight != nil {
		v, err := parseMeasurement(*req.Weight)
		if err != nil {
			return nil, err
		}
		fields["weight"] = v
	}
	if req.DateOfBirth != nil {
		v, err := s.parseDateOfBirth(*req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		fields["date_of_birth"] = v
	}
	if req.Country != nil {
		v, err := parseCountry(*req.Country)
		if err != nil {
			return nil, err
		}
		fields["country"] = v
	}

	if len(fields) > 0 {
		if err := s.profileRepo.UpdateFields(userID, fields); err != nil {
			return nil, err
		}
	}

	return s.GetProfile(userID)
}

// UploadPicture 上传头像并写入档案
func (s *ProfileService) UploadPicture(userID int64, data []byte) (string, error) {
	if s.storage == nil {
		return "", ErrStorageNotAvailable
	}
	if s.cfg.Upload.MaxSize > 0 && int64(len(data)) > s.cfg.Upload.MaxSize {
		return "", ErrFileTooLarge
	}

	url, err := s.storage.UploadImage(oss.FolderProfiles, userID, data, s.cfg.Upload.AllowedTypes)
	if err != nil {
		if errors.Is(err, oss.ErrUnsupportedType) {
			return "", ErrUnsupportedFileType
		}
		return "", err
	}

	if _, err := s.profileRepo.GetOrCreate(userID); err != nil {
		return "", err
	}
	if err := s.profileRepo.UpdateFields(userID, map[string]interface{}{"profile_picture": url}); err != nil {
		return "", err
	}
	return url, nil
}

// ProfilePage 个人主页：档案、订阅记录和最近订单
func (s *ProfileService) ProfilePage(userID int64) (*dto.ProfilePageResponse, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	subs, err := s.subRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.ListByUser(userID, recentOrdersLimit)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProfilePageResponse{
		Profile:       profile,
		Subscriptions: make([]*dto.SubscriptionInfo, 0, len(subs)),
		RecentOrders:  make([]*dto.OrderSummary, 0, len(orders)),
	}
	for _, sub := range subs {
		resp.Subscriptions = append(resp.Subscriptions, buildSubscriptionInfo(sub))
	}
	for _, o := range orders {
		resp.RecentOrders = append(resp.RecentOrders, buildOrderSummary(o))
	}
	return resp, nil
}

func parseMeasurement(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil || !v.IsPositive() || v.GreaterThan(maxMeasurement) {
		return nil, ErrInvalidMeasurement
	}
	v = v.Round(2)
	return &v, nil
}

// parseCountry 统一为大写后按 ISO 3166-1 alpha-2 校验，空串表示清除
func parseCountry(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if code == "" {
		return "", nil
	}
	if err := validate.Var(code, "iso3166_1_alpha2"); err != nil {
		return "", ErrInvalidCountry
	}
	return code, nil
}

func (s *ProfileService) parseDateOfBirth(str string) (*time.Time, error) {
	if str == "" {
		return nil, nil
	}
	dob, err := time.Parse(dateLayout, str)
	if err != nil || dob.After(s.now()) {
		return nil, ErrInvalidDateOfBirth
	}
	return &dob, nil
}

func (s *ProfileService) buildProfileInfo(user *model.User, p *model.UserProfile) *dto.ProfileInfo {
	info := &dto.ProfileInfo{
		UserID:         user.ID,
		Username:       user.Username,
		Bio:            p.Bio,
		ProfilePicture: p.ProfilePicture,
		FitnessGoals:   p.FitnessGoals,
		Age:            p.Age(s.now()),
		Country:        p.Country,
	}
	if p.Height != nil {
		info.Height = p.Height.StringFixed(2)
	}
	if p.Weight != nil {
		info.Weight = p.Weight.StringFixed(2)
	}
	if p.DateOfBirth != nil {
		info.DateOfBirth = p.DateOfBirth.Format(dateLayout)
	}
	return info
}
