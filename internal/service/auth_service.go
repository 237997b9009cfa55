package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/config"
	"github.com/qs3c/fitness_go_server/internal/model"
	"github.com/qs3c/fitness_go_server/internal/model/dto"
	"github.com/qs3c/fitness_go_server/internal/pkg/jwt"
	"github.com/qs3c/fitness_go_server/internal/pkg/logger"
	"github.com/qs3c/fitness_go_server/internal/pkg/oauth"
	"github.com/qs3c/fitness_go_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrUsernameExists     = errors.New("用户名已被使用")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrInvalidOAuthState  = errors.New("登录状态已失效，请重新登录")
)

// GithubProvider GitHub 登录
type GithubProvider interface {
	GetAuthURL(state string) string
	FetchUser(ctx context.Context, code string) (*oauth.GithubUser, error)
}

// OAuthStateStore OAuth state 存储
type OAuthStateStore interface {
	GenerateState(ctx context.Context, redirectURI string) (string, error)
	ValidateState(ctx context.Context, state string) (string, error)
}

type AuthService struct {
	userRepo *repository.UserRepository
	github   GithubProvider
	states   OAuthStateStore
	cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, github GithubProvider, states OAuthStateStore, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		github:   github,
		states:   states,
		cfg:      cfg,
	}
}

// Register 用户注册，成功后直接登录
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	exists, err = s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	passwordStr := string(hashedPassword)
	user := &model.User{
		Username:     req.Username,
		Email:        &req.Email,
		PasswordHash: &passwordStr,
	}

	if err := s.userRepo.Create(user); err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	logger.Info("user registered", "user_id", user.ID)
	return &dto.RegisterResponse{
		UserID: user.ID,
		Token:  token,
	}, nil
}

// Login 用户登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  buildUserInfo(user),
	}, nil
}

// GetUserByID 根据 ID 获取用户
func (s *AuthService) GetUserByID(id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GithubAuthURL 生成 state 并返回 GitHub 授权地址
func (s *AuthService) GithubAuthURL(ctx context.Context, redirectURI string) (string, error) {
	state, err := s.states.GenerateState(ctx, redirectURI)
	if err != nil {
		return "", err
	}
	return s.github.GetAuthURL(state), nil
}

// GithubCallback 校验 state 并完成 GitHub 登录，返回登录结果和登录前页面
func (s *AuthService) GithubCallback(ctx context.Context, code, state string) (*dto.LoginResponse, string, error) {
	redirectURI, err := s.states.ValidateState(ctx, state)
	if err != nil {
		if errors.Is(err, oauth.ErrInvalidState) {
			return nil, "", ErrInvalidOAuthState
		}
		return nil, "", err
	}

	githubUser, err := s.github.FetchUser(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get github user: %w", err)
	}

	githubIDStr := fmt.Sprintf("%d", githubUser.ID)

	user, err := s.userRepo.GetByGithubID(githubIDStr)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	if user == nil {
		user = &model.User{
			Username:  githubUser.Login,
			GithubID:  &githubIDStr,
			AvatarURL: githubUser.AvatarURL,
		}

		if githubUser.Email != "" {
			// 邮箱已被其他账号使用时不绑定
			taken, err := s.userRepo.ExistsByEmail(githubUser.Email)
			if err != nil {
				return nil, "", err
			}
			if !taken {
				user.Email = &githubUser.Email
			}
		}

		// 确保用户名唯一
		exists, _ := s.userRepo.ExistsByUsername(user.Username)
		if exists {
			user.Username = fmt.Sprintf("%s_%d", githubUser.Login, githubUser.ID)
		}

		if err := s.userRepo.Create(user); err != nil {
			return nil, "", fmt.Errorf("failed to create user: %w", err)
		}
		logger.Info("github user created", "user_id", user.ID, "github_id", githubIDStr)
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, "", err
	}

	return &dto.LoginResponse{
		Token:    token,
		User:     buildUserInfo(user),
		Redirect: redirectURI,
	}, redirectURI, nil
}

func buildUserInfo(user *model.User) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}

	if user.Email != nil {
		info.Email = *user.Email
	}

	return info
}
