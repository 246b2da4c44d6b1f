package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	jwtauth "github.com/ashwinyue/next-label/internal/auth"
	"github.com/ashwinyue/next-label/internal/errs"
	"github.com/ashwinyue/next-label/internal/model"
	"github.com/ashwinyue/next-label/internal/repository"
)

var (
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInactive 账号已停用
	ErrInactive = errors.New("account is disabled")
)

// Service 认证服务
type Service struct {
	repo   *repository.Repositories
	signer *jwtauth.Signer
	cost   int
}

// NewService 创建认证服务
func NewService(repo *repository.Repositories, signer *jwtauth.Signer) *Service {
	return &Service{repo: repo, signer: signer, cost: bcrypt.DefaultCost}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Register 注册用户
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*model.User, error) {
	// 检查用户名是否已存在
	if _, err := s.repo.User.GetByUsername(ctx, req.Username); err == nil {
		return nil, errs.Conflict("user %q already exists", req.Username)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: string(hashed),
		IsActive:     true,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login 校验密码并签发令牌
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.signer.Sign(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &LoginResponse{User: user, Token: token}, nil
}

// Authenticate 解析令牌并加载用户
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.signer.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.User.GetByID(ctx, userID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, jwtauth.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactive
	}
	return user, nil
}
