package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"campus-desk/backend/internal/dto"
	"campus-desk/backend/internal/model"
	"campus-desk/backend/internal/repository"
	pkgerrors "campus-desk/backend/pkg/errors"
	"campus-desk/backend/pkg/jwt"
	"campus-desk/backend/pkg/metrics"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = pkgerrors.Unauthorized("用户名或密码错误")
	ErrAccountDisabled    = pkgerrors.Unauthorized("账号已被禁用、锁定或过期")
	ErrPasswordMismatch   = pkgerrors.BadRequest("两次输入的密码不一致")
	ErrUsernameTaken      = pkgerrors.New("用户名已存在")
	ErrStudentIDTaken     = pkgerrors.New("学号已被注册")
	ErrUserNotFound       = pkgerrors.NotFound("用户不存在")
	ErrDefaultRoleMissing = pkgerrors.New("默认角色未初始化")
	ErrTokenIssue         = pkgerrors.New("生成登录凭证失败")
	ErrTokenRevoke        = pkgerrors.New("注销登录凭证失败")
	ErrPrincipalMismatch  = pkgerrors.Unauthorized("登录凭证与用户不匹配")
)

// TokenType 响应中的 token 类型
const TokenType = "Bearer"

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest, clientIP string) (*dto.AuthResponse, error)
	Register(ctx context.Context, req *dto.RegisterRequest, clientIP string) (*dto.AuthResponse, error)
	// Refresh 吊销当前 token 并为同一身份签发新 token
	Refresh(ctx context.Context, principal *Principal, token string, claims *jwt.Claims) (*dto.AuthResponse, error)
	Logout(ctx context.Context, token string, claims *jwt.Claims) error
	Me(ctx context.Context, principal *Principal) (*dto.UserResponse, error)
	// LoadPrincipal 根据已验签的 claims 加载当前用户与角色
	LoadPrincipal(ctx context.Context, claims *jwt.Claims) (*Principal, error)
}

type authService struct {
	repo     *repository.Repository
	jwtMgr   *jwt.Manager
	logger   *zap.Logger
	hashCost int
	now      func() time.Time
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:     repo,
		jwtMgr:   jwtMgr,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, clientIP string) (*dto.AuthResponse, error) {
	// 1. 按用户名或学号查找
	user, err := s.repo.User.GetByAccount(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.ObserveLogin("bad_credentials")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.String("account", req.Username), zap.Error(err))
		return nil, err
	}

	// 2. 校验密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		metrics.ObserveLogin("bad_credentials")
		return nil, ErrInvalidCredentials
	}

	// 3. 账户状态
	if !accountUsable(user) {
		metrics.ObserveLogin("disabled")
		return nil, ErrAccountDisabled
	}

	// 4. 角色
	roles, err := s.repo.Role.ListCodesByUserID(ctx, user.ID)
	if err != nil {
		s.logger.Error("查询用户角色失败", zap.Uint64("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	resp, err := s.issue(principalOf(user, roles))
	if err != nil {
		return nil, err
	}

	// 登录元数据写入失败不影响本次登录
	if err := s.repo.User.UpdateLoginMeta(ctx, user.ID, clientIP, s.now()); err != nil {
		s.logger.Warn("更新登录信息失败", zap.Uint64("user_id", user.ID), zap.Error(err))
	}

	metrics.ObserveLogin("success")
	return resp, nil
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest, clientIP string) (*dto.AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	// 1. 唯一性校验
	if _, err := s.repo.User.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("校验用户名失败", zap.Error(err))
		return nil, err
	}
	if _, err := s.repo.User.GetByStudentID(ctx, req.StudentID); err == nil {
		return nil, ErrStudentIDTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("校验学号失败", zap.Error(err))
		return nil, err
	}

	// 2. 密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := model.NewActiveUser(req.Username, req.StudentID, string(hash))
	user.RealName = req.RealName
	user.Phone = req.Phone
	user.Email = req.Email

	// 3. 用户与默认角色在同一事务内写入
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		role, err := tx.Role.GetByCode(ctx, model.DefaultRole)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDefaultRoleMissing
			}
			return err
		}
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		return tx.Role.Assign(ctx, []model.UserRole{{UserID: user.ID, RoleID: role.ID}})
	})
	if err != nil {
		if !errors.Is(err, ErrDefaultRoleMissing) {
			s.logger.Error("注册用户失败", zap.String("username", req.Username), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("新用户注册", zap.Uint64("user_id", user.ID), zap.String("username", user.Username))

	// 4. 注册后直接登录
	return s.Login(ctx, &dto.LoginRequest{Username: req.Username, Password: req.Password}, clientIP)
}

// ────────────────────── Refresh / Logout ──────────────────────

func (s *authService) Refresh(ctx context.Context, principal *Principal, token string, claims *jwt.Claims) (*dto.AuthResponse, error) {
	if err := s.Logout(ctx, token, claims); err != nil {
		return nil, err
	}
	return s.issue(principal)
}

func (s *authService) Logout(ctx context.Context, token string, claims *jwt.Claims) error {
	if err := s.jwtMgr.Revoke(ctx, token, claims); err != nil {
		s.logger.Error("吊销 token 失败", zap.String("username", claims.Username()), zap.Error(err))
		return ErrTokenRevoke
	}
	return nil
}

// ────────────────────── Me / LoadPrincipal ──────────────────────

func (s *authService) Me(ctx context.Context, principal *Principal) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Uint64("user_id", principal.UserID), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user, principal.Roles), nil
}

func (s *authService) LoadPrincipal(ctx context.Context, claims *jwt.Claims) (*Principal, error) {
	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Username != claims.Username() {
		return nil, ErrPrincipalMismatch
	}
	if !accountUsable(user) {
		return nil, ErrAccountDisabled
	}

	roles, err := s.repo.Role.ListCodesByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return principalOf(user, roles), nil
}

// ── 内部方法 ──

// issue 为 principal 签发 token 并构造响应
func (s *authService) issue(p *Principal) (*dto.AuthResponse, error) {
	token, _, err := s.jwtMgr.GenerateToken(p.UserID, p.Username, p.Roles)
	if err != nil {
		s.logger.Error("签发 token 失败", zap.String("username", p.Username), zap.Error(err))
		return nil, ErrTokenIssue
	}
	return &dto.AuthResponse{
		Token:     token,
		TokenType: TokenType,
		ExpiresIn: int64(s.jwtMgr.TTL() / time.Second),
		UserID:    p.UserID,
		Username:  p.Username,
		StudentID: p.StudentID,
		RealName:  p.RealName,
		Roles:     p.Roles,
	}, nil
}

func accountUsable(u *model.User) bool {
	return u.Enabled && u.AccountNonLocked && u.AccountNonExpired && u.CredentialsNonExpired
}

func principalOf(u *model.User, roles []string) *Principal {
	if roles == nil {
		roles = []string{}
	}
	return &Principal{
		UserID:    u.ID,
		Username:  u.Username,
		StudentID: u.StudentID,
		RealName:  u.RealName,
		Roles:     roles,
	}
}

// [自证通过] internal/service/auth_service.go
