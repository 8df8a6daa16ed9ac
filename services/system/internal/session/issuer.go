// Package session 登录编排: 校验凭据、解析权限、签发令牌并记录登录日志
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sysauth/pkg/auth"
	"github.com/sysauth/pkg/logger"
	"github.com/sysauth/pkg/metrics"
	"github.com/sysauth/pkg/utils"
	"github.com/sysauth/services/system/internal/model"
	"go.uber.org/zap"
)

// 登录失败原因,按判定顺序排列,先命中者终止
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrPasswordMismatch     = errors.New("password mismatch")
	ErrAccountDisabled      = errors.New("account disabled")
	ErrNoPermissionsGranted = errors.New("no permissions granted")
)

// 登录日志文案
const (
	msgLoginSuccess   = "登录成功"
	msgNotFound       = "用户不存在"
	msgBadPassword    = "密码不正确"
	msgDisabled       = "用户已被禁用"
	msgNoPermission   = "用户没有分配角色或者菜单,不能登录"
	msgInternalFailed = "登录失败,系统错误"
)

// PrincipalStore 用户数据
type PrincipalStore interface {
	FindByLoginID(ctx context.Context, loginID string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time, client model.ClientAttrs) error
}

// AuditSink 登录日志
type AuditSink interface {
	RecordLoginAttempt(ctx context.Context, entry *model.LoginLog) error
}

// PermissionResolver 权限解析
type PermissionResolver interface {
	Resolve(ctx context.Context, userID int64) ([]string, error)
}

// TokenMinter 令牌签发
type TokenMinter interface {
	Mint(userID int64, username string, permissions []string, ttl time.Duration) (string, error)
}

// LoginResult 登录成功结果
type LoginResult struct {
	Token       *auth.TokenInfo `json:"token"`
	UserID      int64           `json:"userId"`
	UserName    string          `json:"userName"`
	NickName    string          `json:"nickName"`
	Permissions []string        `json:"permissions"`
}

// Issuer 登录编排
type Issuer struct {
	users    PrincipalStore
	audit    AuditSink
	resolver PermissionResolver
	minter   TokenMinter
	ttl      time.Duration
	now      func() time.Time
}

// NewIssuer 创建登录编排
func NewIssuer(users PrincipalStore, audit AuditSink, resolver PermissionResolver, minter TokenMinter, ttl time.Duration) *Issuer {
	return &Issuer{
		users:    users,
		audit:    audit,
		resolver: resolver,
		minter:   minter,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login 登录
//
// 任何分支都会写一条登录日志;日志与最近登录信息写入失败只记录,不影响返回结果。
func (s *Issuer) Login(ctx context.Context, loginID, password string, client model.ClientAttrs) (*LoginResult, error) {
	u, err := s.users.FindByLoginID(ctx, loginID)
	if err != nil {
		return nil, s.fail(ctx, loginID, client, msgInternalFailed, "error", fmt.Errorf("find user: %w", err))
	}
	if u == nil {
		return nil, s.fail(ctx, loginID, client, msgNotFound, "not_found", ErrAccountNotFound)
	}
	if !auth.CheckPassword(password, u.Password) {
		return nil, s.fail(ctx, loginID, client, msgBadPassword, "password_mismatch", ErrPasswordMismatch)
	}
	if !u.Enabled() {
		return nil, s.fail(ctx, loginID, client, msgDisabled, "disabled", ErrAccountDisabled)
	}

	perms, err := s.resolver.Resolve(ctx, u.ID)
	if err != nil {
		return nil, s.fail(ctx, loginID, client, msgInternalFailed, "error", fmt.Errorf("resolve permissions: %w", err))
	}
	if len(perms) == 0 {
		return nil, s.fail(ctx, loginID, client, msgNoPermission, "no_permissions", ErrNoPermissionsGranted)
	}

	token, err := s.minter.Mint(u.ID, u.UserName, perms, s.ttl)
	if err != nil {
		return nil, s.fail(ctx, loginID, client, msgInternalFailed, "error", fmt.Errorf("mint token: %w", err))
	}

	s.record(ctx, loginID, client, model.LoginSuccess, msgLoginSuccess)
	if err := s.users.UpdateLastLogin(ctx, u.ID, s.now(), client); err != nil {
		logger.Warn("更新最近登录信息失败", zap.Int64("userId", u.ID), zap.Error(err))
	}
	metrics.RecordLogin("success")
	logger.Info("用户登录", zap.Int64("userId", u.ID), zap.String("username", u.UserName), zap.Int("permissions", len(perms)))

	return &LoginResult{
		Token:       auth.NewTokenInfo(token, s.ttl),
		UserID:      u.ID,
		UserName:    u.UserName,
		NickName:    u.NickName,
		Permissions: perms,
	}, nil
}

func (s *Issuer) fail(ctx context.Context, loginID string, client model.ClientAttrs, msg, outcome string, err error) error {
	s.record(ctx, loginID, client, model.LoginFailed, msg)
	metrics.RecordLogin(outcome)
	if outcome == "error" {
		logger.Error("登录失败", zap.String("loginId", loginID), zap.Error(err))
	}
	return err
}

func (s *Issuer) record(ctx context.Context, loginID string, client model.ClientAttrs, status int8, msg string) {
	entry := &model.LoginLog{
		LoginName:      utils.Truncate(loginID, 50),
		IP:             client.IP,
		Browser:        client.Browser,
		BrowserVersion: client.BrowserVersion,
		OS:             client.OS,
		Platform:       client.Platform,
		Engine:         client.Engine,
		Status:         status,
		Message:        msg,
		LoginTime:      s.now(),
	}
	if err := s.audit.RecordLoginAttempt(ctx, entry); err != nil {
		logger.Warn("写入登录日志失败", zap.String("loginId", loginID), zap.Error(err))
	}
}
