package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sysauth/pkg/auth"
	"github.com/sysauth/pkg/logger"
	"github.com/sysauth/pkg/metrics"
	"github.com/sysauth/pkg/response"
	"go.uber.org/zap"
)

// 拒绝提示,结构与响应码一致,只有文案不同
const (
	MsgMissingToken = "未提供认证令牌"
	MsgInvalidToken = "无效的认证令牌"
	MsgForbidden    = "无权限访问"
)

// 拒绝原因,只写入日志与指标
const (
	ReasonMissingToken      = "missing_token"
	ReasonExpired           = "expired"
	ReasonMalformed         = "malformed"
	ReasonSignatureMismatch = "signature_mismatch"
	ReasonForbidden         = "forbidden"
)

const (
	localsUserID   = "userId"
	localsUsername = "username"
)

// TokenVerifier 令牌校验
type TokenVerifier interface {
	Verify(token string) (*auth.Credential, error)
}

// AccessControl 访问控制中间件
//
// 登录路由直接放行;其余请求必须携带有效令牌,且请求路径精确命中令牌内的权限集。
func AccessControl(verifier TokenVerifier, loginPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == loginPath {
			metrics.RecordDecision(metrics.DecisionLogin, "")
			return c.Next()
		}

		header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if header == "" {
			return deny(c, ReasonMissingToken, MsgMissingToken)
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			return deny(c, ReasonMissingToken, MsgMissingToken)
		}

		cred, err := verifier.Verify(token)
		if err != nil {
			return deny(c, verifyReason(err), MsgInvalidToken)
		}

		if !cred.Allows(path) {
			return deny(c, ReasonForbidden, MsgForbidden, zap.Int64("userId", cred.UserID))
		}

		c.Locals(localsUserID, cred.UserID)
		c.Locals(localsUsername, cred.Username)
		c.SetUserContext(WithPrincipal(c.UserContext(), cred.UserID))

		metrics.RecordDecision(metrics.DecisionForwarded, "")
		return c.Next()
	}
}

func deny(c *fiber.Ctx, reason, message string, fields ...zap.Field) error {
	metrics.RecordDecision(metrics.DecisionDenied, reason)
	logger.Warn("访问被拒绝", append(fields,
		zap.String("reason", reason),
		zap.String("path", c.Path()),
		zap.String("method", c.Method()),
		zap.String("ip", c.IP()),
		zap.String("requestId", GetRequestID(c)),
	)...)
	return response.Deny(c, message)
}

func verifyReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, auth.ErrSignatureMismatch):
		return ReasonSignatureMismatch
	default:
		return ReasonMalformed
	}
}

type principalKey struct{}

// WithPrincipal 将调用者ID写入 context
func WithPrincipal(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, principalKey{}, userID)
}

// PrincipalFrom 从 context 读取调用者ID
func PrincipalFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(principalKey{}).(int64)
	return id, ok
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := c.Locals(localsUserID).(int64)
	return userID
}

// GetUsername 从上下文获取用户名
func GetUsername(c *fiber.Ctx) string {
	username, _ := c.Locals(localsUsername).(string)
	return username
}
