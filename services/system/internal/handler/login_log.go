package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sysauth/pkg/dal"
	apperrors "github.com/sysauth/pkg/errors"
	"github.com/sysauth/pkg/response"
	"github.com/sysauth/pkg/router"
	"github.com/sysauth/services/system/internal/model"
	"github.com/sysauth/services/system/internal/store"
)

// LoginLogLister 登录日志查询
type LoginLogLister interface {
	List(ctx context.Context, q *store.LoginLogQuery) (*dal.PagedResult[model.LoginLog], error)
}

// LoginLogController 登录日志控制器
type LoginLogController struct {
	logs LoginLogLister
}

// NewLoginLogController 创建登录日志控制器
func NewLoginLogController(logs LoginLogLister) *LoginLogController {
	return &LoginLogController{logs: logs}
}

// Prefix 路由前缀
func (h *LoginLogController) Prefix() string {
	return "/system/loginLog"
}

// Routes 路由配置
func (h *LoginLogController) Routes() []router.Route {
	return []router.Route{
		{Method: fiber.MethodPost, Path: "/queryLoginLogList", Handler: h.list},
	}
}

func (h *LoginLogController) list(c *fiber.Ctx) error {
	var q store.LoginLogQuery
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&q); err != nil {
			return apperrors.BadRequest("请求参数格式错误")
		}
	}
	result, err := h.logs.List(c.UserContext(), &q)
	if err != nil {
		return apperrors.WithCause(apperrors.ErrInternalServer, err)
	}
	return response.SuccessPage(c, result.Items, result.Total, result.Page, result.PageSize)
}
