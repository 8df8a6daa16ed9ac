package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	apperrors "github.com/sysauth/pkg/errors"
	"github.com/sysauth/pkg/middleware"
	"github.com/sysauth/pkg/response"
	"github.com/sysauth/pkg/router"
	"github.com/sysauth/pkg/utils"
	"github.com/sysauth/services/system/internal/model"
	"github.com/sysauth/services/system/internal/permission"
	"github.com/sysauth/services/system/internal/session"
)

var (
	errAccountDisabled = apperrors.New(403, "用户已被禁用")
	errNoPermission    = apperrors.New(403, "用户没有分配角色或者菜单,不能登录")
)

// LoginService 登录
type LoginService interface {
	Login(ctx context.Context, loginID, password string, client model.ClientAttrs) (*session.LoginResult, error)
}

// MenuService 用户菜单
type MenuService interface {
	UserMenus(ctx context.Context, userID int64) (*permission.UserMenu, error)
}

// LoginRequest 登录请求,account 为用户名或手机号
type LoginRequest struct {
	Account  string `json:"account" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=72"`
}

// UserMenuResponse 用户菜单响应
type UserMenuResponse struct {
	*permission.UserMenu
	Name string `json:"name"`
}

// UserController 用户登录与菜单
type UserController struct {
	login    LoginService
	menus    MenuService
	limiter  fiber.Handler
	validate *validator.Validate
}

// NewUserController 创建用户控制器,limiter 为空时登录不限流
func NewUserController(login LoginService, menus MenuService, limiter fiber.Handler) *UserController {
	return &UserController{
		login:    login,
		menus:    menus,
		limiter:  limiter,
		validate: validator.New(),
	}
}

// Prefix 路由前缀
func (h *UserController) Prefix() string {
	return "/system/user"
}

const loginRoute = "/login"

// LoginPath 登录路由相对挂载点的完整路径
func (h *UserController) LoginPath() string {
	return h.Prefix() + loginRoute
}

// Routes 路由配置
func (h *UserController) Routes() []router.Route {
	login := router.Route{Method: fiber.MethodPost, Path: loginRoute, Handler: h.handleLogin}
	if h.limiter != nil {
		login.Middlewares = []fiber.Handler{h.limiter}
	}
	return []router.Route{
		login,
		{Method: fiber.MethodGet, Path: "/queryUserMenu", Handler: h.queryUserMenu},
	}
}

func (h *UserController) handleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest("请求参数格式错误")
	}
	if err := h.validate.Struct(&req); err != nil {
		return response.ValidateError(c, validationMessage(err))
	}

	ua := utils.ParseUserAgent(c.Get(fiber.HeaderUserAgent))
	client := model.ClientAttrs{
		IP:             c.IP(),
		Browser:        ua.Browser,
		BrowserVersion: ua.BrowserVersion,
		OS:             ua.OS,
		Platform:       ua.Platform,
		Engine:         ua.Engine,
	}

	res, err := h.login.Login(c.UserContext(), req.Account, req.Password, client)
	if err != nil {
		return loginError(err)
	}
	return response.Success(c, res)
}

// loginError 不区分用户不存在与密码错误
func loginError(err error) error {
	switch {
	case errors.Is(err, session.ErrAccountNotFound), errors.Is(err, session.ErrPasswordMismatch):
		return apperrors.ErrInvalidCredential
	case errors.Is(err, session.ErrAccountDisabled):
		return errAccountDisabled
	case errors.Is(err, session.ErrNoPermissionsGranted):
		return errNoPermission
	default:
		return apperrors.WithCause(apperrors.ErrInternalServer, err)
	}
}

func (h *UserController) queryUserMenu(c *fiber.Ctx) error {
	menus, err := h.menus.UserMenus(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return apperrors.WithCause(apperrors.ErrInternalServer, err)
	}
	return response.Success(c, &UserMenuResponse{
		UserMenu: menus,
		Name:     middleware.GetUsername(c),
	})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fe.Field() + " 校验失败: " + fe.Tag()
	}
	return apperrors.ErrValidation.Message
}
