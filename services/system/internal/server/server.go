// Package server 组装系统服务的 HTTP 应用
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sysauth/pkg/auth"
	"github.com/sysauth/pkg/config"
	"github.com/sysauth/pkg/logger"
	"github.com/sysauth/pkg/middleware"
	"github.com/sysauth/pkg/router"
	"github.com/sysauth/services/system/internal/handler"
	"github.com/sysauth/services/system/internal/permission"
	"github.com/sysauth/services/system/internal/session"
	"github.com/sysauth/services/system/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const apiPrefix = "/api"

// New 创建 HTTP 应用
//
// /health 与 /metrics 挂在 /api 之外,/api 下的全部路由都经过访问控制中间件。
// rdb 为空时登录不限流。auth.loginPath 必须等于实际注册的登录路由。
func New(cfg *config.Config, db *gorm.DB, rdb redis.Cmdable) (*fiber.App, error) {
	codec, err := auth.NewCodec(cfg.JWT.Secret, auth.WithIssuer(cfg.JWT.Issuer))
	if err != nil {
		return nil, err
	}

	grants, menus, err := grantSource(cfg, db)
	if err != nil {
		return nil, err
	}
	resolver := permission.NewResolver(grants, menus)
	issuer := session.NewIssuer(
		store.NewUserStore(db),
		store.NewLoginLogStore(db),
		resolver,
		codec,
		cfg.JWT.TTL(),
	)

	var limiter fiber.Handler
	if rdb != nil && cfg.Auth.LoginLimit.Limit > 0 {
		window := time.Duration(cfg.Auth.LoginLimit.Window) * time.Second
		limiter = middleware.NewRateLimiter(rdb, "sysauth:login", cfg.Auth.LoginLimit.Limit, window).Middleware()
	}

	users := handler.NewUserController(issuer, resolver, limiter)
	if route := apiPrefix + users.LoginPath(); cfg.Auth.LoginPath != route {
		return nil, fmt.Errorf("auth.loginPath %q does not match login route %q", cfg.Auth.LoginPath, route)
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ErrorHandler:          middleware.ErrorHandler,
		DisableStartupMessage: !cfg.IsDev(),
		ReadTimeout:           seconds(cfg.Server.HTTP.ReadTimeout),
		WriteTimeout:          seconds(cfg.Server.HTTP.WriteTimeout),
	})

	app.Use(middleware.Recovery())
	app.Use(middleware.RequestID())
	app.Use(middleware.Cors())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": cfg.App.Name,
			"time":    time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group(apiPrefix, middleware.AccessControl(codec, cfg.Auth.LoginPath))
	router.Register(api,
		users,
		handler.NewLoginLogController(store.NewLoginLogStore(db)),
	)

	return app, nil
}

// grantSource 按配置选择授权数据来源,菜单始终来自关系表
func grantSource(cfg *config.Config, db *gorm.DB) (permission.GrantSource, permission.MenuSource, error) {
	tables := store.NewGrantStore(db, cfg.Auth.SuperRoleID)
	if cfg.Auth.GrantBackend != "casbin" {
		return tables, tables, nil
	}

	cs, err := auth.NewCasbinGrantStore(db, tables, cfg.Auth.SuperRoleID)
	if err != nil {
		return nil, nil, err
	}
	userRoles, roleMenus, err := tables.Grants(context.Background())
	if err != nil {
		return nil, nil, fmt.Errorf("load grants: %w", err)
	}
	if err := cs.SyncGrants(userRoles, roleMenus); err != nil {
		return nil, nil, fmt.Errorf("sync casbin rules: %w", err)
	}
	logger.Info("授权规则已同步到 casbin",
		zap.Int("userRoles", len(userRoles)),
		zap.Int("roleMenus", len(roleMenus)),
	)
	return cs, tables, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
