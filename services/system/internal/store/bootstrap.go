package store

import (
	"context"
	"fmt"

	"github.com/sysauth/pkg/auth"
	"github.com/sysauth/pkg/logger"
	"github.com/sysauth/services/system/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate 迁移系统表
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	return nil
}

// 初始菜单,覆盖本服务自身的受控接口
const (
	seedQueryUserMenu     = "/api/system/user/queryUserMenu"
	seedQueryLoginLogList = "/api/system/loginLog/queryLoginLogList"
)

// seedMenus 菜单表为空时写入系统管理目录及其下的接口菜单
func seedMenus(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&model.Menu{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	dir := model.Menu{MenuName: "系统管理", MenuType: model.MenuTypeDir, MenuURL: "/system", MenuIcon: "setting", Visible: 1, Sort: 1}
	if err := tx.Create(&dir).Error; err != nil {
		return err
	}
	children := []model.Menu{
		{ParentID: dir.ID, MenuName: "登录日志", MenuType: model.MenuTypeMenu, MenuURL: "/system/loginLog", ApiURL: seedQueryLoginLogList, Visible: 1, Sort: 1},
		{ParentID: dir.ID, MenuName: "用户菜单", MenuType: model.MenuTypeButton, ApiURL: seedQueryUserMenu, Visible: 1, Sort: 2},
	}
	return tx.Create(&children).Error
}

// Bootstrap 用户表为空时创建超级管理员角色、初始管理员与初始菜单
//
// 菜单表已有数据时不写入菜单。返回是否执行了初始化。
func Bootstrap(ctx context.Context, db *gorm.DB, username, password string, superRoleID int64) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	users := NewUserStore(db)
	count, err := users.Count(ctx, nil)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	err = users.Transaction(ctx, func(tx *gorm.DB) error {
		var role model.Role
		if err := tx.Where("id = ?", superRoleID).First(&role).Error; err != nil {
			role = model.Role{RoleName: "超级管理员", RoleKey: "admin", Status: 1}
			role.ID = superRoleID
			if err := tx.Create(&role).Error; err != nil {
				return err
			}
		}

		admin := model.User{
			UserName: username,
			NickName: username,
			Password: hash,
			Status:   model.UserStatusEnabled,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.UserRole{UserID: admin.ID, RoleID: role.ID}).Error; err != nil {
			return err
		}
		return seedMenus(tx)
	})
	if err != nil {
		return false, fmt.Errorf("初始化管理员失败: %w", err)
	}

	logger.Info("已创建初始管理员", zap.String("username", username), zap.Int64("roleId", superRoleID))
	return true, nil
}
