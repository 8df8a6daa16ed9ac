package model

import (
	"github.com/sysauth/pkg/dal"
)

// Role 角色模型
type Role struct {
	dal.Model
	RoleName string `gorm:"size:50;not null" json:"roleName"`
	RoleKey  string `gorm:"size:50;uniqueIndex;not null" json:"roleKey"`
	Status   int8   `gorm:"not null" json:"status"`
	Sort     int    `gorm:"default:0" json:"sort"`
	Remark   string `gorm:"size:255" json:"remark"`
}

// TableName 表名
func (Role) TableName() string {
	return "sys_role"
}

// RoleMenu 角色菜单关联
type RoleMenu struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID int64 `gorm:"uniqueIndex:idx_role_menu;not null" json:"roleId"`
	MenuID int64 `gorm:"uniqueIndex:idx_role_menu;not null" json:"menuId"`
}

// TableName 表名
func (RoleMenu) TableName() string {
	return "sys_role_menu"
}
