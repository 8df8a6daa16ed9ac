package model

import (
	"github.com/sysauth/pkg/dal"
)

// 菜单类型
const (
	MenuTypeDir    int8 = 1
	MenuTypeMenu   int8 = 2
	MenuTypeButton int8 = 3
)

// Menu 菜单模型,ApiURL 即按钮权限对应的后端路由
type Menu struct {
	dal.Model
	ParentID int64  `gorm:"default:0;index" json:"parentId"`
	MenuName string `gorm:"size:50;not null" json:"menuName"`
	MenuType int8   `gorm:"not null" json:"menuType"` // 1:目录 2:菜单 3:按钮
	MenuURL  string `gorm:"size:255" json:"menuUrl"`
	MenuIcon string `gorm:"size:50" json:"menuIcon"`
	ApiURL   string `gorm:"column:api_url;size:255" json:"apiUrl"`
	Visible  int8   `gorm:"not null" json:"visible"` // 1:显示 0:隐藏
	Sort     int    `gorm:"default:0" json:"sort"`
}

// TableName 表名
func (Menu) TableName() string {
	return "sys_menu"
}
