package model

import (
	"time"

	"github.com/sysauth/pkg/dal"
)

// 用户状态
const (
	UserStatusDisabled int8 = 0
	UserStatusEnabled  int8 = 1
)

// User 用户模型
type User struct {
	dal.Model
	UserName     string     `gorm:"size:50;uniqueIndex;not null" json:"userName"`
	NickName     string     `gorm:"size:50" json:"nickName"`
	Mobile       string     `gorm:"size:20;index" json:"mobile"`
	Password     string     `gorm:"size:255;not null" json:"-"` // bcrypt 哈希
	Status       int8       `gorm:"not null" json:"status"`     // 1:正常 0:禁用
	LoginDate    *time.Time `json:"loginDate"`
	LoginIP      string     `gorm:"size:50" json:"loginIp"`
	LoginBrowser string     `gorm:"size:50" json:"loginBrowser"`
	LoginOS      string     `gorm:"size:50" json:"loginOs"`
}

// TableName 表名
func (User) TableName() string {
	return "sys_user"
}

// Enabled 账号是否可用
func (u *User) Enabled() bool {
	return u.Status == UserStatusEnabled
}

// UserRole 用户角色关联
type UserRole struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"uniqueIndex:idx_user_role;not null" json:"userId"`
	RoleID int64 `gorm:"uniqueIndex:idx_user_role;not null" json:"roleId"`
}

// TableName 表名
func (UserRole) TableName() string {
	return "sys_user_role"
}

// ClientAttrs 登录客户端信息
type ClientAttrs struct {
	IP             string
	Browser        string
	BrowserVersion string
	OS             string
	Platform       string
	Engine         string
}
