package model

import (
	"time"
)

// 登录结果
const (
	LoginFailed  int8 = 0
	LoginSuccess int8 = 1
)

// LoginLog 登录日志
type LoginLog struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	LoginName      string    `gorm:"size:50;index" json:"loginName"`
	IP             string    `gorm:"size:50" json:"ipaddr"`
	Browser        string    `gorm:"size:50" json:"browser"`
	BrowserVersion string    `gorm:"size:50" json:"browserVersion"`
	OS             string    `gorm:"size:50" json:"os"`
	Platform       string    `gorm:"size:50" json:"platform"`
	Engine         string    `gorm:"size:50" json:"engine"`
	Status         int8      `gorm:"not null" json:"status"` // 1:成功 0:失败
	Message        string    `gorm:"size:255" json:"msg"`
	LoginTime      time.Time `gorm:"index" json:"loginTime"`
}

// TableName 表名
func (LoginLog) TableName() string {
	return "sys_login_log"
}

// All 参与迁移的全部模型
func All() []any {
	return []any{&User{}, &UserRole{}, &Role{}, &RoleMenu{}, &Menu{}, &LoginLog{}}
}
