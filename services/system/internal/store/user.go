package store

import (
	"context"
	"errors"
	"time"

	"github.com/sysauth/pkg/dal"
	"github.com/sysauth/services/system/internal/model"
	"gorm.io/gorm"
)

// UserStore 用户仓储
type UserStore struct {
	*dal.BaseRepository[model.User]
}

// NewUserStore 创建用户仓储
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{
		BaseRepository: dal.NewBaseRepository[model.User](db),
	}
}

// FindByLoginID 按用户名或手机号查找,不存在时返回 nil, nil
func (s *UserStore) FindByLoginID(ctx context.Context, loginID string) (*model.User, error) {
	if loginID == "" {
		return nil, nil
	}
	var u model.User
	err := s.DB().WithContext(ctx).
		Where("user_name = ?", loginID).
		Or("mobile = ?", loginID).
		Order("id").
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateLastLogin 更新最近登录信息
func (s *UserStore) UpdateLastLogin(ctx context.Context, userID int64, at time.Time, client model.ClientAttrs) error {
	return s.UpdateFields(ctx, userID, map[string]interface{}{
		"login_date":    at,
		"login_ip":      client.IP,
		"login_browser": client.Browser,
		"login_os":      client.OS,
	})
}
