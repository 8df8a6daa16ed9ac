package store

import (
	"context"

	"github.com/sysauth/pkg/dal"
	"github.com/sysauth/services/system/internal/model"
	"gorm.io/gorm"
)

const maxLoginLogPageSize = 100

// LoginLogQuery 登录日志查询条件
type LoginLogQuery struct {
	dal.Pagination
	LoginName string `json:"loginName"`
	Status    *int8  `json:"status"`
}

// LoginLogStore 登录日志仓储
type LoginLogStore struct {
	*dal.BaseRepository[model.LoginLog]
}

// NewLoginLogStore 创建登录日志仓储
func NewLoginLogStore(db *gorm.DB) *LoginLogStore {
	return &LoginLogStore{
		BaseRepository: dal.NewBaseRepository[model.LoginLog](db),
	}
}

// RecordLoginAttempt 写入一条登录日志
func (s *LoginLogStore) RecordLoginAttempt(ctx context.Context, entry *model.LoginLog) error {
	return s.Create(ctx, entry)
}

// List 分页查询,最新的在前
func (s *LoginLogStore) List(ctx context.Context, q *LoginLogQuery) (*dal.PagedResult[model.LoginLog], error) {
	q.Normalize(maxLoginLogPageSize)

	opts := []dal.QueryOption{dal.WithOrder("id DESC")}
	if q.LoginName != "" {
		opts = append(opts, dal.WithWhere("login_name LIKE ?", "%"+q.LoginName+"%"))
	}
	if q.Status != nil {
		opts = append(opts, dal.WithWhere("status = ?", *q.Status))
	}
	return s.FindPaged(ctx, &q.Pagination, opts...)
}
