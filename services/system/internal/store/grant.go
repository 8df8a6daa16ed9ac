package store

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/sysauth/pkg/auth"
	"github.com/sysauth/services/system/internal/model"
	"gorm.io/gorm"
)

// GrantStore 基于关系表的授权数据: 用户->角色->菜单
type GrantStore struct {
	db          *gorm.DB
	superRoleID int64
}

// NewGrantStore 创建授权仓储,superRoleID 为超级管理员角色
func NewGrantStore(db *gorm.DB, superRoleID int64) *GrantStore {
	return &GrantStore{db: db, superRoleID: superRoleID}
}

// IsSuperuser 是否持有超级管理员角色
func (s *GrantStore) IsSuperuser(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.UserRole{}).
		Where("user_id = ? AND role_id = ?", userID, s.superRoleID).
		Count(&count).Error
	return count > 0, err
}

// grantedMenus 用户经角色可达的菜单
func (s *GrantStore) grantedMenus(ctx context.Context, userID int64) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("sys_user_role AS ur").
		Joins("JOIN sys_role_menu AS rm ON rm.role_id = ur.role_id").
		Joins("JOIN sys_menu AS m ON m.id = rm.menu_id").
		Where("ur.user_id = ?", userID)
}

// MenuAPIPathsForPrincipal 用户经角色可达的接口路径,已去重且不含空串
func (s *GrantStore) MenuAPIPathsForPrincipal(ctx context.Context, userID int64) ([]string, error) {
	var paths []string
	err := s.grantedMenus(ctx, userID).
		Where("m.api_url <> ''").
		Distinct().
		Pluck("m.api_url", &paths).Error
	return paths, err
}

// AllMenuAPIPaths 全部菜单的非空接口路径
func (s *GrantStore) AllMenuAPIPaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := s.db.WithContext(ctx).Model(&model.Menu{}).
		Where("api_url <> ''").
		Distinct().
		Pluck("api_url", &paths).Error
	return paths, err
}

// AllMenus 全部菜单
func (s *GrantStore) AllMenus(ctx context.Context) ([]model.Menu, error) {
	var menus []model.Menu
	err := s.db.WithContext(ctx).Order("sort, id").Find(&menus).Error
	return menus, err
}

// MenusForPrincipal 用户经角色可达的菜单
func (s *GrantStore) MenusForPrincipal(ctx context.Context, userID int64) ([]model.Menu, error) {
	var menus []model.Menu
	err := s.grantedMenus(ctx, userID).
		Distinct("m.*").
		Order("m.sort, m.id").
		Find(&menus).Error
	return menus, err
}

// MenusByIDs 按ID查询菜单
func (s *GrantStore) MenusByIDs(ctx context.Context, ids []int64) ([]model.Menu, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var menus []model.Menu
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("sort, id").Find(&menus).Error
	return menus, err
}

// Grants 导出关系表中的全部授权,用于同步到 casbin
func (s *GrantStore) Grants(ctx context.Context) ([]auth.UserRoleGrant, []auth.RoleMenuGrant, error) {
	var userRoles []model.UserRole
	if err := s.db.WithContext(ctx).Order("id").Find(&userRoles).Error; err != nil {
		return nil, nil, err
	}
	urs := make([]auth.UserRoleGrant, 0, len(userRoles))
	for _, ur := range userRoles {
		urs = append(urs, auth.UserRoleGrant{UserID: ur.UserID, RoleID: ur.RoleID})
	}

	var rms []auth.RoleMenuGrant
	err := s.db.WithContext(ctx).
		Table("sys_role_menu AS rm").
		Select("rm.role_id AS role_id, m.api_url AS api_path").
		Joins("JOIN sys_menu AS m ON m.id = rm.menu_id").
		Where("m.api_url <> ''").
		Scan(&rms).Error
	if err != nil {
		return nil, nil, err
	}
	slices.SortFunc(rms, func(a, b auth.RoleMenuGrant) int {
		return cmp.Or(cmp.Compare(a.RoleID, b.RoleID), strings.Compare(a.APIPath, b.APIPath))
	})
	return urs, rms, nil
}
