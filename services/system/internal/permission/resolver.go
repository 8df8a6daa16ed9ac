// Package permission 计算用户可访问的接口路径与菜单
package permission

import (
	"context"
	"fmt"
	"slices"

	"github.com/sysauth/pkg/utils"
	"github.com/sysauth/services/system/internal/model"
)

// GrantSource 授权数据来源
type GrantSource interface {
	IsSuperuser(ctx context.Context, userID int64) (bool, error)
	MenuAPIPathsForPrincipal(ctx context.Context, userID int64) ([]string, error)
	AllMenuAPIPaths(ctx context.Context) ([]string, error)
}

// PrincipalGrantSource 可一次性给出超管判定与授权路径的数据来源
type PrincipalGrantSource interface {
	PrincipalGrants(ctx context.Context, userID int64) (bool, []string, error)
}

// MenuSource 菜单数据来源
type MenuSource interface {
	AllMenus(ctx context.Context) ([]model.Menu, error)
	MenusForPrincipal(ctx context.Context, userID int64) ([]model.Menu, error)
	MenusByIDs(ctx context.Context, ids []int64) ([]model.Menu, error)
}

// Resolver 权限解析,只读且无状态
type Resolver struct {
	grants GrantSource
	menus  MenuSource
}

// NewResolver 创建权限解析器
func NewResolver(grants GrantSource, menus MenuSource) *Resolver {
	return &Resolver{grants: grants, menus: menus}
}

// Resolve 返回用户可访问的接口路径,已去重排序且不含空串
//
// 超级管理员得到全部菜单的接口路径;没有角色的用户得到空集。
func (r *Resolver) Resolve(ctx context.Context, userID int64) ([]string, error) {
	super, paths, err := r.principalGrants(ctx, userID)
	if err != nil {
		return nil, err
	}
	if super {
		paths, err = r.grants.AllMenuAPIPaths(ctx)
		if err != nil {
			return nil, fmt.Errorf("load menu api paths: %w", err)
		}
	}
	return normalize(paths), nil
}

func (r *Resolver) principalGrants(ctx context.Context, userID int64) (bool, []string, error) {
	if pg, ok := r.grants.(PrincipalGrantSource); ok {
		super, paths, err := pg.PrincipalGrants(ctx, userID)
		if err != nil {
			return false, nil, fmt.Errorf("load principal grants: %w", err)
		}
		return super, paths, nil
	}

	super, err := r.grants.IsSuperuser(ctx, userID)
	if err != nil {
		return false, nil, fmt.Errorf("check superuser: %w", err)
	}
	if super {
		return true, nil, nil
	}
	paths, err := r.grants.MenuAPIPathsForPrincipal(ctx, userID)
	if err != nil {
		return false, nil, fmt.Errorf("load menu api paths: %w", err)
	}
	return false, paths, nil
}

func normalize(paths []string) []string {
	out := utils.Filter(paths, func(p string) bool { return p != "" })
	slices.Sort(out)
	return slices.Compact(out)
}
