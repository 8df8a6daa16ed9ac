package permission

import (
	"context"
	"fmt"
	"slices"

	"github.com/sysauth/services/system/internal/model"
)

// MenuNode 前端菜单节点
type MenuNode struct {
	ID       int64  `json:"id"`
	ParentID int64  `json:"parentId"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	ApiURL   string `json:"apiUrl"`
	MenuType int8   `json:"menuType"`
	Path     string `json:"path"`
}

// UserMenu 用户可见的菜单与按钮权限
type UserMenu struct {
	SysMenu []MenuNode `json:"sysMenu"`
	BtnMenu []string   `json:"btnMenu"`
}

// UserMenus 计算用户可见菜单
//
// 隐藏菜单被忽略;非按钮菜单连同其父节点一起返回,按钮只贡献接口路径。
func (r *Resolver) UserMenus(ctx context.Context, userID int64) (*UserMenu, error) {
	super, err := r.grants.IsSuperuser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check superuser: %w", err)
	}

	var granted []model.Menu
	if super {
		granted, err = r.menus.AllMenus(ctx)
	} else {
		granted, err = r.menus.MenusForPrincipal(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load menus: %w", err)
	}

	ids := make([]int64, 0, len(granted)*2)
	buttons := make([]string, 0, len(granted))
	for _, m := range granted {
		if m.Visible == 0 {
			continue
		}
		if m.MenuType != model.MenuTypeButton {
			ids = append(ids, m.ID)
			if m.ParentID != 0 {
				ids = append(ids, m.ParentID)
			}
		}
		if m.ApiURL != "" {
			buttons = append(buttons, m.ApiURL)
		}
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	visible, err := r.menus.MenusByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load menus by ids: %w", err)
	}

	nodes := make([]MenuNode, 0, len(visible))
	for _, m := range visible {
		nodes = append(nodes, MenuNode{
			ID:       m.ID,
			ParentID: m.ParentID,
			Name:     m.MenuName,
			Icon:     m.MenuIcon,
			ApiURL:   m.ApiURL,
			MenuType: m.MenuType,
			Path:     m.MenuURL,
		})
	}
	return &UserMenu{SysMenu: nodes, BtnMenu: normalize(buttons)}, nil
}
