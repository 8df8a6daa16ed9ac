package auth

import (
	"context"
	"fmt"
	"slices"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// grantModel 用户->角色->接口路径
const grantModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// ActionAccess 菜单接口授权动作
const ActionAccess = "access"

// MenuCatalog 全量菜单接口路径来源
type MenuCatalog interface {
	AllMenuAPIPaths(ctx context.Context) ([]string, error)
}

// UserRoleGrant 用户角色关联
type UserRoleGrant struct {
	UserID int64
	RoleID int64
}

// RoleMenuGrant 角色菜单关联,只保留接口路径
type RoleMenuGrant struct {
	RoleID  int64
	APIPath string
}

// CasbinGrantStore 基于 Casbin 规则表的授权数据
//
// 每次查询都从适配器加载一个临时 Enforcer,进程内不保留任何授权状态。
type CasbinGrantStore struct {
	adapter     *gormadapter.Adapter
	catalog     MenuCatalog
	superRoleID int64
}

// NewCasbinGrantStore 创建 Casbin 授权数据源,规则存放在 casbin_rule 表
func NewCasbinGrantStore(db *gorm.DB, catalog MenuCatalog, superRoleID int64) (*CasbinGrantStore, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}
	return &CasbinGrantStore{
		adapter:     adapter,
		catalog:     catalog,
		superRoleID: superRoleID,
	}, nil
}

func userSubject(userID int64) string { return fmt.Sprintf("user:%d", userID) }

func roleSubject(roleID int64) string { return fmt.Sprintf("role:%d", roleID) }

// enforcer 加载一个调用期内使用的 Enforcer
func (s *CasbinGrantStore) enforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(grantModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}
	e, err := casbin.NewEnforcer(m, s.adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	return e, nil
}

// IsSuperuser 是否直接持有超级管理员角色
func (s *CasbinGrantStore) IsSuperuser(ctx context.Context, userID int64) (bool, error) {
	super, _, err := s.load(userID, false)
	return super, err
}

// MenuAPIPathsForPrincipal 沿用户->角色链收集接口路径,已去重
func (s *CasbinGrantStore) MenuAPIPathsForPrincipal(ctx context.Context, userID int64) ([]string, error) {
	_, paths, err := s.load(userID, true)
	return paths, err
}

// PrincipalGrants 用同一个 Enforcer 一次性给出超管判定与授权路径
//
// 超级管理员不再展开角色链,paths 为空。
func (s *CasbinGrantStore) PrincipalGrants(ctx context.Context, userID int64) (bool, []string, error) {
	return s.load(userID, true)
}

func (s *CasbinGrantStore) load(userID int64, withPaths bool) (bool, []string, error) {
	e, err := s.enforcer()
	if err != nil {
		return false, nil, err
	}
	super, err := e.HasRoleForUser(userSubject(userID), roleSubject(s.superRoleID))
	if err != nil {
		return false, nil, err
	}
	if !withPaths || super {
		return super, nil, nil
	}

	policies, err := e.GetImplicitPermissionsForUser(userSubject(userID))
	if err != nil {
		return false, nil, err
	}
	paths := make([]string, 0, len(policies))
	for _, p := range policies {
		if len(p) >= 3 && p[2] == ActionAccess && p[1] != "" {
			paths = append(paths, p[1])
		}
	}
	slices.Sort(paths)
	return false, slices.Compact(paths), nil
}

// AllMenuAPIPaths 全量菜单接口路径
func (s *CasbinGrantStore) AllMenuAPIPaths(ctx context.Context) ([]string, error) {
	return s.catalog.AllMenuAPIPaths(ctx)
}

// SyncGrants 用关系表中的授权覆盖 casbin_rule
func (s *CasbinGrantStore) SyncGrants(userRoles []UserRoleGrant, roleMenus []RoleMenuGrant) error {
	e, err := s.enforcer()
	if err != nil {
		return err
	}
	e.EnableAutoSave(false)
	e.ClearPolicy()

	groupings := make([][]string, 0, len(userRoles))
	seenRoles := make(map[UserRoleGrant]struct{}, len(userRoles))
	for _, ur := range userRoles {
		if _, ok := seenRoles[ur]; ok {
			continue
		}
		seenRoles[ur] = struct{}{}
		groupings = append(groupings, []string{userSubject(ur.UserID), roleSubject(ur.RoleID)})
	}
	if len(groupings) > 0 {
		if _, err := e.AddGroupingPolicies(groupings); err != nil {
			return fmt.Errorf("failed to add role grants: %w", err)
		}
	}

	rules := make([][]string, 0, len(roleMenus))
	seen := make(map[RoleMenuGrant]struct{}, len(roleMenus))
	for _, rm := range roleMenus {
		if rm.APIPath == "" {
			continue
		}
		if _, ok := seen[rm]; ok {
			continue
		}
		seen[rm] = struct{}{}
		rules = append(rules, []string{roleSubject(rm.RoleID), rm.APIPath, ActionAccess})
	}
	if len(rules) > 0 {
		if _, err := e.AddPolicies(rules); err != nil {
			return fmt.Errorf("failed to add menu grants: %w", err)
		}
	}

	return e.SavePolicy()
}
