package permission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysauth/services/system/internal/model"
)

type fakeGrants struct {
	supers   map[int64]bool
	granted  map[int64][]string
	all      []string
	superErr error
}

func (f *fakeGrants) IsSuperuser(_ context.Context, id int64) (bool, error) {
	return f.supers[id], f.superErr
}

func (f *fakeGrants) MenuAPIPathsForPrincipal(_ context.Context, id int64) ([]string, error) {
	return f.granted[id], nil
}

func (f *fakeGrants) AllMenuAPIPaths(context.Context) ([]string, error) {
	return f.all, nil
}

type fakeMenus struct {
	menus   []model.Menu
	granted map[int64][]int64
}

func (f *fakeMenus) AllMenus(context.Context) ([]model.Menu, error) { return f.menus, nil }

func (f *fakeMenus) MenusForPrincipal(_ context.Context, id int64) ([]model.Menu, error) {
	return f.MenusByIDs(context.Background(), f.granted[id])
}

func (f *fakeMenus) MenusByIDs(_ context.Context, ids []int64) ([]model.Menu, error) {
	var out []model.Menu
	for _, m := range f.menus {
		for _, id := range ids {
			if m.ID == id {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func testMenu(id, parent int64, typ int8, apiURL string, visible int8) model.Menu {
	m := model.Menu{ParentID: parent, MenuName: "m", MenuType: typ, ApiURL: apiURL, Visible: visible}
	m.ID = id
	return m
}

func newGrants() *fakeGrants {
	return &fakeGrants{
		supers:  map[int64]bool{1: true},
		granted: map[int64][]string{2: {"/user/del", "", "/user/add", "/user/del"}},
		all:     []string{"/user/add", "/user/del", "", "/role/add"},
	}
}

func TestResolveSuperuser(t *testing.T) {
	r := NewResolver(newGrants(), nil)
	perms, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"/role/add", "/user/add", "/user/del"}, perms)
}

func TestResolveOrdinaryUser(t *testing.T) {
	r := NewResolver(newGrants(), nil)
	perms, err := r.Resolve(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"/user/add", "/user/del"}, perms)
}

func TestResolveNoRoles(t *testing.T) {
	r := NewResolver(newGrants(), nil)
	perms, err := r.Resolve(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, perms)
	assert.NotNil(t, perms)
}

func TestResolveIsRepeatable(t *testing.T) {
	r := NewResolver(newGrants(), nil)
	first, err := r.Resolve(context.Background(), 2)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveStoreError(t *testing.T) {
	grants := newGrants()
	grants.superErr = errors.New("db down")
	_, err := NewResolver(grants, nil).Resolve(context.Background(), 2)
	assert.ErrorIs(t, err, grants.superErr)
}

// combinedGrants 只通过 PrincipalGrants 提供数据,分步查询直接报错
type combinedGrants struct {
	*fakeGrants
	calls int
}

func (c *combinedGrants) IsSuperuser(context.Context, int64) (bool, error) {
	return false, errors.New("split lookup used")
}

func (c *combinedGrants) MenuAPIPathsForPrincipal(context.Context, int64) ([]string, error) {
	return nil, errors.New("split lookup used")
}

func (c *combinedGrants) PrincipalGrants(_ context.Context, id int64) (bool, []string, error) {
	c.calls++
	if c.supers[id] {
		return true, nil, nil
	}
	return false, c.granted[id], nil
}

func TestResolveUsesCombinedLookup(t *testing.T) {
	grants := &combinedGrants{fakeGrants: newGrants()}
	r := NewResolver(grants, nil)

	perms, err := r.Resolve(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"/user/add", "/user/del"}, perms)

	perms, err = r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"/role/add", "/user/add", "/user/del"}, perms)

	perms, err = r.Resolve(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, perms)
	assert.NotNil(t, perms)
	assert.Equal(t, 3, grants.calls)
}

func TestUserMenus(t *testing.T) {
	menus := &fakeMenus{
		menus: []model.Menu{
			testMenu(1, 0, model.MenuTypeDir, "", 1),
			testMenu(2, 1, model.MenuTypeMenu, "/user/list", 1),
			testMenu(3, 2, model.MenuTypeButton, "/user/add", 1),
			testMenu(4, 2, model.MenuTypeButton, "/user/del", 0),
			testMenu(5, 0, model.MenuTypeMenu, "", 0),
		},
		granted: map[int64][]int64{2: {2, 3, 4}},
	}
	r := NewResolver(newGrants(), menus)

	got, err := r.UserMenus(context.Background(), 2)
	require.NoError(t, err)
	ids := make([]int64, 0, len(got.SysMenu))
	for _, n := range got.SysMenu {
		ids = append(ids, n.ID)
	}
	assert.ElementsMatch(t, []int64{1, 2}, ids)
	assert.Equal(t, []string{"/user/add", "/user/list"}, got.BtnMenu)

	got, err = r.UserMenus(context.Background(), 1)
	require.NoError(t, err)
	ids = ids[:0]
	for _, n := range got.SysMenu {
		ids = append(ids, n.ID)
	}
	assert.ElementsMatch(t, []int64{1, 2}, ids)
	assert.Equal(t, []string{"/user/add", "/user/list"}, got.BtnMenu)

	got, err = r.UserMenus(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, got.SysMenu)
	assert.Empty(t, got.BtnMenu)
}
