package auth

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type staticCatalog []string

func (c staticCatalog) AllMenuAPIPaths(context.Context) ([]string, error) {
	return c, nil
}

func newCasbinStore(t *testing.T) *CasbinGrantStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store, err := NewCasbinGrantStore(db, staticCatalog{"/user/add", "/user/del"}, 1)
	require.NoError(t, err)
	return store
}

func TestCasbinGrantStoreSuperuser(t *testing.T) {
	ctx := context.Background()
	store := newCasbinStore(t)

	require.NoError(t, store.SyncGrants(
		[]UserRoleGrant{{UserID: 1, RoleID: 1}, {UserID: 2, RoleID: 2}},
		[]RoleMenuGrant{{RoleID: 1, APIPath: "/user/add"}},
	))

	ok, err := store.IsSuperuser(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.IsSuperuser(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := store.AllMenuAPIPaths(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/user/add", "/user/del"}, all)
}

func TestCasbinGrantStoreUnionsRoles(t *testing.T) {
	ctx := context.Background()
	store := newCasbinStore(t)

	require.NoError(t, store.SyncGrants(
		[]UserRoleGrant{{UserID: 5, RoleID: 2}, {UserID: 5, RoleID: 3}},
		[]RoleMenuGrant{
			{RoleID: 2, APIPath: "/user/add"},
			{RoleID: 3, APIPath: "/role/add"},
			{RoleID: 3, APIPath: "/user/add"},
		},
	))

	paths, err := store.MenuAPIPathsForPrincipal(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"/role/add", "/user/add"}, paths)

	paths, err = store.MenuAPIPathsForPrincipal(ctx, 6)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestCasbinGrantStorePrincipalGrants(t *testing.T) {
	ctx := context.Background()
	store := newCasbinStore(t)

	require.NoError(t, store.SyncGrants(
		[]UserRoleGrant{{UserID: 1, RoleID: 1}, {UserID: 5, RoleID: 2}},
		[]RoleMenuGrant{{RoleID: 1, APIPath: "/user/del"}, {RoleID: 2, APIPath: "/user/add"}},
	))

	super, paths, err := store.PrincipalGrants(ctx, 1)
	require.NoError(t, err)
	assert.True(t, super)
	assert.Empty(t, paths)

	super, paths, err = store.PrincipalGrants(ctx, 5)
	require.NoError(t, err)
	assert.False(t, super)
	assert.Equal(t, []string{"/user/add"}, paths)

	super, paths, err = store.PrincipalGrants(ctx, 7)
	require.NoError(t, err)
	assert.False(t, super)
	assert.Empty(t, paths)
}

func TestCasbinGrantStoreSyncReplacesRules(t *testing.T) {
	ctx := context.Background()
	store := newCasbinStore(t)

	require.NoError(t, store.SyncGrants(
		[]UserRoleGrant{{UserID: 9, RoleID: 4}},
		[]RoleMenuGrant{{RoleID: 4, APIPath: "/stale"}},
	))

	err := store.SyncGrants(
		[]UserRoleGrant{{UserID: 5, RoleID: 2}, {UserID: 5, RoleID: 2}},
		[]RoleMenuGrant{{RoleID: 2, APIPath: "/user/add"}, {RoleID: 2, APIPath: ""}, {RoleID: 2, APIPath: "/user/add"}},
	)
	require.NoError(t, err)

	paths, err := store.MenuAPIPathsForPrincipal(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"/user/add"}, paths)

	paths, err = store.MenuAPIPathsForPrincipal(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, paths)
}
