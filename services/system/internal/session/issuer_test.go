package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysauth/pkg/auth"
	"github.com/sysauth/services/system/internal/model"
)

type fakeUsers struct {
	users     map[string]*model.User
	findErr   error
	updateErr error
	updated   []int64
}

func (f *fakeUsers) FindByLoginID(_ context.Context, loginID string) (*model.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.users[loginID], nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, userID int64, _ time.Time, _ model.ClientAttrs) error {
	f.updated = append(f.updated, userID)
	return f.updateErr
}

type fakeAudit struct {
	entries []*model.LoginLog
	err     error
}

func (f *fakeAudit) RecordLoginAttempt(_ context.Context, entry *model.LoginLog) error {
	f.entries = append(f.entries, entry)
	return f.err
}

type fakeResolver map[int64][]string

func (f fakeResolver) Resolve(_ context.Context, userID int64) ([]string, error) {
	return f[userID], nil
}

type fixture struct {
	issuer *Issuer
	users  *fakeUsers
	audit  *fakeAudit
	codec  *auth.Codec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)

	mk := func(id int64, name string, status int8) *model.User {
		u := &model.User{UserName: name, Password: hash, Status: status}
		u.ID = id
		return u
	}
	users := &fakeUsers{users: map[string]*model.User{
		"admin": mk(1, "admin", model.UserStatusEnabled),
		"carol": mk(3, "carol", model.UserStatusEnabled),
		"dave":  mk(4, "dave", model.UserStatusDisabled),
	}}
	audit := &fakeAudit{}
	codec, err := auth.NewCodec("test-secret")
	require.NoError(t, err)
	resolver := fakeResolver{1: {"/user/add", "/user/del"}, 4: {"/user/add"}}

	return &fixture{
		issuer: NewIssuer(users, audit, resolver, codec, time.Hour),
		users:  users,
		audit:  audit,
		codec:  codec,
	}
}

var client = model.ClientAttrs{
	IP:             "10.0.0.1",
	Browser:        "Chrome",
	BrowserVersion: "120.0.0.0",
	OS:             "Intel Mac OS X 10_15_7",
	Platform:       "Macintosh",
	Engine:         "AppleWebKit",
}

func TestLoginSuccess(t *testing.T) {
	f := newFixture(t)

	res, err := f.issuer.Login(context.Background(), "admin", "secret", client)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.UserID)
	assert.Equal(t, "Bearer", res.Token.TokenType)
	assert.Equal(t, int64(3600), res.Token.ExpiresIn)

	cred, err := f.codec.Verify(res.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"/user/add", "/user/del"}, cred.Permissions)
	assert.Equal(t, "admin", cred.Username)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, model.LoginSuccess, f.audit.entries[0].Status)
	assert.Equal(t, "10.0.0.1", f.audit.entries[0].IP)
	assert.Equal(t, "120.0.0.0", f.audit.entries[0].BrowserVersion)
	assert.Equal(t, "Macintosh", f.audit.entries[0].Platform)
	assert.Equal(t, "AppleWebKit", f.audit.entries[0].Engine)
	assert.Equal(t, []int64{1}, f.users.updated)
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name     string
		loginID  string
		password string
		want     error
		msg      string
	}{
		{"unknown account", "nobody", "secret", ErrAccountNotFound, msgNotFound},
		{"wrong password", "admin", "wrong", ErrPasswordMismatch, msgBadPassword},
		{"no permissions", "carol", "secret", ErrNoPermissionsGranted, msgNoPermission},
		{"disabled", "dave", "secret", ErrAccountDisabled, msgDisabled},
		{"disabled with wrong password", "dave", "wrong", ErrPasswordMismatch, msgBadPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			res, err := f.issuer.Login(context.Background(), tt.loginID, tt.password, client)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.want)

			require.Len(t, f.audit.entries, 1)
			assert.Equal(t, model.LoginFailed, f.audit.entries[0].Status)
			assert.Equal(t, tt.msg, f.audit.entries[0].Message)
			assert.Equal(t, tt.loginID, f.audit.entries[0].LoginName)
			assert.Empty(t, f.users.updated)
		})
	}
}

func TestLoginStoreErrorIsAudited(t *testing.T) {
	f := newFixture(t)
	f.users.findErr = errors.New("db down")

	_, err := f.issuer.Login(context.Background(), "admin", "secret", client)
	require.ErrorIs(t, err, f.users.findErr)
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, model.LoginFailed, f.audit.entries[0].Status)
}

func TestLoginSwallowsAuditAndUpdateErrors(t *testing.T) {
	f := newFixture(t)
	f.audit.err = errors.New("audit down")
	f.users.updateErr = errors.New("update failed")

	res, err := f.issuer.Login(context.Background(), "admin", "secret", client)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token.AccessToken)

	_, err = f.issuer.Login(context.Background(), "admin", "wrong", client)
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}
