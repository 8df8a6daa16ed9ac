package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysauth/pkg/auth"
	"github.com/sysauth/pkg/response"
)

const testLoginPath = "/api/system/user/login"

type accessFixture struct {
	app   *fiber.App
	codec *auth.Codec
	now   time.Time
}

func newAccessFixture(t *testing.T) *accessFixture {
	t.Helper()
	f := &accessFixture{now: time.Unix(1_700_000_000, 0)}
	codec, err := auth.NewCodec("test-secret", auth.WithClock(func() time.Time { return f.now }))
	require.NoError(t, err)
	f.codec = codec

	app := fiber.New()
	api := app.Group("/api", AccessControl(codec, testLoginPath))
	api.Post("/system/user/login", func(c *fiber.Ctx) error {
		return response.Success(c, "login")
	})
	api.Post("/user/add", func(c *fiber.Ctx) error {
		id, _ := PrincipalFrom(c.UserContext())
		return response.Success(c, fiber.Map{
			"userId":   GetUserID(c),
			"username": GetUsername(c),
			"ctxId":    id,
		})
	})
	api.Post("/role/add", func(c *fiber.Ctx) error {
		return response.Success(c, "role")
	})
	f.app = app
	return f
}

func (f *accessFixture) mint(t *testing.T, perms ...string) string {
	t.Helper()
	token, err := f.codec.Mint(7, "alice", perms, time.Hour)
	require.NoError(t, err)
	return token
}

func (f *accessFixture) call(t *testing.T, path, authorization string) response.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body response.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestAccessControlLoginBypass(t *testing.T) {
	f := newAccessFixture(t)
	body := f.call(t, testLoginPath, "")
	assert.True(t, body.Success)
	assert.Equal(t, "login", body.Data)
}

func TestAccessControlMissingToken(t *testing.T) {
	f := newAccessFixture(t)

	body := f.call(t, "/api/user/add", "")
	assert.False(t, body.Success)
	assert.Equal(t, response.CodeUnauthorized, body.Code)
	assert.Equal(t, MsgMissingToken, body.Message)

	body = f.call(t, "/api/user/add", "Bearer ")
	assert.Equal(t, response.CodeUnauthorized, body.Code)
	assert.Equal(t, MsgMissingToken, body.Message)
}

func TestAccessControlInvalidTokensLookAlike(t *testing.T) {
	f := newAccessFixture(t)
	valid := f.mint(t, "/api/user/add")

	other, err := auth.NewCodec("another-secret", auth.WithClock(func() time.Time { return f.now }))
	require.NoError(t, err)
	forged, err := other.Mint(7, "alice", []string{"/api/user/add"}, time.Hour)
	require.NoError(t, err)

	expiring, err := f.codec.Mint(7, "alice", []string{"/api/user/add"}, time.Second)
	require.NoError(t, err)

	cases := map[string]string{
		"malformed": "Bearer not-a-token",
		"forged":    "Bearer " + forged,
		"tampered":  "Bearer " + flipLast(valid),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			body := f.call(t, "/api/user/add", header)
			assert.False(t, body.Success)
			assert.Equal(t, response.CodeUnauthorized, body.Code)
			assert.Equal(t, MsgInvalidToken, body.Message)
			assert.Nil(t, body.Data)
		})
	}

	f.now = f.now.Add(time.Second)
	body := f.call(t, "/api/user/add", "Bearer "+expiring)
	assert.Equal(t, response.CodeUnauthorized, body.Code)
	assert.Equal(t, MsgInvalidToken, body.Message)
}

func TestAccessControlForbiddenAndForwarded(t *testing.T) {
	f := newAccessFixture(t)
	token := f.mint(t, "/api/user/add", "/api/user/del")

	body := f.call(t, "/api/role/add", "Bearer "+token)
	assert.False(t, body.Success)
	assert.Equal(t, response.CodeUnauthorized, body.Code)
	assert.Equal(t, MsgForbidden, body.Message)

	body = f.call(t, "/api/user/add", "Bearer "+token)
	require.True(t, body.Success)
	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 7, data["userId"])
	assert.EqualValues(t, 7, data["ctxId"])
	assert.Equal(t, "alice", data["username"])
}

func TestAccessControlExactMatch(t *testing.T) {
	f := newAccessFixture(t)
	token := f.mint(t, "/api/user")

	body := f.call(t, "/api/user/add", "Bearer "+token)
	assert.Equal(t, MsgForbidden, body.Message)
}

func TestAccessControlUnprefixedToken(t *testing.T) {
	f := newAccessFixture(t)
	token := f.mint(t, "/api/user/add")

	body := f.call(t, "/api/user/add", token)
	assert.True(t, body.Success)
}

func flipLast(token string) string {
	last := byte('A')
	if token[len(token)-1] == 'A' {
		last = 'B'
	}
	return token[:len(token)-1] + string(last)
}
