package auth

import (
	"errors"
	"slices"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 令牌校验只会以下面三种错误之一失败
var (
	ErrTokenExpired      = errors.New("token has expired")
	ErrTokenMalformed    = errors.New("token is malformed")
	ErrSignatureMismatch = errors.New("token signature mismatch")
)

// ErrEmptySecret 签名密钥为空
var ErrEmptySecret = errors.New("jwt secret must not be empty")

// Claims JWT声明
type Claims struct {
	UserID      int64    `json:"userId"`
	Username    string   `json:"username"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// Credential 校验通过的令牌内容
//
// 权限集在签发时固化,请求期间不会重新解析;角色或菜单的变更要到下次登录才生效。
type Credential struct {
	UserID      int64
	Username    string
	Permissions []string // 已排序去重
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Allows 路径是否在权限集中,精确匹配
func (c *Credential) Allows(path string) bool {
	_, found := slices.BinarySearch(c.Permissions, path)
	return found
}

// Codec 令牌编解码器,密钥在构造后只读
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// CodecOption 编解码器选项
type CodecOption func(*Codec)

// WithClock 替换时钟
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// WithIssuer 设置签发方
func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) { c.issuer = issuer }
}

// NewCodec 创建令牌编解码器
func NewCodec(secret string, opts ...CodecOption) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	c := &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Mint 签发令牌
func (c *Codec) Mint(userID int64, username string, permissions []string, ttl time.Duration) (string, error) {
	if ttl < time.Second {
		return "", errors.New("token ttl must be at least one second")
	}
	now := c.now().Truncate(time.Second)
	claims := Claims{
		UserID:      userID,
		Username:    username,
		Permissions: normalizePermissions(permissions),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl.Truncate(time.Second))),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify 校验令牌
func (c *Codec) Verify(tokenString string) (*Credential, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		// 签名先于有效期校验,伪造令牌不会得到 Expired
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureMismatch
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenMalformed
		}
	}

	if claims.IssuedAt == nil || !claims.ExpiresAt.After(claims.IssuedAt.Time) {
		return nil, ErrTokenMalformed
	}
	if claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return nil, ErrTokenMalformed
	}

	return &Credential{
		UserID:      claims.UserID,
		Username:    claims.Username,
		Permissions: normalizePermissions(claims.Permissions),
		IssuedAt:    claims.IssuedAt.Time,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// normalizePermissions 去重排序,丢弃空路径
func normalizePermissions(permissions []string) []string {
	out := make([]string, 0, len(permissions))
	for _, p := range permissions {
		if p != "" {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// TokenInfo Token信息
type TokenInfo struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// NewTokenInfo 创建Token信息
func NewTokenInfo(token string, ttl time.Duration) *TokenInfo {
	return &TokenInfo{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
	}
}
