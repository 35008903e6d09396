package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// CookieName 是浏览器端保存令牌的 cookie
const CookieName = "__roster_board_token"

var ErrInvalidToken = errors.New("无效的令牌")

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Session 在认证完成时创建一次，以引用的方式传递给需要它的组件，登出时显式清空
type Session struct {
	Subject   string
	Role      Role
	Token     string
	ExpiresAt time.Time
}

// Parse 校验令牌签名并从中构建会话
func Parse(tokenString string, secret []byte) (*Session, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	s := &Session{
		Subject: claims.Subject,
		Role:    Role(claims.Role),
		Token:   tokenString,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}

	return s, nil
}

// Issue 签发一个令牌。认证本身由外部服务负责，这里只用于种子数据和测试
func Issue(subject string, role Role, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   subject,
		},
	})
	return token.SignedString(secret)
}

func (s *Session) Active() bool {
	return s != nil && s.Subject != ""
}

func (s *Session) IsManager() bool {
	return s.Active() && s.Role == RoleManager
}

// Clear 在登出时调用，之后任何持有该会话的组件都会把它视为无效
func (s *Session) Clear() {
	s.Subject = ""
	s.Role = ""
	s.Token = ""
	s.ExpiresAt = time.Time{}
}

// TokenFromRequest 优先读取 Authorization 头中的 Bearer 令牌，其次读取 cookie
func TokenFromRequest(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

type ctxKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s.Active()
}
