package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"hisaab/config"
	"hisaab/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// 认证失败提示
const (
	MsgNoToken      = "No token provided, authorization denied"
	MsgInvalidToken = "Token is not valid"
)

// contextKeyUser 请求上下文中当前用户的键
const contextKeyUser = "currentUser"

var (
	jwtSecret []byte

	// ErrTokenInvalid 令牌无效或已过期
	ErrTokenInvalid = errors.New("token is not valid")
)

// Claims JWT 载荷，演示令牌额外携带 email 与 name
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// IdentityResolver 将令牌解析为当前用户身份
type IdentityResolver interface {
	Authenticate(ctx context.Context, token string) (*models.Profile, error)
}

// InitJWT 初始化签名密钥
func InitJWT(cfg *config.Config) {
	jwtSecret = []byte(cfg.JWT.Secret)
}

// GenerateToken 签发只携带用户 id 的令牌
func GenerateToken(userID string, expire time.Duration) (string, error) {
	return signClaims(Claims{UserID: userID}, expire)
}

// GenerateDemoToken 签发携带完整身份的演示令牌
func GenerateDemoToken(p *models.Profile, expire time.Duration) (string, error) {
	return signClaims(Claims{UserID: p.ID, Email: p.Email, Name: p.Name}, expire)
}

func signClaims(claims Claims, expire time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken 校验签名与有效期并返回载荷
func ParseToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// JWTAuth 认证中间件，Authorization: Bearer <token>
func JWTAuth(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || !strings.HasPrefix(header, "Bearer ") || token == "" {
			unauthorized(c, MsgNoToken)
			return
		}

		profile, err := resolver.Authenticate(c.Request.Context(), token)
		if err != nil {
			unauthorized(c, MsgInvalidToken)
			return
		}
		c.Set(contextKeyUser, profile)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": msg,
	})
}

// GetCurrentUser 获取当前登录用户，未登录返回 nil
func GetCurrentUser(c *gin.Context) *models.Profile {
	if v, ok := c.Get(contextKeyUser); ok {
		if p, ok := v.(*models.Profile); ok {
			return p
		}
	}
	return nil
}

// GetCurrentUserID 获取当前登录用户 id，未登录返回空串
func GetCurrentUserID(c *gin.Context) string {
	if p := GetCurrentUser(c); p != nil {
		return p.ID
	}
	return ""
}

// SetCurrentUser 写入当前用户，供测试及内部调用
func SetCurrentUser(c *gin.Context, p *models.Profile) {
	c.Set(contextKeyUser, p)
}
