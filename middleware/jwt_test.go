package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hisaab/config"
	"hisaab/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initJWTTestConfig() {
	config.GlobalConfig = &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		JWT:    config.JWTConfig{Secret: "test-jwt-secret-key"},
	}
	InitJWT(config.GlobalConfig)
}

// claimsResolver 直接信任令牌载荷
type claimsResolver struct{}

func (claimsResolver) Authenticate(_ context.Context, token string) (*models.Profile, error) {
	claims, err := ParseToken(token)
	if err != nil {
		return nil, err
	}
	return &models.Profile{ID: claims.UserID, Email: claims.Email, Name: claims.Name}, nil
}

func TestGenerateToken(t *testing.T) {
	initJWTTestConfig()
	defer func() { config.GlobalConfig = nil }()

	token, err := GenerateToken("u-1", 30*24*time.Hour)
	require.NoError(t, err)
	assert.Greater(t, len(token), 20)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Empty(t, claims.Email)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestGenerateDemoToken(t *testing.T) {
	initJWTTestConfig()
	defer func() { config.GlobalConfig = nil }()

	token, err := GenerateDemoToken(&models.Profile{ID: "d-1", Email: "demo@example.com", Name: "demo"}, 365*24*time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "d-1", claims.UserID)
	assert.Equal(t, "demo@example.com", claims.Email)
	assert.Equal(t, "demo", claims.Name)
}

func TestParseToken(t *testing.T) {
	initJWTTestConfig()
	defer func() { config.GlobalConfig = nil }()

	// 空字符串
	_, err := ParseToken("")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// 无效格式
	_, err = ParseToken("not.a.valid.jwt")
	assert.Error(t, err)

	// 已过期
	expired, err := GenerateToken("u-1", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// 其它密钥签发
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u-1"})
	signed, err := other.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = ParseToken(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// 缺少 userId
	empty, err := signClaims(Claims{}, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(empty)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTAuth(t *testing.T) {
	initJWTTestConfig()
	defer func() { config.GlobalConfig = nil }()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(JWTAuth(claimsResolver{}))
	router.GET("/protected", func(c *gin.Context) {
		c.String(200, "id:%s", GetCurrentUserID(c))
	})

	doReq := func(auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/protected", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// 无 token
	w := doReq("")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), MsgNoToken)

	// 格式错误（非 Bearer）
	w = doReq("Basic xyz")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), MsgNoToken)

	// 无效 token
	w = doReq("Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), MsgInvalidToken)

	// 有效 token
	token, _ := GenerateToken("u-42", time.Hour)
	w = doReq("Bearer " + token)
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "id:u-42", w.Body.String())
}

type failingResolver struct{}

func (failingResolver) Authenticate(context.Context, string) (*models.Profile, error) {
	return nil, errors.New("user vanished")
}

func TestJWTAuth_ResolverFailure(t *testing.T) {
	initJWTTestConfig()
	defer func() { config.GlobalConfig = nil }()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(JWTAuth(failingResolver{}))
	router.GET("/protected", func(c *gin.Context) { c.Status(200) })

	token, _ := GenerateToken("u-1", time.Hour)
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), MsgInvalidToken)
}

func TestGetCurrentUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetCurrentUserID(c))
	assert.Nil(t, GetCurrentUser(c))

	SetCurrentUser(c, &models.Profile{ID: "u-99"})
	assert.Equal(t, "u-99", GetCurrentUserID(c))
}
