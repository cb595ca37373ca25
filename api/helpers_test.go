package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"hisaab/config"
	"hisaab/middleware"
	"hisaab/models"
	"hisaab/service"
	"hisaab/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	SetupValidator()
}

func testJWTConfig() config.JWTConfig {
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		JWT: config.JWTConfig{
			Secret:         "api-test-secret",
			ExpireTime:     time.Hour,
			DemoExpireTime: time.Hour,
		},
	}
	config.GlobalConfig = cfg
	middleware.InitJWT(cfg)
	return cfg.JWT
}

func setUserMiddleware(p *models.Profile) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetCurrentUser(c, p)
		c.Next()
	}
}

// doJSON 发送请求并解析 JSON 响应
func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	return doAuthJSON(t, r, method, path, "", body)
}

// doAuthJSON 携带 Bearer token 发送请求
func doAuthJSON(t *testing.T, r *gin.Engine, method, path, token, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 && json.Valid(w.Body.Bytes()) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// newTransactionRouter 以固定用户挂载记账相关接口
func newTransactionRouter(st *store.Store, user *models.Profile) *gin.Engine {
	r := gin.New()
	r.Use(setUserMiddleware(user))

	txns := NewTransactionHandler(service.NewTransactionService(st.Transactions))
	dashboard := NewDashboardHandler(service.NewDashboardService(st.Transactions))
	export := NewExportHandler(service.NewExportService(st.Transactions))
	r.GET("/transactions/dashboard", dashboard.Get)
	r.GET("/transactions/export", export.Export)
	r.GET("/transactions", txns.List)
	r.POST("/transactions", txns.Create)
	r.GET("/transactions/:id", txns.Get)
	r.PUT("/transactions/:id", txns.Update)
	r.DELETE("/transactions/:id", txns.Delete)
	r.PATCH("/transactions/:id/settle", txns.Settle)
	r.GET("/categories", NewCategoryHandler(st.Categories).List)
	return r
}

func errorPaths(t *testing.T, resp map[string]interface{}) []string {
	t.Helper()
	raw, ok := resp["errors"].([]interface{})
	require.True(t, ok, "response has no errors array")
	paths := make([]string, 0, len(raw))
	for _, e := range raw {
		paths = append(paths, e.(map[string]interface{})["path"].(string))
	}
	return paths
}
