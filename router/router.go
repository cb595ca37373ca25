package router

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"hisaab/api"
	"hisaab/config"
	_ "hisaab/docs"
	"hisaab/middleware"
	"hisaab/service"
	"hisaab/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// 路由级提示
const (
	MsgHealthy       = "Hisaab Kitaab API is running!"
	MsgRouteNotFound = "API endpoint not found"
	MsgInternalError = "Internal server error"
)

// Services 路由依赖的服务
type Services struct {
	Auth         service.Authenticator
	Categories   store.CategoryStore
	Transactions *service.TransactionService
	Dashboard    *service.DashboardService
	Export       *service.ExportService
}

// NewServices 基于一组存储构建全部服务
func NewServices(st *store.Store, auth service.Authenticator) *Services {
	return &Services{
		Auth:         auth,
		Categories:   st.Categories,
		Transactions: service.NewTransactionService(st.Transactions),
		Dashboard:    service.NewDashboardService(st.Transactions),
		Export:       service.NewExportService(st.Transactions),
	}
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, svc *Services) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)
	api.SetupValidator()

	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(RecoveryMiddleware(cfg.IsRelease()))
	r.Use(CORSMiddleware(cfg.Server.ClientURL))

	authHandler := api.NewAuthHandler(svc.Auth)
	txnHandler := api.NewTransactionHandler(svc.Transactions)
	dashboardHandler := api.NewDashboardHandler(svc.Dashboard)
	exportHandler := api.NewExportHandler(svc.Export)
	categoryHandler := api.NewCategoryHandler(svc.Categories)

	jwtAuth := middleware.JWTAuth(svc.Auth)

	v1 := r.Group("/api")
	{
		v1.GET("/health", healthHandler(svc.Auth.Mode()))

		// 认证相关路由，登录注册按接口和 IP 分别限流
		auth := v1.Group("/auth")
		{
			limit := middleware.NewAttemptLimiter(cfg.RateLimit.AuthAttempts, cfg.RateLimit.Window).Limit(middleware.RouteIPKey)
			auth.POST("/register", limit, authHandler.Register)
			auth.POST("/login", limit, authHandler.Login)
			auth.GET("/profile", jwtAuth, authHandler.GetProfile)
			auth.PUT("/profile", jwtAuth, authHandler.UpdateProfile)
		}

		v1.GET("/categories", jwtAuth, categoryHandler.List)

		transactions := v1.Group("/transactions")
		transactions.Use(jwtAuth)
		{
			// 固定路径需在 /:id 之前注册
			transactions.GET("/dashboard", dashboardHandler.Get)
			transactions.GET("/export", exportHandler.Export)
			transactions.GET("", txnHandler.List)
			transactions.POST("", txnHandler.Create)
			transactions.GET("/:id", txnHandler.Get)
			transactions.PUT("/:id", txnHandler.Update)
			transactions.DELETE("/:id", txnHandler.Delete)
			transactions.PATCH("/:id/settle", txnHandler.Settle)
		}
	}

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.NoRoute(func(c *gin.Context) {
		api.NotFound(c, MsgRouteNotFound)
	})

	return r
}

func healthHandler(mode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   MsgHealthy,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
			"mode":      mode,
		})
	}
}

// RecoveryMiddleware 捕获 panic 并返回 500，非生产环境附带调用栈
func RecoveryMiddleware(release bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logrus.WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(c),
			"path":       c.Request.URL.Path,
		}).Errorf("panic recovered: %v", recovered)

		body := gin.H{"success": false, "message": MsgInternalError}
		if !release {
			body["message"] = fmt.Sprint(recovered)
			body["stack"] = string(debug.Stack())
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}

// CORSMiddleware 允许前端地址跨域访问，clientURL 为 * 或空时放行任意来源
func CORSMiddleware(clientURL string) gin.HandlerFunc {
	allowed := strings.TrimRight(strings.TrimSpace(clientURL), "/")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowed == "" || allowed == "*":
			if origin != "" {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			} else {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			}
		case origin == allowed:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		default:
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowed)
		}
		c.Writer.Header().Add("Vary", "Origin")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
