package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"hisaab/config"
	"hisaab/database"
	"hisaab/logger"
	"hisaab/middleware"
	"hisaab/router"
	"hisaab/service"
	"hisaab/store"

	"github.com/sirupsen/logrus"
)

// @title Hisaab Kitaab API
// @version 1.0
// @description 个人记账 API：收入、支出、借入、借出记录，借贷结清与仪表盘统计
// @host localhost:5000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const version = "1.0.0"

var (
	configFile  string
	port        string
	showVersion bool
	demoMode    bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 5000 或 :5000")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
	flag.BoolVar(&demoMode, "demo", false, "以演示模式启动（数据仅保存在内存中）")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Printf("Hisaab Kitaab API v%s\n", version)
		return
	}

	// 加载配置（内置配置 + 可选的外部配置覆盖）
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		logrus.Fatalf("加载配置失败: %v", err)
	}

	// 命令行参数覆盖配置
	if port != "" {
		cfg.Server.Port = strings.TrimPrefix(port, ":")
		logrus.Infof("命令行指定端口: %s", cfg.Server.Port)
	}
	if demoMode {
		cfg.Demo.Enabled = true
	}

	logger.Init(cfg.Log)
	config.PrintConfig()

	// 初始化 JWT
	middleware.InitJWT(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, closeStore, err := buildServices(ctx, cfg)
	if err != nil {
		logrus.Fatalf("存储初始化失败: %v", err)
	}
	defer closeStore()

	r := router.SetupRouter(cfg, svc)
	srv := &http.Server{
		Addr:              listenAddr(cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logrus.Info("==========================================")
	logrus.Info("  🚀 Hisaab Kitaab API 已启动")
	logrus.Info("==========================================")
	logrus.Infof("  模式:     %s", svc.Auth.Mode())
	logrus.Infof("  API接口:  http://localhost%s/api/", srv.Addr)
	logrus.Infof("  健康检查: http://localhost%s/api/health", srv.Addr)
	logrus.Infof("  Swagger:  http://localhost%s/swagger/index.html", srv.Addr)
	logrus.Info("==========================================")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("服务器启动失败: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("正在关闭服务器...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("服务器关闭失败: %v", err)
	}
}

// buildServices 选择存储与认证模式：显式演示模式，或存储不可用且允许回退时进入演示模式
func buildServices(ctx context.Context, cfg *config.Config) (*router.Services, func(), error) {
	if cfg.Demo.Enabled {
		logrus.Warn("演示模式：数据仅保存在内存中，重启后丢失")
		return demoServices(cfg), func() {}, nil
	}

	st, closeStore, err := database.OpenStore(ctx, cfg)
	if err != nil {
		if !cfg.Demo.Fallback {
			return nil, nil, err
		}
		logrus.Warnf("存储不可用，回退到演示模式: %v", err)
		return demoServices(cfg), func() {}, nil
	}

	var mailer service.WelcomeMailer
	if emailService := service.NewEmailService(&cfg.Email); emailService.Enabled() {
		mailer = emailService
	}
	auth := service.NewAuthService(st.Users, cfg.JWT, mailer)
	return router.NewServices(st, auth), closeStore, nil
}

func demoServices(cfg *config.Config) *router.Services {
	mem := store.NewMemoryStore()
	auth := service.NewDemoAuthService(service.NewDemoRegistry(), mem.Transactions, mem.Categories, cfg.JWT)
	return router.NewServices(mem, auth)
}

func listenAddr(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
