package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// DefaultConfigYAML 内置默认配置
//
//go:embed default.yaml
var DefaultConfigYAML []byte

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	MongoDB   MongoDBConfig   `mapstructure:"mongodb"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Demo      DemoConfig      `mapstructure:"demo"`
	Email     EmailConfig     `mapstructure:"email"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port      string `mapstructure:"port"`
	Mode      string `mapstructure:"mode"`
	ClientURL string `mapstructure:"client_url"`
}

// StorageConfig 存储后端选择
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

// DatabaseConfig 关系型数据库配置（mysql / postgres）
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	Charset      string `mapstructure:"charset"`
	SSLMode      string `mapstructure:"sslmode"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// MongoDBConfig MongoDB 配置
type MongoDBConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	TimeoutSeconds int           `mapstructure:"timeout_seconds"`
	Timeout        time.Duration `mapstructure:"-"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret          string        `mapstructure:"secret"`
	ExpireHours     int           `mapstructure:"expire_hours"`
	DemoExpireHours int           `mapstructure:"demo_expire_hours"`
	ExpireTime      time.Duration `mapstructure:"-"`
	DemoExpireTime  time.Duration `mapstructure:"-"`
}

// DemoConfig 演示模式配置
type DemoConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Fallback bool `mapstructure:"fallback"`
}

// EmailConfig 邮件配置
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// RateLimitConfig 登录/注册限流配置
type RateLimitConfig struct {
	AuthAttempts  int           `mapstructure:"auth_attempts"`
	WindowSeconds int           `mapstructure:"window_seconds"`
	Window        time.Duration `mapstructure:"-"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
)

// legacyEnv 兼容旧部署使用的环境变量名
var legacyEnv = map[string]string{
	"server.port":       "PORT",
	"server.client_url": "CLIENT_URL",
	"jwt.secret":        "JWT_SECRET",
	"mongodb.uri":       "MONGODB_URI",
}

// LoadConfig 加载配置
// 优先级: 环境变量 > 外部配置文件 > 嵌入的默认配置
// configPath: 可选的外部配置文件路径
func LoadConfig(configPath string) (*Config, error) {
	// .env 文件可选，不存在时忽略
	if err := godotenv.Load(); err == nil {
		logrus.Info("已加载 .env 文件")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 首先加载嵌入的默认配置
	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("读取内置配置失败: %w", err)
	}

	// 2. 尝试加载外部配置文件（可选，用于覆盖默认配置）
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			logrus.Warnf("无法读取指定配置文件 %s: %v", configPath, err)
		} else {
			logrus.Infof("已合并外部配置文件: %s", configPath)
		}
	} else {
		externalViper := viper.New()
		externalViper.SetConfigName("config")
		externalViper.SetConfigType("yaml")
		externalViper.AddConfigPath(".")
		externalViper.AddConfigPath("./config")
		externalViper.AddConfigPath("/etc/hisaab")
		externalViper.AddConfigPath("$HOME/.hisaab")

		if err := externalViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(externalViper.AllSettings()); err != nil {
				logrus.Warnf("合并外部配置失败: %v", err)
			} else {
				logrus.Infof("已合并外部配置文件: %s", externalViper.ConfigFileUsed())
			}
		}
	}

	// 3. 环境变量覆盖
	v.SetEnvPrefix("HISAAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		envKey := "HISAAB_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, legacy); err != nil {
			return nil, fmt.Errorf("绑定环境变量 %s 失败: %w", legacy, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.normalize()

	GlobalConfig = &cfg
	return &cfg, nil
}

// normalize 补全默认值并换算时长
func (c *Config) normalize() {
	// NODE_ENV 仅在未显式设置 HISAAB_SERVER_MODE 时生效
	if env := os.Getenv("NODE_ENV"); env != "" && os.Getenv("HISAAB_SERVER_MODE") == "" {
		c.Server.Mode = modeFromNodeEnv(env)
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "mongodb"
	}
	if c.JWT.ExpireHours <= 0 {
		c.JWT.ExpireHours = 720
	}
	if c.JWT.DemoExpireHours <= 0 {
		c.JWT.DemoExpireHours = 8760
	}
	c.JWT.ExpireTime = time.Duration(c.JWT.ExpireHours) * time.Hour
	c.JWT.DemoExpireTime = time.Duration(c.JWT.DemoExpireHours) * time.Hour

	if c.MongoDB.TimeoutSeconds <= 0 {
		c.MongoDB.TimeoutSeconds = 10
	}
	c.MongoDB.Timeout = time.Duration(c.MongoDB.TimeoutSeconds) * time.Second

	if c.RateLimit.AuthAttempts <= 0 {
		c.RateLimit.AuthAttempts = 10
	}
	if c.RateLimit.WindowSeconds <= 0 {
		c.RateLimit.WindowSeconds = 900
	}
	c.RateLimit.Window = time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

// modeFromNodeEnv NODE_ENV=production 视为 release
func modeFromNodeEnv(env string) string {
	switch strings.ToLower(env) {
	case "production":
		return "release"
	case "test":
		return "test"
	}
	return "debug"
}

// IsRelease 是否为生产模式
func (c *Config) IsRelease() bool {
	return c.Server.Mode == "release"
}

// SafeErrorMessage 生产环境下不向客户端暴露内部错误详情
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.IsRelease() {
		return fallback
	}
	return err.Error()
}

// PrintConfig 打印当前配置（隐藏敏感信息）
func PrintConfig() {
	if GlobalConfig == nil {
		return
	}
	logrus.Info("当前配置:")
	logrus.Infof("  服务器: %s (模式: %s)", GlobalConfig.Server.Port, GlobalConfig.Server.Mode)
	logrus.Infof("  存储: %s", GlobalConfig.Storage.Driver)
	switch GlobalConfig.Storage.Driver {
	case "mysql", "postgres":
		logrus.Infof("  数据库: %s@%s:%s/%s",
			GlobalConfig.Database.Username,
			GlobalConfig.Database.Host,
			GlobalConfig.Database.Port,
			GlobalConfig.Database.DBName)
	case "mongodb":
		logrus.Infof("  MongoDB: %s", GlobalConfig.MongoDB.Database)
	}
	logrus.Infof("  演示模式: %v (自动回退: %v)", GlobalConfig.Demo.Enabled, GlobalConfig.Demo.Fallback)
	logrus.Infof("  邮件服务: %v", GlobalConfig.Email.Enabled)
}
