package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeErrorMessage(t *testing.T) {
	fallback := "Server error"
	testErr := errors.New("internal database error")

	// nil err 返回 fallback
	assert.Equal(t, fallback, SafeErrorMessage(nil, fallback))

	// release 模式返回 fallback，不暴露错误详情
	GlobalConfig = &Config{Server: ServerConfig{Mode: "release"}}
	defer func() { GlobalConfig = nil }()
	assert.Equal(t, fallback, SafeErrorMessage(testErr, fallback))

	// debug 模式返回 err.Error()
	GlobalConfig = &Config{Server: ServerConfig{Mode: "debug"}}
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))

	// GlobalConfig 为 nil 时返回 err.Error()（视为开发环境）
	GlobalConfig = nil
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer func() { GlobalConfig = nil }()
	t.Setenv("NODE_ENV", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "mongodb", cfg.Storage.Driver)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 365*24*time.Hour, cfg.JWT.DemoExpireTime)
	assert.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.True(t, cfg.Demo.Fallback)
	assert.Same(t, cfg, GlobalConfig)
}

func TestLoadConfig_ExternalFileAndEnv(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "storage:\n  driver: postgres\njwt:\n  expire_hours: 48\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("HISAAB_SERVER_PORT", "")
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_SECRET", "legacy-secret")
	t.Setenv("HISAAB_DEMO_ENABLED", "true")
	t.Setenv("NODE_ENV", "production")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, 48*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "legacy-secret", cfg.JWT.Secret)
	assert.True(t, cfg.Demo.Enabled)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.True(t, cfg.IsRelease())
}

func TestModeFromNodeEnv(t *testing.T) {
	assert.Equal(t, "release", modeFromNodeEnv("production"))
	assert.Equal(t, "test", modeFromNodeEnv("test"))
	assert.Equal(t, "debug", modeFromNodeEnv("development"))
	assert.Equal(t, "debug", modeFromNodeEnv(""))
}

func TestConfigLogsUseLogrus(t *testing.T) {
	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	defer logrus.SetOutput(os.Stderr)
	defer func() { GlobalConfig = nil }()
	t.Setenv("NODE_ENV", "")

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	_, err := LoadConfig(missing)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "level=warning")
	assert.Contains(t, buf.String(), missing)

	buf.Reset()
	GlobalConfig.Storage.Driver = "mysql"
	GlobalConfig.Database = DatabaseConfig{Host: "db", Port: "3306", Username: "root", Password: "hunter2", DBName: "hisaab"}
	PrintConfig()
	assert.Contains(t, buf.String(), "root@db:3306/hisaab")
	assert.NotContains(t, buf.String(), "hunter2")
}
