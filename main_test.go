package main

import (
	"context"
	"testing"

	"hisaab/config"
	"hisaab/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildServices(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{Demo: config.DemoConfig{Enabled: true}}
	svc, closeFn, err := buildServices(ctx, cfg)
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, service.ModeDemo, svc.Auth.Mode())

	cfg = &config.Config{Storage: config.StorageConfig{Driver: "memory"}}
	svc, closeFn, err = buildServices(ctx, cfg)
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, service.ModePersistent, svc.Auth.Mode())

	// 存储不可用且不允许回退
	cfg = &config.Config{Storage: config.StorageConfig{Driver: "sqlite"}}
	_, _, err = buildServices(ctx, cfg)
	assert.Error(t, err)

	cfg.Demo.Fallback = true
	svc, closeFn, err = buildServices(ctx, cfg)
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, service.ModeDemo, svc.Auth.Mode())
}

func TestListenAddr(t *testing.T) {
	assert.Equal(t, ":5000", listenAddr("5000"))
	assert.Equal(t, ":8080", listenAddr(":8080"))
}
