package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	defer func() { GlobalConfig = nil }()

	// 嵌入默认配置生效
	assert.Equal(t, ":5000", cfg.Server.Port)
	assert.Equal(t, "utf8mb4", cfg.Database.Charset)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)

	// 超时兜底
	assert.Equal(t, 15, cfg.Query.TimeoutSeconds)
	assert.Equal(t, 120, cfg.OpenAI.TimeoutSeconds)
}

func TestLoadConfigQueryKeyFallback(t *testing.T) {
	t.Setenv("PROFILES_AUTH_API_KEY", "shared-secret")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	defer func() { GlobalConfig = nil }()

	// query.api_key 留空时沿用 auth.api_key
	assert.Equal(t, "shared-secret", cfg.Auth.APIKey)
	assert.Equal(t, "shared-secret", cfg.Query.APIKey)
}

func TestSafeErrorMessage(t *testing.T) {
	fallback := "操作失败"
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
