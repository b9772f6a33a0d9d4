package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"profiles/config"
)

// ErrContentNotFound 上游内容服务未找到对应内容（非 200 响应）
var ErrContentNotFound = errors.New("内容不存在")

// ContentInfo 上游内容服务返回的内容元数据
type ContentInfo struct {
	Title        string `json:"title"`
	Author       string `json:"author"`
	Topic        string `json:"topic"`
	Genre        string `json:"genre"`
	CustomPrompt string `json:"custom_prompt"`
}

// ContentClient 上游内容服务客户端
type ContentClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewContentClient 创建内容服务客户端
func NewContentClient(cfg *config.QueryConfig) *ContentClient {
	return &ContentClient{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

// GetContent 按 content_id 拉取内容元数据
// correlationID 非空时透传 X-Correlation-ID，便于跨服务追踪
func (c *ContentClient) GetContent(contentID uint, correlationID string) (*ContentInfo, error) {
	req, err := http.NewRequest("GET", fmt.Sprintf("%s/api/content/%d", c.baseURL, contentID), nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	if correlationID != "" {
		req.Header.Set("X-Correlation-ID", correlationID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求内容服务失败: %w", err)
	}
	defer resp.Body.Close()

	// 任何非 200 一律视为内容不存在
	if resp.StatusCode != http.StatusOK {
		return nil, ErrContentNotFound
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	var content ContentInfo
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	return &content, nil
}
