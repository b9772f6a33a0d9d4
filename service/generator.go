package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"profiles/config"
)

// generatorSystemPrompt 生成资料时的固定 system 角色
const generatorSystemPrompt = "You are a profile creation specialist."

// profilePromptTemplate 资料生成提示词模板
// 占位顺序: title, author, topic, genre, custom_prompt
const profilePromptTemplate = `
Based on the following content information, create a detailed social media profile for an AI agent that embodies the author's persona in the context of their work.

Content Details:
Title: %s
Author: %s
Topic: %s
Genre: %s

Take into account the following custom prompt:
Custom Prompt: %s

Make all of the below clever, witty, and engaging.

First think about the following:
Who is the author?
What are they writing about?
Describe their tone and writing style.
What is their persona? their character? their values? their worldview?

Then create a profile that includes:
1. A witty display name that reflects the author's persona
2. A full name (if known)
3. A social media bio written in the style of the author (be witty and original)
4. A location related to the author or their work (make it something unique/funny)
5. Detailed system instructions for how this AI should communicate. Describe the tone, style, and personality of the author. Take on the persona of the author and describe to the AI how it should act. E.g. "You are Julius Caesar in his writing of De Bello Gallico, your verbiage is precise and to the point, and you are detailed in your descriptions of military strategy. etc etc"

Please respond in JSON format with the following structure:
{
    "display_name": "Creative display name",
    "name": "Full name",
    "bio": "Detailed biography",
    "location": "Relevant location",
    "systems_instructions": "Detailed instructions for AI communication style"
}
`

// GeneratedProfile 生成式模型产出的资料，五个字段缺一不可
type GeneratedProfile struct {
	DisplayName         string `json:"display_name"`
	Name                string `json:"name"`
	Bio                 string `json:"bio"`
	Location            string `json:"location"`
	SystemsInstructions string `json:"systems_instructions"`
}

// ProfileGenerator AI资料生成器（OpenAI 兼容 chat/completions，单次调用、不重试）
type ProfileGenerator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewProfileGenerator 创建资料生成器
func NewProfileGenerator(cfg *config.OpenAIConfig) *ProfileGenerator {
	return &ProfileGenerator{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

// Generate 根据内容元数据生成AI资料
// 任何一步失败都返回错误，调用方必须放弃本次 upsert，不写入半成品记录
func (g *ProfileGenerator) Generate(content *ContentInfo, correlationID string) (*GeneratedProfile, error) {
	prompt := buildProfilePrompt(content)

	requestBody := map[string]interface{}{
		"model": g.model,
		"messages": []map[string]string{
			{"role": "system", "content": generatorSystemPrompt},
			{"role": "user", "content": prompt},
		},
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}

	req, err := http.NewRequest("POST", g.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	if correlationID != "" {
		req.Header.Set("X-Correlation-ID", correlationID)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求AI服务失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("AI服务返回错误: %d %s", resp.StatusCode, string(body))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("解析AI响应失败: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("AI服务未返回结果")
	}

	return parseProfileJSON(completion.Choices[0].Message.Content)
}

// buildProfilePrompt 构建提示词，缺失字段用占位符替代
func buildProfilePrompt(content *ContentInfo) string {
	return fmt.Sprintf(profilePromptTemplate,
		fieldOr(content.Title, "Unknown"),
		fieldOr(content.Author, "Unknown"),
		fieldOr(content.Topic, "Unknown"),
		fieldOr(content.Genre, "Unknown"),
		fieldOr(content.CustomPrompt, "None"),
	)
}

func fieldOr(v, placeholder string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}

// parseProfileJSON 去掉 markdown 代码围栏后严格解析生成结果
// 五个字段必须恰好齐全且均为字符串，多出、缺失或类型不符都算生成失败
func parseProfileJSON(raw string) (*GeneratedProfile, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var fields struct {
		DisplayName         *string `json:"display_name"`
		Name                *string `json:"name"`
		Bio                 *string `json:"bio"`
		Location            *string `json:"location"`
		SystemsInstructions *string `json:"systems_instructions"`
	}
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("解析生成结果失败: %w", err)
	}
	if fields.DisplayName == nil || fields.Name == nil || fields.Bio == nil ||
		fields.Location == nil || fields.SystemsInstructions == nil {
		return nil, errors.New("生成结果缺少必需字段")
	}

	return &GeneratedProfile{
		DisplayName:         *fields.DisplayName,
		Name:                *fields.Name,
		Bio:                 *fields.Bio,
		Location:            *fields.Location,
		SystemsInstructions: *fields.SystemsInstructions,
	}, nil
}
