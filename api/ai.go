package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"profiles/middleware"
	"profiles/models"
	"profiles/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AIHandler AI资料处理器
type AIHandler struct {
	db        *gorm.DB
	content   *service.ContentClient
	generator *service.ProfileGenerator
}

// NewAIHandler 创建AI资料处理器
func NewAIHandler(db *gorm.DB, content *service.ContentClient, generator *service.ProfileGenerator) *AIHandler {
	return &AIHandler{db: db, content: content, generator: generator}
}

// AIUpsertRequest 创建/更新AI资料请求
type AIUpsertRequest struct {
	ContentID     *uint   `json:"content_id" binding:"required" example:"42"`
	ProfilePicURL *string `json:"profile_pic_url"`
}

// CreateOrUpdateAI 创建或更新AI资料
// @Summary 创建或更新AI资料
// @Description 按 content_id 查询内容信息，调用大模型生成AI人设资料并 upsert。创建返回 201，更新返回 200。
// @Tags AI资料
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body AIUpsertRequest true "内容ID"
// @Success 200 {object} map[string]interface{} "更新成功"
// @Success 201 {object} map[string]interface{} "创建成功"
// @Failure 400 {object} Response "缺少 content_id"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "内容不存在"
// @Failure 500 {object} Response "生成或保存失败"
// @Router /api/ais [post]
func (h *AIHandler) CreateOrUpdateAI(c *gin.Context) {
	var req AIUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "缺少 content_id"))
		return
	}
	contentID := *req.ContentID
	correlationID := middleware.GetCorrelationID(c)

	// 先读一次只为判定 created/updated，唯一性由 content_id 唯一索引保证
	var existing models.AIProfile
	err := h.db.Where("content_id = ?", contentID).First(&existing).Error
	isUpdate := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		InternalError(c, SafeErrorMessage(err, "查询AI资料失败"))
		return
	}

	info, err := h.content.GetContent(contentID, correlationID)
	if err != nil {
		if errors.Is(err, service.ErrContentNotFound) {
			NotFound(c, "内容不存在")
			return
		}
		log.Printf("查询内容信息失败 content_id=%d: %v", contentID, err)
		InternalError(c, SafeErrorMessage(err, "查询内容信息失败"))
		return
	}

	profile, err := h.generator.Generate(info, correlationID)
	if err != nil {
		log.Printf("生成AI资料失败 content_id=%d: %v", contentID, err)
		InternalError(c, SafeErrorMessage(err, "生成AI资料失败"))
		return
	}

	ai := models.AIProfile{
		ContentID:           contentID,
		DisplayName:         profile.DisplayName,
		Name:                profile.Name,
		Bio:                 profile.Bio,
		Location:            profile.Location,
		SystemsInstructions: profile.SystemsInstructions,
	}
	updates := map[string]interface{}{
		"display_name":         profile.DisplayName,
		"name":                 profile.Name,
		"bio":                  profile.Bio,
		"location":             profile.Location,
		"systems_instructions": profile.SystemsInstructions,
		"updated_at":           time.Now(),
	}
	// 头像只来自请求，不由模型生成
	if req.ProfilePicURL != nil {
		ai.ProfilePicURL = *req.ProfilePicURL
		updates["profile_pic_url"] = *req.ProfilePicURL
	}

	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(&ai).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "保存AI资料失败"))
		return
	}

	// upsert 走更新分支时 ai.ID 不会回填，重新读取拿主键
	aiID := ai.ID
	if isUpdate {
		var saved models.AIProfile
		if err := h.db.Where("content_id = ?", contentID).First(&saved).Error; err == nil {
			aiID = saved.ID
		}
	}

	if isUpdate {
		c.JSON(http.StatusOK, gin.H{
			"message":    "AI资料更新成功",
			"ai_id":      aiID,
			"content_id": contentID,
			"action":     "updated",
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "AI资料创建成功",
		"ai_id":      aiID,
		"content_id": contentID,
		"action":     "created",
	})
}

// GetAIByContent 按 content_id 获取AI资料
// @Summary 获取AI资料
// @Description 按 content_id 返回完整AI资料，created_at 为 ISO-8601 格式
// @Tags AI资料
// @Produce json
// @Security ApiKeyAuth
// @Param content_id path int true "内容ID"
// @Success 200 {object} map[string]interface{} "AI资料"
// @Failure 400 {object} Response "无效的 content_id"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "AI资料不存在"
// @Router /api/ais/content/{content_id} [get]
func (h *AIHandler) GetAIByContent(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("content_id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的 content_id")
		return
	}

	var ai models.AIProfile
	if err := h.db.Where("content_id = ?", uint(id64)).First(&ai).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "AI资料不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询AI资料失败"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ai_id":                ai.ID,
		"content_id":           ai.ContentID,
		"display_name":         ai.DisplayName,
		"name":                 ai.Name,
		"bio":                  ai.Bio,
		"location":             ai.Location,
		"systems_instructions": ai.SystemsInstructions,
		"profile_pic_url":      ai.ProfilePicURL,
		"created_at":           ai.CreatedAt.Format(time.RFC3339),
	})
}
