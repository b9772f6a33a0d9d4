package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"profiles/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserHandler 用户资料处理器
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler 创建用户资料处理器
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// UserUpsertRequest 创建/更新用户资料请求
// 指针字段用于区分“未提供”与“显式提供”：未提供的字段在更新时保留库中原值
type UserUpsertRequest struct {
	UserID        *uint   `json:"user_id" binding:"required" example:"1"`
	DisplayName   *string `json:"display_name" example:"Ada"`
	Name          *string `json:"name" example:"Ada Lovelace"`
	Bio           *string `json:"bio" example:"mathematician"`
	Location      *string `json:"location" example:"London"`
	ProfilePicURL *string `json:"profile_pic_url"`
}

// CreateOrUpdateUser 创建或更新用户资料
// @Summary 创建或更新用户资料
// @Description 按 user_id upsert 用户资料。请求中未出现的字段保留原值；创建返回 201，更新返回 200。
// @Tags 用户资料
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body UserUpsertRequest true "用户资料"
// @Success 200 {object} map[string]interface{} "更新成功"
// @Success 201 {object} map[string]interface{} "创建成功"
// @Failure 400 {object} Response "缺少 user_id"
// @Failure 401 {object} Response "未授权"
// @Failure 500 {object} Response "服务器错误"
// @Router /api/users [post]
func (h *UserHandler) CreateOrUpdateUser(c *gin.Context) {
	var req UserUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "缺少 user_id"))
		return
	}
	userID := *req.UserID

	// 先读一次只为判定 created/updated；记录唯一性本身由主键约束 + 原子 upsert 保证
	var existing models.User
	err := h.db.First(&existing, userID).Error
	isUpdate := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		InternalError(c, SafeErrorMessage(err, "查询用户失败"))
		return
	}

	user := models.User{UserID: userID}
	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
		updates["display_name"] = *req.DisplayName
	}
	if req.Name != nil {
		user.Name = *req.Name
		updates["name"] = *req.Name
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
		updates["bio"] = *req.Bio
	}
	if req.Location != nil {
		user.Location = *req.Location
		updates["location"] = *req.Location
	}
	if req.ProfilePicURL != nil {
		user.ProfilePicURL = *req.ProfilePicURL
		updates["profile_pic_url"] = *req.ProfilePicURL
	}

	// 原子 upsert：INSERT ... ON DUPLICATE KEY UPDATE
	// 赋值表只含请求里出现的字段（合并规则），created_at 永不更新
	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(&user).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "保存用户资料失败"))
		return
	}

	if isUpdate {
		c.JSON(http.StatusOK, gin.H{
			"message": "用户资料更新成功",
			"user_id": userID,
			"action":  "updated",
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "用户资料创建成功",
		"user_id": userID,
		"action":  "created",
	})
}

// GetUser 按 user_id 获取用户资料
// @Summary 获取用户资料
// @Description 按 user_id 返回完整用户资料，created_at 为 ISO-8601 格式
// @Tags 用户资料
// @Produce json
// @Security ApiKeyAuth
// @Param user_id path int true "用户ID"
// @Success 200 {object} map[string]interface{} "用户资料"
// @Failure 400 {object} Response "无效的 user_id"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "用户不存在"
// @Router /api/users/{user_id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的 user_id")
		return
	}

	var user models.User
	if err := h.db.First(&user, uint(id64)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "用户不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询用户失败"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":         user.UserID,
		"display_name":    user.DisplayName,
		"name":            user.Name,
		"bio":             user.Bio,
		"location":        user.Location,
		"profile_pic_url": user.ProfilePicURL,
		"created_at":      user.CreatedAt.Format(time.RFC3339),
	})
}
