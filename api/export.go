package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"profiles/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler 数据导出处理器
type ExportHandler struct {
	db *gorm.DB
}

// NewExportHandler 创建数据导出处理器
func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{db: db}
}

var userCSVHeader = []string{"用户ID", "显示名", "姓名", "简介", "位置", "头像URL", "创建时间", "更新时间"}
var aiCSVHeader = []string{"AI ID", "内容ID", "显示名", "姓名", "简介", "位置", "系统指令", "头像URL", "创建时间", "更新时间"}

func userCSVRow(u models.User) []string {
	return []string{
		strconv.FormatUint(uint64(u.UserID), 10),
		u.DisplayName,
		u.Name,
		u.Bio,
		u.Location,
		u.ProfilePicURL,
		u.CreatedAt.Format("2006-01-02 15:04:05"),
		u.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func aiCSVRow(a models.AIProfile) []string {
	return []string{
		strconv.FormatUint(uint64(a.ID), 10),
		strconv.FormatUint(uint64(a.ContentID), 10),
		a.DisplayName,
		a.Name,
		a.Bio,
		a.Location,
		a.SystemsInstructions,
		a.ProfilePicURL,
		a.CreatedAt.Format("2006-01-02 15:04:05"),
		a.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ExportCSV 导出资料为CSV
// @Summary 导出CSV
// @Description 导出用户或AI资料表为CSV文件，table 取 users 或 ais，默认 users
// @Tags 数据导出
// @Produce text/csv
// @Security ApiKeyAuth
// @Param table query string false "表名(users|ais)" default(users)
// @Success 200 {file} file "CSV文件"
// @Failure 400 {object} Response "无效的表名"
// @Failure 401 {object} Response "未授权"
// @Failure 500 {object} Response "导出失败"
// @Router /api/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	table := c.DefaultQuery("table", "users")

	var header []string
	var rows [][]string
	switch table {
	case "users":
		var users []models.User
		if err := h.db.Find(&users).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "查询用户数据失败"))
			return
		}
		header = userCSVHeader
		for _, u := range users {
			rows = append(rows, userCSVRow(u))
		}
	case "ais":
		var ais []models.AIProfile
		if err := h.db.Find(&ais).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "查询AI数据失败"))
			return
		}
		header = aiCSVHeader
		for _, a := range ais {
			rows = append(rows, aiCSVRow(a))
		}
	default:
		BadRequest(c, "无效的表名，仅支持 users 或 ais")
		return
	}

	// 先写入缓冲区，出错时还能返回 500 而不是半截文件
	buf := new(bytes.Buffer)
	// BOM 让 Excel 正确识别 UTF-8
	buf.WriteString("\xEF\xBB\xBF")

	w := csv.NewWriter(buf)
	if err := w.Write(header); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("%s_%s.csv", table, time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出资料为Excel
// @Summary 导出Excel
// @Description 导出用户与AI资料为Excel文件，包含“用户”和“AI资料”两个工作表
// @Tags 数据导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Success 200 {file} file "Excel文件"
// @Failure 401 {object} Response "未授权"
// @Failure 500 {object} Response "导出失败"
// @Router /api/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	var users []models.User
	if err := h.db.Find(&users).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询用户数据失败"))
		return
	}
	var ais []models.AIProfile
	if err := h.db.Find(&ais).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询AI数据失败"))
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	userSheet := "用户"
	f.SetSheetName("Sheet1", userSheet)
	for i, title := range userCSVHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(userSheet, cell, title)
	}
	f.SetCellStyle(userSheet, "A1", "H1", headerStyle)
	for r, u := range users {
		row := userCSVRow(u)
		for i, v := range row {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			f.SetCellValue(userSheet, cell, v)
		}
	}
	f.SetColWidth(userSheet, "A", "H", 20)

	aiSheet := "AI资料"
	f.NewSheet(aiSheet)
	for i, title := range aiCSVHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(aiSheet, cell, title)
	}
	f.SetCellStyle(aiSheet, "A1", "J1", headerStyle)
	for r, a := range ais {
		row := aiCSVRow(a)
		for i, v := range row {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			f.SetCellValue(aiSheet, cell, v)
		}
	}
	f.SetColWidth(aiSheet, "A", "J", 20)

	filename := fmt.Sprintf("profiles_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, SafeErrorMessage(err, "写入Excel文件失败"))
		return
	}
}
