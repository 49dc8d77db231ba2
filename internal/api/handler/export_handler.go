package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"sps-logbook/internal/dto"
	"sps-logbook/internal/service"
	"sps-logbook/pkg/response"
)

// writeExport 设置下载响应头并写出文件
func writeExport(c *gin.Context, file *dto.ExportFile) {
	encodedFilename := url.QueryEscape(file.Filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, file.ContentType, file.Buffer.Bytes())
}

// handleReportError 报表与导出错误映射
func handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRange):
		response.BadRequest(c, 13001, err.Error())
	case errors.Is(err, service.ErrInvalidReportDate):
		response.BadRequest(c, 13002, "日期格式应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidReportZone):
		response.BadRequest(c, 13003, "无效的区域筛选")
	case errors.Is(err, service.ErrInvalidExportTable):
		response.BadRequest(c, 13004, "导出表格应为 filtered、all 或 critical")
	case errors.Is(err, service.ErrExportFormat):
		response.BadRequest(c, 13005, "导出格式应为 csv、xlsx 或 pdf")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
