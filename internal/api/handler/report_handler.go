package handler

import (
	"github.com/gin-gonic/gin"

	"sps-logbook/internal/dto"
	"sps-logbook/internal/service"
	"sps-logbook/pkg/response"
)

// ReportHandler 分析报表 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Summary 报表查询
// GET /api/v1/reports/summary?range=last_7_days&zone=All&station=All
func (h *ReportHandler) Summary(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.reportSvc.Summary(c.Request.Context(), sess, &q)
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

// Compare 两日对比
// POST /api/v1/reports/compare
func (h *ReportHandler) Compare(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.reportSvc.Compare(c.Request.Context(), sess, &req)
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

// Critical 无备用泵的泵站
// GET /api/v1/reports/critical
func (h *ReportHandler) Critical(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.reportSvc.Critical(c.Request.Context(), sess, &q)
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

// Export 导出报表
// GET /api/v1/reports/export?format=xlsx&table=filtered&range=today
func (h *ReportHandler) Export(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var q dto.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	file, err := h.reportSvc.Export(c.Request.Context(), sess, &q)
	if err != nil {
		handleReportError(c, err)
		return
	}

	writeExport(c, file)
}

// ExportComparison 导出两日对比
// POST /api/v1/reports/compare/export
func (h *ReportHandler) ExportComparison(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	file, err := h.reportSvc.ExportComparison(c.Request.Context(), sess, &req)
	if err != nil {
		handleReportError(c, err)
		return
	}

	writeExport(c, file)
}
