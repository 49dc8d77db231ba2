package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"sps-logbook/internal/service"
	"sps-logbook/pkg/response"
)

// UserHandler 用户目录 HTTP 处理器（仅管理员）
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers 用户列表
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, users)
}

// ExportUsers 导出用户列表
// GET /api/v1/users/export?format=csv
func (h *UserHandler) ExportUsers(c *gin.Context) {
	file, err := h.userSvc.Export(c.Request.Context(), c.DefaultQuery("format", "xlsx"))
	if err != nil {
		if errors.Is(err, service.ErrExportFormat) {
			response.BadRequest(c, 14001, "导出格式应为 csv、xlsx 或 pdf")
			return
		}
		response.InternalError(c)
		return
	}

	writeExport(c, file)
}
