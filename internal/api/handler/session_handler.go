package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"sps-logbook/internal/dto"
	"sps-logbook/internal/service"
	"sps-logbook/pkg/response"
)

// SessionHandler 会话页面路由 HTTP 处理器
type SessionHandler struct {
	sessionSvc service.SessionService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(sessionSvc service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// Get 当前会话
// GET /api/v1/session
func (h *SessionHandler) Get(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	result, err := h.sessionSvc.Get(c.Request.Context(), sess)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// SwitchPage 切换页面
// PUT /api/v1/session/page
func (h *SessionHandler) SwitchPage(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.SwitchPageRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
	}

	result, err := h.sessionSvc.SwitchPage(c.Request.Context(), sess, req.Page)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPage):
			response.BadRequest(c, 11010, "无效的页面")
		case errors.Is(err, service.ErrPageForbidden):
			response.Forbidden(c, 11011, "当前访问类别无权进入该页面")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}
