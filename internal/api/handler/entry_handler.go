package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sps-logbook/internal/dto"
	"sps-logbook/internal/service"
	pkgerrors "sps-logbook/pkg/errors"
	"sps-logbook/pkg/response"
)

// EntryHandler 日志录入 HTTP 处理器
type EntryHandler struct {
	entrySvc service.EntryService
}

// NewEntryHandler 创建 EntryHandler
func NewEntryHandler(entrySvc service.EntryService) *EntryHandler {
	return &EntryHandler{entrySvc: entrySvc}
}

// Submit 提交日志
// POST /api/v1/entries
// 失败时在 data 中回显提交内容（不含授权码）
func (h *EntryHandler) Submit(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.SubmitEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.entrySvc.Submit(c.Request.Context(), sess, &req)
	if err != nil {
		echo := req
		echo.UnlockCode = ""
		data := &dto.EntryConflictData{Submitted: &echo}
		var ce *service.ConflictError
		if errors.As(err, &ce) {
			data.Key = ce.Key.String()
			data.KeyState = string(ce.State)
		}
		h.handleEntryError(c, err, data)
		return
	}

	if result.Outcome == service.OutcomeCreated {
		response.Created(c, result)
		return
	}
	response.OK(c, result)
}

// Unlock 对被阻塞的记录提交覆盖授权码
// POST /api/v1/entries/unlock
func (h *EntryHandler) Unlock(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.UnlockEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.entrySvc.Unlock(c.Request.Context(), sess, &req)
	if err != nil {
		var data *dto.UnlockEntryResponse
		var ce *service.ConflictError
		if errors.As(err, &ce) {
			data = &dto.UnlockEntryResponse{Key: ce.Key.String(), KeyState: string(ce.State)}
		}
		h.handleEntryError(c, err, data)
		return
	}

	response.OK(c, result)
}

// Get 按 (日期, 泵站) 查询
// GET /api/v1/entries/:date/:station
func (h *EntryHandler) Get(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	result, err := h.entrySvc.Get(c.Request.Context(), sess, c.Param("date"), c.Param("station"))
	if err != nil {
		h.handleEntryError(c, err, nil)
		return
	}

	response.OK(c, result)
}

// Delete 删除日志
// DELETE /api/v1/entries/:date/:station
func (h *EntryHandler) Delete(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	if err := h.entrySvc.Delete(c.Request.Context(), sess, c.Param("date"), c.Param("station")); err != nil {
		h.handleEntryError(c, err, nil)
		return
	}

	response.OK(c, nil)
}

// Recent 最近录入
// GET /api/v1/entries/recent
func (h *EntryHandler) Recent(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	result, err := h.entrySvc.Recent(c.Request.Context(), sess)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Pending 某区域某日未录入的泵站
// GET /api/v1/entries/pending?zone=WZ&date=2024-05-01
func (h *EntryHandler) Pending(c *gin.Context) {
	zone := c.Query("zone")
	if zone == "" {
		response.BadRequest(c, 10001, "zone 不能为空")
		return
	}

	result, err := h.entrySvc.Pending(c.Request.Context(), zone, c.Query("date"))
	if err != nil {
		h.handleEntryError(c, err, nil)
		return
	}

	response.OK(c, result)
}

// Catalog 区域泵站目录
// GET /api/v1/catalog
func (h *EntryHandler) Catalog(c *gin.Context) {
	response.OK(c, h.entrySvc.Catalog())
}

func (h *EntryHandler) handleEntryError(c *gin.Context, err error, data interface{}) {
	switch {
	case service.IsEntryValidation(err):
		response.ErrorWithData(c, http.StatusBadRequest, 12001, err.Error(), data)
	case errors.Is(err, pkgerrors.ErrKeyConflict):
		response.ErrorWithData(c, http.StatusConflict, 12002, "该泵站在所选日期已有记录，覆盖需要授权码", data)
	case errors.Is(err, service.ErrUnlockDenied):
		response.ErrorWithData(c, http.StatusForbidden, 12003, "授权码错误", data)
	case errors.Is(err, service.ErrNotBlocked):
		response.Conflict(c, 12004, "该记录当前无需授权")
	case errors.Is(err, service.ErrEntryNotFound):
		response.NotFound(c, 12005, "日志记录不存在")
	case errors.Is(err, service.ErrNotOwner):
		response.Forbidden(c, 12006, "只能删除本人提交的记录")
	default:
		response.InternalError(c)
	}
}
