package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"siwes-logbook/internal/dto"
	"siwes-logbook/internal/service"
	"siwes-logbook/pkg/response"
)

// ═══════════════════════════════════════════════════════════
// StudentHandler — 学生日志
// ═══════════════════════════════════════════════════════════

// StudentHandler 学生端 HTTP 处理器
type StudentHandler struct {
	subSvc    service.SubmissionService
	exportSvc service.ExportService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(subSvc service.SubmissionService, exportSvc service.ExportService) *StudentHandler {
	return &StudentHandler{subSvc: subSvc, exportSvc: exportSvc}
}

// Dashboard 学生首页；带 export 参数时返回导出文件
// GET /api/v1/student/submissions?start_date=&end_date=&status=&export=
func (h *StudentHandler) Dashboard(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var q dto.SubmissionQuery
	_ = c.ShouldBindQuery(&q) // 字段均为字符串，无法解析的值由查询管线忽略

	if service.IsExportFormat(q.Export) {
		file, err := h.exportSvc.ExportStudent(c.Request.Context(), userID, &q)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		writeExport(c, file)
		return
	}

	result, err := h.subSvc.StudentDashboard(c.Request.Context(), userID, &q)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Create 提交日志
// POST /api/v1/student/submissions (multipart/form-data)
func (h *StudentHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateSubmissionRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	file, err := formFile(c)
	if err != nil {
		bindError(c, err)
		return
	}

	result, err := h.subSvc.Create(c.Request.Context(), userID, &req, file)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, "Submission successful!", result)
}

// Update 编辑日志（仅本人且未审批）
// PUT /api/v1/student/submissions/:id
func (h *StudentHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateSubmissionRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	file, err := formFile(c)
	if err != nil {
		bindError(c, err)
		return
	}

	result, err := h.subSvc.Update(c.Request.Context(), userID, c.Param("id"), &req, file)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKMessage(c, "Submission updated successfully!", result)
}

// Delete 删除日志（仅本人且未审批）
// DELETE /api/v1/student/submissions/:id
func (h *StudentHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.subSvc.Delete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKMessage(c, "Submission deleted successfully!", result)
}

// formFile 读取可选附件 file，未上传返回 nil
func formFile(c *gin.Context) (*multipart.FileHeader, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	return fh, nil
}

// ═══════════════════════════════════════════════════════════
// SupervisorHandler — 导师审阅
// ═══════════════════════════════════════════════════════════

// SupervisorHandler 导师端 HTTP 处理器
// 任意导师均可审批、备注任意日志，不校验与学生的关联
type SupervisorHandler struct {
	subSvc    service.SubmissionService
	exportSvc service.ExportService
}

// NewSupervisorHandler 创建 SupervisorHandler
func NewSupervisorHandler(subSvc service.SubmissionService, exportSvc service.ExportService) *SupervisorHandler {
	return &SupervisorHandler{subSvc: subSvc, exportSvc: exportSvc}
}

// Dashboard 导师首页；带 export 参数时返回导出文件
// GET /api/v1/supervisor/submissions?student=&start_date=&end_date=&filter_date=&status=&export=
func (h *SupervisorHandler) Dashboard(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var q dto.SubmissionQuery
	_ = c.ShouldBindQuery(&q)

	if service.IsExportFormat(q.Export) {
		file, err := h.exportSvc.ExportSupervisor(c.Request.Context(), userID, &q)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		writeExport(c, file)
		return
	}

	result, err := h.subSvc.SupervisorDashboard(c.Request.Context(), userID, &q)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Approve 审批日志
// POST /api/v1/supervisor/submissions/:id/approve
func (h *SupervisorHandler) Approve(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.ApproveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	result, err := h.subSvc.Approve(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKMessage(c, noticeMessage(result, fmt.Sprintf("Submission %s approved!", c.Param("id"))), result)
}

// noticeMessage 取本次操作产生的首条提示
func noticeMessage(r *dto.MutationResponse, fallback string) string {
	if r == nil || len(r.Notices) == 0 {
		return fallback
	}
	return r.Notices[0].Message
}

// UpdateRemark 行内备注更新，响应体不走统一包装，供页面局部刷新
// POST /api/v1/supervisor/submissions/:id/remark
func (h *SupervisorHandler) UpdateRemark(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.RemarkRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.RemarkResponse{Success: false, Error: "Invalid request"})
		return
	}

	remark, err := h.subSvc.SetRemark(c.Request.Context(), userID, c.Param("id"), req.Remark)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			c.JSON(http.StatusNotFound, dto.RemarkResponse{Success: false, Error: err.Error()})
		case errors.Is(err, service.ErrInvalidRemarkTarget):
			c.JSON(http.StatusBadRequest, dto.RemarkResponse{Success: false, Error: err.Error()})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, dto.RemarkResponse{Success: false, Error: "Invalid request"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.RemarkResponse{Success: true, Remark: remark})
}
