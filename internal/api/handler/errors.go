package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"siwes-logbook/internal/service"
	pkgerrors "siwes-logbook/pkg/errors"
	"siwes-logbook/pkg/response"
	"siwes-logbook/pkg/validate"
)

// 业务错误码（与 pkg/response 一致）
const (
	CodeBadRequest   = response.CodeBadRequest
	CodeUnauthorized = response.CodeUnauthorized
	CodeForbidden    = response.CodeForbidden
	CodeNotFound     = response.CodeNotFound
	CodeConflict     = response.CodeConflict
	CodeRetry        = response.CodeRetry

	CodeInvalidCredentials = response.CodeInvalidCredentials
	CodeExportFailed       = response.CodeExportFailed
)

// bindError 参数绑定失败，返回翻译后的英文提示
func bindError(c *gin.Context, err error) {
	if isBodyTooLarge(err) {
		response.TooLarge(c)
		return
	}
	response.BadRequest(c, CodeBadRequest, validate.Message(err))
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// handleServiceError 按错误分类映射 HTTP 状态
// NotFound / Permission 只返回通用提示，不暴露记录是否存在之外的信息
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, CodeInvalidCredentials, err.Error())
		return
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, CodeRetry, err.Error())
		return
	}

	switch pkgerrors.KindOf(err) {
	case pkgerrors.KindValidation:
		response.BadRequest(c, CodeBadRequest, err.Error())
	case pkgerrors.KindPermission:
		response.Forbidden(c, CodeForbidden, err.Error())
	case pkgerrors.KindNotFound:
		response.NotFound(c, CodeNotFound, err.Error())
	case pkgerrors.KindConflict:
		response.Conflict(c, CodeConflict, err.Error())
	case pkgerrors.KindExport:
		response.Error(c, http.StatusInternalServerError, CodeExportFailed, "export failed")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
