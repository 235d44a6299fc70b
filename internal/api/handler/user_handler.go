package handler

import (
	"github.com/gin-gonic/gin"

	"siwes-logbook/internal/dto"
	"siwes-logbook/internal/service"
	"siwes-logbook/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// GetCurrentUser 当前用户资料
// GET /api/v1/users/me
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.userSvc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// ListMyStudents 导师名下学生
// GET /api/v1/supervisor/students
func (h *UserHandler) ListMyStudents(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	students, err := h.userSvc.ListStudents(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, dto.StudentListResponse{Students: students})
}
