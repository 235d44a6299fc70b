package dto

// ── 用户模块 DTO ──

// StudentListResponse 导师名下学生列表
type StudentListResponse struct {
	Students []PersonBrief `json:"students"`
}
