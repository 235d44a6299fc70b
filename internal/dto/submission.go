package dto

// ── 日志模块 DTO ──

// CreateSubmissionRequest 提交日志（multipart/form-data，附件字段名 file）
type CreateSubmissionRequest struct {
	Overview string `form:"overview" json:"overview" binding:"max=255"`
	Text     string `form:"text"     json:"text"`
}

// UpdateSubmissionRequest 编辑日志，未提交的字段保持不变
type UpdateSubmissionRequest struct {
	Overview  *string `form:"overview"   json:"overview"   binding:"omitempty,max=255"`
	Text      *string `form:"text"       json:"text"`
	ClearFile bool    `form:"clear_file" json:"clear_file"`
}

// ApproveRequest 审批请求
type ApproveRequest struct {
	Remark string `form:"remark" json:"remark"`
}

// RemarkRequest 行内备注更新
type RemarkRequest struct {
	Remark string `form:"remark" json:"remark"`
}

// SubmissionQuery 列表 / 导出查询参数
// 日期格式 YYYY-MM-DD，无法解析时忽略，不报错
type SubmissionQuery struct {
	Student    string `form:"student"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	FilterDate string `form:"filter_date"`
	Status     string `form:"status"`
	Export     string `form:"export"`
}

// ── 日志模块响应 ──

// SubmissionResponse 日志信息
type SubmissionResponse struct {
	ID           string       `json:"id"`
	MatricNumber string       `json:"matric_number"`
	StudentName  string       `json:"student_name"`
	Overview     string       `json:"overview"`
	Text         string       `json:"text"`
	FileURL      string       `json:"file_url"`
	Date         string       `json:"date"`
	Approved     bool         `json:"approved"`
	ReviewedBy   *PersonBrief `json:"reviewed_by,omitempty"`
	Remark       string       `json:"remark"`
}

// StudentDashboardResponse 学生首页
type StudentDashboardResponse struct {
	Supervisor  *PersonBrief         `json:"supervisor"`
	Submissions []SubmissionResponse `json:"submissions"`
	Notices     []Notice             `json:"notices"`
}

// SupervisorDashboardResponse 导师首页 / 日志页
type SupervisorDashboardResponse struct {
	Students    []PersonBrief        `json:"students"`
	Submissions []SubmissionResponse `json:"submissions"`
	Notices     []Notice             `json:"notices"`
}

// MutationResponse 写操作结果，附带本次产生的提示
type MutationResponse struct {
	Submission *SubmissionResponse `json:"submission,omitempty"`
	Notices    []Notice            `json:"notices"`
}

// RemarkResponse 行内备注结果（局部刷新使用）
type RemarkResponse struct {
	Success bool   `json:"success"`
	Remark  string `json:"remark"`
	Error   string `json:"error,omitempty"`
}
