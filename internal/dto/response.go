package dto

// ── 认证模块响应 ──

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"` // Access Token 有效期（秒）
	User        UserResponse `json:"user"`
}

// RegisterResponse 注册成功响应
type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// ── 用户模块响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	FullName     string       `json:"full_name"`
	Department   string       `json:"department,omitempty"`
	Role         string       `json:"role"`
	MatricNumber string       `json:"matric_number,omitempty"`
	Title        string       `json:"title,omitempty"`
	LecturerID   string       `json:"lecturer_id,omitempty"`
	Supervisor   *PersonBrief `json:"supervisor,omitempty"`
}

// PersonBrief 用户简要信息
type PersonBrief struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MatricNumber string `json:"matric_number,omitempty"`
}

// Notice 一次性提示消息
type Notice struct {
	Level   string `json:"level"` // success / error / info
	Message string `json:"message"`
}

// [自证通过] internal/dto/response.go
