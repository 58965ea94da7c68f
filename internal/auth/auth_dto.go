package auth

type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	Telephone  string `json:"telephone" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Department string `json:"department"`
	Position   string `json:"position"`

	// Pointer agar bisa dibedakan antara tidak dikirim dan dikirim kosong.
	// Field ini selalu ditolak; role baru hanya lewat jalur admin.
	Role *string `json:"role"`
}

type LoginRequest struct {
	Telephone string `json:"telephone" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

type ResetPasswordRequest struct {
	Telephone   string `json:"telephone" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type AuthResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Telephone  string `json:"telephone"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
	Role       string `json:"role"`

	AnnualLeaveBalance   int `json:"annual_leave_balance"`
	SickLeaveBalance     int `json:"sick_leave_balance"`
	PersonalLeaveBalance int `json:"personal_leave_balance"`
}

type MemberLeaveSummaryResponse struct {
	Total             int `json:"total"`
	Pending           int `json:"pending"`
	Approved          int `json:"approved"`
	Rejected          int `json:"rejected"`
	TotalDaysApproved int `json:"total_days_approved"`
}

type MemberResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Telephone  string `json:"telephone"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
	Role       string `json:"role"`

	AnnualLeaveBalance   int `json:"annual_leave_balance"`
	SickLeaveBalance     int `json:"sick_leave_balance"`
	PersonalLeaveBalance int `json:"personal_leave_balance"`

	Leaves MemberLeaveSummaryResponse `json:"leaves"`
}

type ResetPasswordResponse struct {
	UserID string `json:"user_id"`
	// Sesi refresh user dicabut; access token lama tetap valid sampai
	// kedaluwarsa, jadi ini hanya sinyal untuk client.
	ForceLogout bool `json:"force_logout"`
}
