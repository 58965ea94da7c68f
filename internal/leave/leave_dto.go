package leave

type CreateLeaveRequest struct {
	Category  string `json:"category" binding:"required,oneof=annual sick personal unpaid"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

type RejectLeaveRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

type ListLeavesFilterRequest struct {
	Status    string `form:"status" binding:"omitempty,oneof=pending approved rejected cancelled"`
	Category  string `form:"category" binding:"omitempty,oneof=annual sick personal unpaid"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	UserName        string  `json:"user_name,omitempty"`
	Department      string  `json:"department,omitempty"`
	Category        string  `json:"category"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	TotalDays       int     `json:"total_days"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApproverName    string  `json:"approver_name,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

type CategoryDaysResponse struct {
	Category  string `json:"category"`
	TotalDays int    `json:"total_days"`
}

type RemainingBalancesResponse struct {
	Annual   int `json:"annual"`
	Sick     int `json:"sick"`
	Personal int `json:"personal"`
}

type LeaveStatsResponse struct {
	Year            int                       `json:"year"`
	UsedLeaves      []CategoryDaysResponse    `json:"used_leaves"`
	RemainingLeaves RemainingBalancesResponse `json:"remaining_leaves"`
}
