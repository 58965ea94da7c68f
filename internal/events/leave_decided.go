package events

import "time"

const LeaveDecidedTopic = "leave.request.decided.v1"

// LeaveDecidedEvent diterbitkan setiap kali sebuah pengajuan cuti mencapai
// keputusan: approved, rejected, atau cancelled.
type LeaveDecidedEvent struct {
	EventType  string    `json:"event_type"`
	LeaveID    string    `json:"leave_id"`
	UserID     string    `json:"user_id"`
	DecidedBy  string    `json:"decided_by"`
	Category   string    `json:"category"`
	Status     string    `json:"status"`
	TotalDays  int       `json:"total_days"`
	OccurredAt time.Time `json:"occurred_at"`
}
