package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification adalah pesan in-app untuk pemilik pengajuan cuti, dibuat oleh
// consumer dari event leave.request.decided.
type Notification struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	RecipientID uuid.UUID `gorm:"column:recipient_id;type:uuid;not null;index"`
	LeaveID     uuid.UUID `gorm:"column:leave_id;type:uuid;not null;uniqueIndex:uq_notification_leave_event,priority:1"`
	EventType   string    `gorm:"column:event_type;type:varchar(50);not null;uniqueIndex:uq_notification_leave_event,priority:2"`
	Message     string    `gorm:"column:message;type:text;not null"`
	ReadAt      *time.Time
	CreatedAt   time.Time
}
