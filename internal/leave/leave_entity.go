package leave

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Leave struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:idx_leaves_user_dates"`

	Category  string    `gorm:"column:category;type:varchar(20);not null"`
	StartDate time.Time `gorm:"column:start_date;type:date;not null;index:idx_leaves_user_dates"`
	EndDate   time.Time `gorm:"column:end_date;type:date;not null"`

	// Jumlah hari kerja (Senin-Jumat) dalam rentang, dihitung sekali saat
	// create dan setelah itu immutable.
	TotalDays int    `gorm:"column:total_days;type:int;not null"`
	Reason    string `gorm:"column:reason;type:text;not null"`

	Status          string     `gorm:"column:status;type:varchar(20);not null;default:'pending';index:idx_leaves_status"`
	ApprovedBy      *uuid.UUID `gorm:"column:approved_by;type:uuid"`
	ApprovedAt      *time.Time `gorm:"column:approved_at"`
	RejectionReason *string    `gorm:"column:rejection_reason;type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	User     *LeaveUser `gorm:"foreignKey:UserID;references:ID"`
	Approver *LeaveUser `gorm:"foreignKey:ApprovedBy;references:ID"`
}

// LeaveUser adalah sub-struct untuk join data minimal dari users
type LeaveUser struct {
	ID         uuid.UUID `gorm:"primaryKey"`
	Name       string    `gorm:"column:name"`
	Department string    `gorm:"column:department"`
	Position   string    `gorm:"column:position"`
}

func (LeaveUser) TableName() string {
	return "users"
}
