package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemberLeaveSummary adalah agregat per user untuk listing members.
type MemberLeaveSummary struct {
	UserID            uuid.UUID
	Total             int
	Pending           int
	Approved          int
	Rejected          int
	TotalDaysApproved int
}

type CategoryDays struct {
	Category  string
	TotalDays int
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindByID(ctx context.Context, id uuid.UUID) (*Leave, error)
	FindAllByUser(ctx context.Context, userID uuid.UUID) ([]Leave, error)
	// FindAllFiltered menjalankan LIMIT/OFFSET di query dan mengembalikan
	// total baris yang cocok sebelum paging.
	FindAllFiltered(ctx context.Context, filter ListLeavesFilterRequest) ([]Leave, int64, error)

	// TransitionStatus mengganti status hanya jika status saat ini masih
	// fromStatus. Mengembalikan false saat guard gagal (writer lain sudah
	// mengubah status), tanpa error.
	TransitionStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string, approvedBy *uuid.UUID, approvedAt *time.Time, rejectionReason *string) (bool, error)

	// DeletePending menghapus permanen request yang masih pending.
	DeletePending(ctx context.Context, id uuid.UUID) (bool, error)

	SumApprovedDaysByCategory(ctx context.Context, userID uuid.UUID, year int) ([]CategoryDays, error)
	SummaryByUser(ctx context.Context) (map[uuid.UUID]MemberLeaveSummary, error)
}

type repository struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *sql.Tx
}

func NewRepository(db *gorm.DB, sqlDB *sql.DB) Repository {
	return &repository{db: db, sqlDB: sqlDB}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, sqlDB: r.sqlDB, tx: tx}
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.db.WithContext(ctx).Omit("User", "Approver").Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Approver").
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]Leave, error) {
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Preload("Approver").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindAllFiltered(ctx context.Context, filter ListLeavesFilterRequest) ([]Leave, int64, error) {
	db := r.db.WithContext(ctx).Model(&Leave{})

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}
	if filter.StartDate != "" && filter.EndDate != "" {
		db = db.Where("start_date BETWEEN ? AND ?", filter.StartDate, filter.EndDate)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.
		Preload("User").
		Preload("Approver").
		Order("created_at DESC")
	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		db = db.Limit(filter.PageSize).Offset(offset)
	}

	var leaves []Leave
	err := db.Find(&leaves).Error
	return leaves, total, err
}

func (r *repository) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	fromStatus, toStatus string,
	approvedBy *uuid.UUID,
	approvedAt *time.Time,
	rejectionReason *string,
) (bool, error) {
	// Guard "status = fromStatus" membuat check-then-set atomik: dari dua
	// approver yang berlomba, yang kalah melihat 0 rows affected.
	query := `
UPDATE leaves
SET status = $1,
    approved_by = $2,
    approved_at = $3,
    rejection_reason = $4,
    updated_at = NOW()
WHERE id = $5
  AND status = $6
  AND deleted_at IS NULL
`
	res, err := r.execer().ExecContext(ctx, query,
		toStatus, approvedBy, approvedAt, rejectionReason, id, fromStatus,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *repository) DeletePending(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
DELETE FROM leaves
WHERE id = $1
  AND status = $2
`
	res, err := r.execer().ExecContext(ctx, query, id, StatusPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *repository) SumApprovedDaysByCategory(ctx context.Context, userID uuid.UUID, year int) ([]CategoryDays, error) {
	var rows []CategoryDays
	err := r.db.WithContext(ctx).Raw(`
SELECT category, COALESCE(SUM(total_days), 0) AS total_days
FROM leaves
WHERE user_id = ?
  AND status = ?
  AND start_date >= make_date(?, 1, 1)
  AND start_date <= make_date(?, 12, 31)
  AND deleted_at IS NULL
GROUP BY category
ORDER BY category
`, userID, StatusApproved, year, year).Scan(&rows).Error
	return rows, err
}

func (r *repository) SummaryByUser(ctx context.Context) (map[uuid.UUID]MemberLeaveSummary, error) {
	var rows []MemberLeaveSummary
	err := r.db.WithContext(ctx).Raw(`
SELECT
	user_id,
	COUNT(*) AS total,
	COUNT(*) FILTER (WHERE status = 'pending') AS pending,
	COUNT(*) FILTER (WHERE status = 'approved') AS approved,
	COUNT(*) FILTER (WHERE status = 'rejected') AS rejected,
	COALESCE(SUM(total_days) FILTER (WHERE status = 'approved'), 0) AS total_days_approved
FROM leaves
WHERE deleted_at IS NULL
GROUP BY user_id
`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make(map[uuid.UUID]MemberLeaveSummary, len(rows))
	for _, row := range rows {
		summaries[row.UserID] = row
	}
	return summaries, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
