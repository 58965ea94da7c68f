package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-leavehub/internal/domain"
	"go-leavehub/internal/events"
	leaveerrors "go-leavehub/internal/leave/errors"
	"go-leavehub/internal/messaging/kafka"
	"go-leavehub/internal/shared/contextutil"
	"go-leavehub/internal/user"
	usererrors "go-leavehub/internal/user/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

const (
	CategoryAnnual   = "annual"
	CategorySick     = "sick"
	CategoryPersonal = "personal"
	CategoryUnpaid   = "unpaid"
)

const DefaultRejectionReason = "no reason provided"

const statsCacheTTL = 5 * time.Minute

func statsCacheKey(userID string, year int) string {
	return fmt.Sprintf("leaves:stats:%s:%d", userID, year)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, ownerID string, req CreateLeaveRequest) (LeaveResponse, error)
	GetMyLeaves(ctx context.Context, ownerID string) ([]LeaveResponse, error)
	// GetAll mengembalikan halaman hasil plus total baris sebelum paging.
	GetAll(ctx context.Context, filter ListLeavesFilterRequest) ([]LeaveResponse, int64, error)
	GetByID(ctx context.Context, callerID, callerRole, id string) (LeaveResponse, error)
	Approve(ctx context.Context, approverID, id string) (LeaveResponse, error)
	Reject(ctx context.Context, approverID, id, rejectionReason string) (LeaveResponse, error)
	Cancel(ctx context.Context, callerID, id string) (LeaveResponse, error)
	Stats(ctx context.Context, userID string, year int) (LeaveStatsResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	users  user.Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger

	// Saat true, cancel terhadap request pending menghapus record alih-alih
	// menyimpannya dengan status cancelled (LEAVE_CANCEL_DELETE_PENDING).
	cancelDeletesPending bool
}

func NewService(db *sql.DB, repo Repository, users user.Repository, rdb *redis.Client, cancelDeletesPending bool, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, users, nil, rdb, cancelDeletesPending, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	users user.Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	cancelDeletesPending bool,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:                   db,
		repo:                 repo,
		users:                users,
		outbox:               outboxRepo,
		rdb:                  rdb,
		sf:                   &singleflight.Group{},
		logger:               l,
		cancelDeletesPending: cancelDeletesPending,
	}
}

func (s *service) Create(ctx context.Context, ownerID string, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("owner_id", ownerID),
		zap.String("category", req.Category),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	if startDate.After(endDate) {
		s.logger.Warn("create leave invalid range",
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}

	l := &Leave{
		ID:        uuid.New(),
		UserID:    ownerUUID,
		Category:  req.Category,
		StartDate: startDate,
		EndDate:   endDate,
		TotalDays: countBusinessDays(startDate, endDate),
		Reason:    req.Reason,
		Status:    StatusPending,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("owner_id", ownerID),
		zap.Int("total_days", l.TotalDays),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetMyLeaves(ctx context.Context, ownerID string) ([]LeaveResponse, error) {
	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, leaveerrors.ErrInvalidActorID
	}

	leaves, err := s.repo.FindAllByUser(ctx, ownerUUID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetAll(ctx context.Context, filter ListLeavesFilterRequest) ([]LeaveResponse, int64, error) {
	if filter.StartDate != "" {
		if _, err := parseDate(filter.StartDate); err != nil {
			return nil, 0, err
		}
	}
	if filter.EndDate != "" {
		if _, err := parseDate(filter.EndDate); err != nil {
			return nil, 0, err
		}
	}

	leaves, total, err := s.repo.FindAllFiltered(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return mapToListResponse(leaves), total, nil
}

func (s *service) GetByID(ctx context.Context, callerID, callerRole, id string) (LeaveResponse, error) {
	leaveUUID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	l, err := s.repo.FindByID(ctx, leaveUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	if l.UserID.String() != callerID && !domain.Privileged(callerRole) {
		return LeaveResponse{}, leaveerrors.ErrLeaveAccessDenied
	}
	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, approverID, id string) (LeaveResponse, error) {
	s.logger.Debug("approve leave requested",
		zap.String("leave_id", id),
		zap.String("approver_id", approverID),
	)

	approverUUID, err := uuid.Parse(approverID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	leaveUUID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	l, err := s.findForDecision(ctx, leaveUUID)
	if err != nil {
		return LeaveResponse{}, err
	}

	// Pre-check saldo untuk pesan error yang jelas; guard sesungguhnya ada
	// di DebitBalance dalam transaksi.
	if l.Category != CategoryUnpaid {
		owner, err := s.users.FindByID(ctx, l.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return LeaveResponse{}, usererrors.ErrUserNotFound
			}
			return LeaveResponse{}, err
		}
		balance, ok := owner.BalanceFor(l.Category)
		if !ok {
			return LeaveResponse{}, usererrors.ErrUnknownBalanceCategory
		}
		if balance < l.TotalDays {
			s.logger.Warn("approve leave insufficient balance",
				zap.String("leave_id", id),
				zap.String("category", l.Category),
				zap.Int("balance", balance),
				zap.Int("total_days", l.TotalDays),
			)
			return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("approve leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := time.Now().UTC()

	ok, err := qtx.TransitionStatus(ctx, leaveUUID, StatusPending, StatusApproved, &approverUUID, &now, nil)
	if err != nil {
		s.logger.Error("approve leave transition failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !ok {
		// Writer lain sudah memutuskan request ini lebih dulu.
		return LeaveResponse{}, leaveerrors.ErrLeaveNotPending
	}

	if l.Category != CategoryUnpaid {
		debited, err := s.users.WithTx(tx).DebitBalance(ctx, l.UserID, l.Category, l.TotalDays)
		if err != nil {
			s.logger.Error("approve leave debit failed", zap.Error(err))
			return LeaveResponse{}, err
		}
		if !debited {
			return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
		}
	}

	if err := s.enqueueDecisionEvent(ctx, tx, l, StatusApproved, approverUUID, now); err != nil {
		s.logger.Error("approve leave outbox failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("approve leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.invalidateStatsCache(ctx, l)
	s.logger.Info("approve leave success",
		zap.String("leave_id", id),
		zap.String("approver_id", approverID),
		zap.Int("total_days", l.TotalDays),
	)

	l.Status = StatusApproved
	l.ApprovedBy = &approverUUID
	l.ApprovedAt = &now
	return mapToResponse(*l), nil
}

func (s *service) Reject(ctx context.Context, approverID, id, rejectionReason string) (LeaveResponse, error) {
	s.logger.Debug("reject leave requested",
		zap.String("leave_id", id),
		zap.String("approver_id", approverID),
	)

	approverUUID, err := uuid.Parse(approverID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	leaveUUID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	l, err := s.findForDecision(ctx, leaveUUID)
	if err != nil {
		return LeaveResponse{}, err
	}

	if rejectionReason == "" {
		rejectionReason = DefaultRejectionReason
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reject leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := time.Now().UTC()

	ok, err := qtx.TransitionStatus(ctx, leaveUUID, StatusPending, StatusRejected, &approverUUID, &now, &rejectionReason)
	if err != nil {
		s.logger.Error("reject leave transition failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !ok {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotPending
	}

	if err := s.enqueueDecisionEvent(ctx, tx, l, StatusRejected, approverUUID, now); err != nil {
		s.logger.Error("reject leave outbox failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("reject leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("reject leave success",
		zap.String("leave_id", id),
		zap.String("approver_id", approverID),
	)

	l.Status = StatusRejected
	l.ApprovedBy = &approverUUID
	l.ApprovedAt = &now
	l.RejectionReason = &rejectionReason
	return mapToResponse(*l), nil
}

func (s *service) Cancel(ctx context.Context, callerID, id string) (LeaveResponse, error) {
	s.logger.Debug("cancel leave requested",
		zap.String("leave_id", id),
		zap.String("caller_id", callerID),
	)

	callerUUID, err := uuid.Parse(callerID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	leaveUUID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	l, err := s.repo.FindByID(ctx, leaveUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	if l.UserID != callerUUID {
		return LeaveResponse{}, leaveerrors.ErrNotLeaveOwner
	}
	switch l.Status {
	case StatusCancelled:
		return LeaveResponse{}, leaveerrors.ErrLeaveAlreadyCancelled
	case StatusRejected:
		// Tidak ada yang perlu dibatalkan.
		return LeaveResponse{}, leaveerrors.ErrLeaveNotCancellable
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("cancel leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := time.Now().UTC()

	switch l.Status {
	case StatusApproved:
		// Approver asli dipertahankan untuk audit.
		ok, err := qtx.TransitionStatus(ctx, leaveUUID, StatusApproved, StatusCancelled, l.ApprovedBy, l.ApprovedAt, nil)
		if err != nil {
			s.logger.Error("cancel leave transition failed", zap.Error(err))
			return LeaveResponse{}, err
		}
		if !ok {
			return LeaveResponse{}, leaveerrors.ErrLeaveAlreadyCancelled
		}
		if l.Category != CategoryUnpaid {
			// Inversi dari debit saat approve.
			if err := s.users.WithTx(tx).CreditBalance(ctx, l.UserID, l.Category, l.TotalDays); err != nil {
				s.logger.Error("cancel leave credit failed", zap.Error(err))
				return LeaveResponse{}, err
			}
		}
	case StatusPending:
		if s.cancelDeletesPending {
			ok, err := qtx.DeletePending(ctx, leaveUUID)
			if err != nil {
				s.logger.Error("cancel leave delete failed", zap.Error(err))
				return LeaveResponse{}, err
			}
			if !ok {
				return LeaveResponse{}, leaveerrors.ErrLeaveAlreadyCancelled
			}
		} else {
			ok, err := qtx.TransitionStatus(ctx, leaveUUID, StatusPending, StatusCancelled, nil, nil, nil)
			if err != nil {
				s.logger.Error("cancel leave transition failed", zap.Error(err))
				return LeaveResponse{}, err
			}
			if !ok {
				return LeaveResponse{}, leaveerrors.ErrLeaveAlreadyCancelled
			}
		}
	}

	if err := s.enqueueDecisionEvent(ctx, tx, l, StatusCancelled, callerUUID, now); err != nil {
		s.logger.Error("cancel leave outbox failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("cancel leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.invalidateStatsCache(ctx, l)
	s.logger.Info("cancel leave success",
		zap.String("leave_id", id),
		zap.String("from_status", l.Status),
	)

	if l.Status == StatusPending {
		l.ApprovedBy = nil
		l.ApprovedAt = nil
	}
	l.Status = StatusCancelled
	return mapToResponse(*l), nil
}

func (s *service) Stats(ctx context.Context, userID string, year int) (LeaveStatsResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return LeaveStatsResponse{}, leaveerrors.ErrInvalidActorID
	}
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	cacheKey := statsCacheKey(userID, year)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp LeaveStatsResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		used, err := s.repo.SumApprovedDaysByCategory(ctx, userUUID, year)
		if err != nil {
			return nil, err
		}

		u, err := s.users.FindByID(ctx, userUUID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, usererrors.ErrUserNotFound
			}
			return nil, err
		}

		usedResp := make([]CategoryDaysResponse, len(used))
		for i, row := range used {
			usedResp[i] = CategoryDaysResponse{Category: row.Category, TotalDays: row.TotalDays}
		}

		resp := LeaveStatsResponse{
			Year:       year,
			UsedLeaves: usedResp,
			RemainingLeaves: RemainingBalancesResponse{
				Annual:   u.AnnualLeaveBalance,
				Sick:     u.SickLeaveBalance,
				Personal: u.PersonalLeaveBalance,
			},
		}

		if s.rdb != nil {
			if payload, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, string(payload), statsCacheTTL)
			}
		}
		return resp, nil
	})
	if err != nil {
		return LeaveStatsResponse{}, err
	}

	return v.(LeaveStatsResponse), nil
}

// findForDecision memuat request dan menolak yang sudah terminal. Pengecekan
// di sini hanya untuk fail-fast; guard atomiknya ada di TransitionStatus.
func (s *service) findForDecision(ctx context.Context, id uuid.UUID) (*Leave, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		return nil, err
	}
	if l.Status != StatusPending {
		return nil, leaveerrors.ErrLeaveNotPending
	}
	return l, nil
}

func (s *service) enqueueDecisionEvent(ctx context.Context, tx *sql.Tx, l *Leave, status string, decidedBy uuid.UUID, occurredAt time.Time) error {
	if s.outbox == nil {
		return nil
	}

	event := events.LeaveDecidedEvent{
		EventType:  "leave." + status,
		LeaveID:    l.ID.String(),
		UserID:     l.UserID.String(),
		DecidedBy:  decidedBy.String(),
		Category:   l.Category,
		Status:     status,
		TotalDays:  l.TotalDays,
		OccurredAt: occurredAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave",
		AggregateID:   l.ID.String(),
		EventType:     event.EventType,
		Topic:         events.LeaveDecidedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) invalidateStatsCache(ctx context.Context, l *Leave) {
	if s.rdb == nil {
		return
	}
	userID := l.UserID.String()
	keys := []string{
		statsCacheKey(userID, l.StartDate.Year()),
		statsCacheKey(userID, time.Now().UTC().Year()),
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("invalidate stats cache failed", zap.Error(err))
	}
}

// countBusinessDays menghitung hari Senin-Jumat dalam [start, end] inklusif.
func countBusinessDays(start, end time.Time) int {
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:        l.ID.String(),
		UserID:    l.UserID.String(),
		Category:  l.Category,
		StartDate: l.StartDate.Format("2006-01-02"),
		EndDate:   l.EndDate.Format("2006-01-02"),
		TotalDays: l.TotalDays,
		Reason:    l.Reason,
		Status:    l.Status,
	}
	if l.User != nil {
		resp.UserName = l.User.Name
		resp.Department = l.User.Department
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.Approver != nil {
		resp.ApproverName = l.Approver.Name
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	resp.RejectionReason = l.RejectionReason
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
