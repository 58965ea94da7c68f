package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go-leavehub/internal/events"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeLeaveDecisions membaca event keputusan cuti dan menyimpan notifikasi
// untuk pemilik pengajuan. Unique index (leave_id, event_type) membuat
// redelivery aman di-skip.
func ConsumeLeaveDecisions(
	ctx context.Context,
	reader *kafkago.Reader,
	repo Repository,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_decided")
	log.Info("leave decision consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave decision consumer stopped")
				return
			}
			log.Error("fetch leave decision message failed", zap.Error(err))
			continue
		}

		var event events.LeaveDecidedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave_decided event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		n, err := buildNotification(event)
		if err != nil {
			log.Error("build notification failed",
				zap.String("leave_id", event.LeaveID),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := repo.Create(ctx, n); err != nil {
			if isDuplicateNotification(err) {
				log.Warn("notification already exists for event, skipping",
					zap.String("leave_id", event.LeaveID),
					zap.String("event_type", event.EventType),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}

			log.Error("create notification failed",
				zap.String("leave_id", event.LeaveID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave decision message failed", zap.Error(err))
			continue
		}

		log.Info("notification created from leave_decided event",
			zap.String("leave_id", event.LeaveID),
			zap.String("status", event.Status),
		)
	}
}

func buildNotification(event events.LeaveDecidedEvent) (*Notification, error) {
	recipientID, err := uuid.Parse(event.UserID)
	if err != nil {
		return nil, err
	}
	leaveID, err := uuid.Parse(event.LeaveID)
	if err != nil {
		return nil, err
	}

	var message string
	switch event.Status {
	case "approved":
		message = fmt.Sprintf("Your %s leave request (%d day(s)) has been approved.", event.Category, event.TotalDays)
	case "rejected":
		message = fmt.Sprintf("Your %s leave request has been rejected.", event.Category)
	case "cancelled":
		message = fmt.Sprintf("Your %s leave request has been cancelled.", event.Category)
	default:
		message = fmt.Sprintf("Your %s leave request status changed to %s.", event.Category, event.Status)
	}

	return &Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		LeaveID:     leaveID,
		EventType:   event.EventType,
		Message:     message,
	}, nil
}

func isDuplicateNotification(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key value")
}
