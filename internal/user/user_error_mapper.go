package user

import (
	"errors"
	"strings"

	usererrors "go-leavehub/internal/user/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// MapRepositoryError menurunkan error driver/GORM menjadi AppError domain.
// Unique violation dipetakan per constraint agar duplikasi kontak terdeteksi
// race-free di level database, bukan lewat pre-read.
func MapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usererrors.ErrUserNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "uq_user_telephone":
				return usererrors.ErrTelephoneAlreadyRegistered
			case "uq_user_email":
				return usererrors.ErrEmailAlreadyRegistered
			}
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_user_telephone") {
		return usererrors.ErrTelephoneAlreadyRegistered
	}
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_user_email") {
		return usererrors.ErrEmailAlreadyRegistered
	}

	return err
}
