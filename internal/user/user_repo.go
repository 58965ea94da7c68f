package user

import (
	"context"
	"database/sql"

	usererrors "go-leavehub/internal/user/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByTelephone(ctx context.Context, telephone string) (*User, error)
	FindAllMembers(ctx context.Context) ([]User, error)
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// DebitBalance mengurangi saldo kategori sebanyak days, hanya jika saldo
	// masih mencukupi. Mengembalikan false tanpa error saat guard gagal
	// (saldo kurang atau status user berubah), agar transaksi pemanggil
	// bisa rollback dengan Conflict.
	DebitBalance(ctx context.Context, id uuid.UUID, category string, days int) (bool, error)
	CreditBalance(ctx context.Context, id uuid.UUID, category string, days int) error
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

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByTelephone(ctx context.Context, telephone string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("telephone = ?", telephone).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindAllMembers(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

func (r *repository) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	return r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Update("refresh_token", token).Error
}

func (r *repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password":      passwordHash,
			"refresh_token": nil,
		}).Error
}

func balanceColumn(category string) (string, bool) {
	switch category {
	case "annual":
		return "annual_leave_balance", true
	case "sick":
		return "sick_leave_balance", true
	case "personal":
		return "personal_leave_balance", true
	default:
		return "", false
	}
}

func (r *repository) DebitBalance(ctx context.Context, id uuid.UUID, category string, days int) (bool, error) {
	column, ok := balanceColumn(category)
	if !ok {
		return false, usererrors.ErrUnknownBalanceCategory
	}

	// Guard >= days menjaga invariant saldo tidak pernah negatif, juga saat
	// dua approval berlomba di transaksi berbeda.
	query := `
UPDATE users
SET ` + column + ` = ` + column + ` - $1,
    updated_at = NOW()
WHERE id = $2
  AND deleted_at IS NULL
  AND ` + column + ` >= $1
`
	res, err := r.execer().ExecContext(ctx, query, days, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *repository) CreditBalance(ctx context.Context, id uuid.UUID, category string, days int) error {
	column, ok := balanceColumn(category)
	if !ok {
		return usererrors.ErrUnknownBalanceCategory
	}

	query := `
UPDATE users
SET ` + column + ` = ` + column + ` + $1,
    updated_at = NOW()
WHERE id = $2
  AND deleted_at IS NULL
`
	_, err := r.execer().ExecContext(ctx, query, days, id)
	return err
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
