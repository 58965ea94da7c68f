package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string    `gorm:"column:name;type:varchar(255);not null"`
	Telephone  string    `gorm:"column:telephone;type:varchar(30);not null;uniqueIndex:uq_user_telephone"`
	Email      string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex:uq_user_email"`
	Password   string    `gorm:"column:password;type:text;not null"`
	Department string    `gorm:"column:department;type:varchar(100)"`
	Position   string    `gorm:"column:position;type:varchar(100)"`
	Role       string    `gorm:"column:role;type:varchar(20);not null;default:'employee'"`

	// Counter saldo per kategori. Tidak pernah di-update langsung oleh caller:
	// satu-satunya jalur mutasi adalah DebitBalance/CreditBalance yang dipanggil
	// dari transaksi approve/cancel di modul leave.
	AnnualLeaveBalance   int `gorm:"column:annual_leave_balance;type:int;not null;default:10"`
	SickLeaveBalance     int `gorm:"column:sick_leave_balance;type:int;not null;default:30"`
	PersonalLeaveBalance int `gorm:"column:personal_leave_balance;type:int;not null;default:3"`

	// Refresh token aktif terakhir. Satu sesi per user: login baru menimpa
	// nilai lama sehingga refresh token sebelumnya otomatis tidak berlaku.
	RefreshToken *string `gorm:"column:refresh_token;type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// BalanceFor mengembalikan sisa saldo untuk kategori ber-saldo.
// Kategori unpaid tidak punya counter (unlimited) sehingga ok == false.
func (u *User) BalanceFor(category string) (int, bool) {
	switch category {
	case "annual":
		return u.AnnualLeaveBalance, true
	case "sick":
		return u.SickLeaveBalance, true
	case "personal":
		return u.PersonalLeaveBalance, true
	default:
		return 0, false
	}
}
