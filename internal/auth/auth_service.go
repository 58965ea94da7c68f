package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	autherrors "go-leavehub/internal/auth/errors"
	"go-leavehub/internal/domain"
	"go-leavehub/internal/leave"
	"go-leavehub/internal/user"
	usererrors "go-leavehub/internal/user/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)

	Login(ctx context.Context, telephone, password string) (accessToken, refreshToken string, resp AuthResponse, err error)

	// RefreshToken menerbitkan access token baru jika refresh token yang
	// disodorkan masih cocok dengan yang tersimpan di user.
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, resp AuthResponse, err error)

	// Logout selalu sukses: error verifikasi token ditelan agar client
	// bisa membersihkan sesinya secara idempoten.
	Logout(ctx context.Context, refreshToken string)

	GetMe(ctx context.Context, userID string) (*AuthResponse, error)

	Members(ctx context.Context) ([]MemberResponse, error)

	ResetPassword(ctx context.Context, req ResetPasswordRequest) (ResetPasswordResponse, error)
}

type service struct {
	users  user.Repository
	leaves leave.Repository
	logger *zap.Logger
}

func NewService(users user.Repository, leaves leave.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{users: users, leaves: leaves, logger: l}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	// Role dari client ditolak eksplisit, bukan diabaikan diam-diam.
	if req.Role != nil {
		s.logger.Warn("register rejected: role supplied", zap.String("telephone", req.Telephone))
		return AuthResponse{}, autherrors.ErrRoleNotAssignable
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	u := &user.User{
		ID:         uuid.New(),
		Name:       req.Name,
		Telephone:  req.Telephone,
		Email:      req.Email,
		Password:   string(hashed),
		Department: req.Department,
		Position:   req.Position,
		Role:       domain.RoleEmployee,

		AnnualLeaveBalance:   10,
		SickLeaveBalance:     30,
		PersonalLeaveBalance: 3,
	}

	if err := s.users.Create(ctx, u); err != nil {
		s.logger.Warn("register persist failed", zap.Error(err))
		return AuthResponse{}, user.MapRepositoryError(err)
	}

	s.logger.Info("register success", zap.String("user_id", u.ID.String()))
	return mapToAuthResponse(u), nil
}

func (s *service) Login(ctx context.Context, telephone, password string) (string, string, AuthResponse, error) {
	u, err := s.users.FindByTelephone(ctx, telephone)
	if err != nil {
		// Pesan sama dengan password salah agar keberadaan akun tidak bocor.
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	accessToken, err := generateToken(u.ID.String(), u.Role, AccessTokenTTL, os.Getenv("JWT_SECRET"))
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	refreshToken, err := generateToken(u.ID.String(), u.Role, RefreshTokenTTL, os.Getenv("JWT_REFRESH_SECRET"))
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	// Login baru menimpa refresh token lama: satu sesi aktif per user.
	if err := s.users.UpdateRefreshToken(ctx, u.ID, &refreshToken); err != nil {
		s.logger.Error("login store refresh token failed", zap.Error(err))
		return "", "", AuthResponse{}, err
	}

	s.logger.Info("login success", zap.String("user_id", u.ID.String()))
	return accessToken, refreshToken, mapToAuthResponse(u), nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, AuthResponse, error) {
	userID, err := parseRefreshToken(refreshToken)
	if err != nil {
		return "", AuthResponse{}, err
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
		}
		return "", AuthResponse{}, err
	}

	// Token valid secara kriptografis tapi sudah digantikan login/reset yang
	// lebih baru tetap ditolak.
	if u.RefreshToken == nil || *u.RefreshToken != refreshToken {
		s.logger.Warn("refresh rejected: stale token", zap.String("user_id", u.ID.String()))
		return "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	newAccessToken, err := generateToken(u.ID.String(), u.Role, AccessTokenTTL, os.Getenv("JWT_SECRET"))
	if err != nil {
		return "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return newAccessToken, mapToAuthResponse(u), nil
}

func (s *service) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}

	userID, err := parseRefreshToken(refreshToken)
	if err != nil {
		s.logger.Debug("logout with unverifiable token", zap.Error(err))
		return
	}

	if err := s.users.UpdateRefreshToken(ctx, userID, nil); err != nil {
		s.logger.Warn("logout clear refresh token failed", zap.Error(err))
		return
	}

	s.logger.Info("logout success", zap.String("user_id", userID.String()))
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, usererrors.ErrInvalidUserID
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usererrors.ErrUserNotFound
		}
		return nil, err
	}

	resp := mapToAuthResponse(u)
	return &resp, nil
}

func (s *service) Members(ctx context.Context) ([]MemberResponse, error) {
	users, err := s.users.FindAllMembers(ctx)
	if err != nil {
		return nil, err
	}

	summaries, err := s.leaves.SummaryByUser(ctx)
	if err != nil {
		return nil, err
	}

	members := make([]MemberResponse, len(users))
	for i, u := range users {
		summary := summaries[u.ID]
		members[i] = MemberResponse{
			ID:         u.ID.String(),
			Name:       u.Name,
			Telephone:  u.Telephone,
			Email:      u.Email,
			Department: u.Department,
			Position:   u.Position,
			Role:       u.Role,

			AnnualLeaveBalance:   u.AnnualLeaveBalance,
			SickLeaveBalance:     u.SickLeaveBalance,
			PersonalLeaveBalance: u.PersonalLeaveBalance,

			Leaves: MemberLeaveSummaryResponse{
				Total:             summary.Total,
				Pending:           summary.Pending,
				Approved:          summary.Approved,
				Rejected:          summary.Rejected,
				TotalDaysApproved: summary.TotalDaysApproved,
			},
		}
	}
	return members, nil
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) (ResetPasswordResponse, error) {
	u, err := s.users.FindByTelephone(ctx, req.Telephone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ResetPasswordResponse{}, usererrors.ErrUserNotFound
		}
		return ResetPasswordResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return ResetPasswordResponse{}, err
	}

	// UpdatePassword sekaligus mengosongkan refresh token sehingga sesi
	// refresh lama mati. Access token lama tidak dicabut; force_logout
	// hanya sinyal ke client.
	if err := s.users.UpdatePassword(ctx, u.ID, string(hashed)); err != nil {
		s.logger.Error("reset password failed", zap.Error(err))
		return ResetPasswordResponse{}, err
	}

	s.logger.Info("reset password success", zap.String("user_id", u.ID.String()))
	return ResetPasswordResponse{UserID: u.ID.String(), ForceLogout: true}, nil
}

func parseRefreshToken(refreshToken string) (uuid.UUID, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(os.Getenv("JWT_REFRESH_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, autherrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, autherrors.ErrInvalidRefreshToken
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, autherrors.ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, autherrors.ErrInvalidRefreshToken
	}
	return userID, nil
}

// reusable token generator
func generateToken(userID, role string, expiry time.Duration, secret string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func mapToAuthResponse(u *user.User) AuthResponse {
	return AuthResponse{
		ID:         u.ID.String(),
		Name:       u.Name,
		Telephone:  u.Telephone,
		Email:      u.Email,
		Department: u.Department,
		Position:   u.Position,
		Role:       u.Role,

		AnnualLeaveBalance:   u.AnnualLeaveBalance,
		SickLeaveBalance:     u.SickLeaveBalance,
		PersonalLeaveBalance: u.PersonalLeaveBalance,
	}
}
