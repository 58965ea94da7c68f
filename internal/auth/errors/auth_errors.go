package autherrors

import (
	"net/http"

	"go-leavehub/internal/shared/apperror"
)

var (
	// Sengaja satu pesan generik untuk kontak tak dikenal maupun password
	// salah, agar keberadaan akun tidak bocor.
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"telephone or password is incorrect",
		http.StatusUnauthorized,
	)
	ErrInvalidToken = apperror.New(
		apperror.CodeUnauthorized,
		"invalid token",
		http.StatusUnauthorized,
	)
	ErrTokenExpired = apperror.New(
		apperror.CodeUnauthorized,
		"token expired",
		http.StatusUnauthorized,
	)
	ErrInvalidRefreshToken = apperror.New(
		apperror.CodeUnauthorized,
		"invalid or expired refresh token",
		http.StatusUnauthorized,
	)
	ErrMissingRefreshToken = apperror.New(
		apperror.CodeUnauthorized,
		"missing refresh token",
		http.StatusUnauthorized,
	)
	ErrRoleNotAssignable = apperror.New(
		apperror.CodeForbidden,
		"role cannot be assigned during registration",
		http.StatusForbidden,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)
	ErrTokenGenerationFailed = apperror.New(
		apperror.CodeInternalError,
		"failed to generate token",
		http.StatusInternalServerError,
	)
)
