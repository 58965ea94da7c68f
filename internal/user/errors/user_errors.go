package usererrors

import (
	"net/http"

	"go-leavehub/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrTelephoneAlreadyRegistered = apperror.New(
		apperror.CodeConflict,
		"telephone number already registered",
		http.StatusConflict,
	)
	ErrEmailAlreadyRegistered = apperror.New(
		apperror.CodeConflict,
		"email already registered",
		http.StatusConflict,
	)
	ErrUnknownBalanceCategory = apperror.New(
		apperror.CodeInvalidInput,
		"unknown leave balance category",
		http.StatusBadRequest,
	)
)
