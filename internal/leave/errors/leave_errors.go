package leaveerrors

import (
	"net/http"

	"go-leavehub/internal/shared/apperror"
)

var (
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave request id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrLeaveNotPending = apperror.New(
		apperror.CodeInvalidState,
		"only a pending leave request can be decided",
		http.StatusConflict,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeConflict,
		"insufficient leave balance",
		http.StatusConflict,
	)
	ErrNotLeaveOwner = apperror.New(
		apperror.CodeForbidden,
		"you do not own this leave request",
		http.StatusForbidden,
	)
	ErrLeaveAlreadyCancelled = apperror.New(
		apperror.CodeInvalidState,
		"leave request already cancelled",
		http.StatusConflict,
	)
	ErrLeaveNotCancellable = apperror.New(
		apperror.CodeInvalidState,
		"a rejected leave request cannot be cancelled",
		http.StatusConflict,
	)
	ErrLeaveAccessDenied = apperror.New(
		apperror.CodeForbidden,
		"you do not have access to this leave request",
		http.StatusForbidden,
	)
)
