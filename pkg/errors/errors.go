package errors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrBadRequest          = errors.New("bad request")
	ErrInternalServer      = errors.New("internal server error")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrRoleViolation       = errors.New("role does not permit this action")
	ErrRoleAlreadySet      = errors.New("role already set")
	ErrInvalidCounterparty = errors.New("counterparty missing or has wrong role")
	ErrAlreadyBound        = errors.New("binding already exists for this pair")
	ErrBindingNotFound     = errors.New("binding not found")
	ErrEmptyMessage        = errors.New("message content is empty")
	ErrInvalidCode         = errors.New("invalid or expired verification code")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
)

type APIError struct {
	Message string `json:"error"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, code int) *APIError {
	return &APIError{
		Message: message,
		Code:    code,
	}
}

func HTTPStatusFromError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrBindingNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrRoleViolation):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyBound):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrUserAlreadyExists),
		errors.Is(err, ErrInvalidCounterparty), errors.Is(err, ErrEmptyMessage),
		errors.Is(err, ErrInvalidCode), errors.Is(err, ErrRoleAlreadySet):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
