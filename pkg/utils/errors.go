package utils

import (
	"net/http"

	apperrors "factory-ops/pkg/errors"
)

type errorStatus struct {
	err  error
	code int
}

// ErrorList сопоставляет доменные ошибки с HTTP-кодами. Порядок важен: первая совпавшая побеждает.
var ErrorList = []errorStatus{
	{apperrors.ErrNotFound, http.StatusNotFound},
	{apperrors.ErrForbidden, http.StatusForbidden},
	{apperrors.ErrOrderCompleted, http.StatusConflict},
	{apperrors.ErrBadRequest, http.StatusBadRequest},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized},
	{apperrors.ErrEmptyAuthHeader, http.StatusUnauthorized},
	{apperrors.ErrInvalidAuthHeader, http.StatusUnauthorized},
	{apperrors.ErrInvalidToken, http.StatusUnauthorized},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized},
	{apperrors.ErrInvalidSigningMethod, http.StatusUnauthorized},
	{apperrors.ErrActorNotFoundInContext, http.StatusUnauthorized},
}
