package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mailio/go-mailio-identity/types"
)

type ApiError struct {
	// Code is the HTTP status code
	Code int `json:"code"`
	// Message is the error message
	Message string `json:"message"`
}

func ApiErrorf(c *gin.Context, code int, format string, args ...interface{}) ApiError {
	ar := ApiError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
	c.AbortWithStatusJSON(code, ar)
	return ar
}

func ValidatorErrorToUser(err validator.ValidationErrors) string {
	var errorMessages []string
	for _, err := range err {
		switch err.Tag() {
		case "required":
			errorMessages = append(errorMessages, fmt.Sprintf("%s is required", err.Field()))
		case "email":
			errorMessages = append(errorMessages, fmt.Sprintf("%s is not a valid email", err.Field()))
		case "max":
			errorMessages = append(errorMessages, fmt.Sprintf("%s is too long", err.Field()))
		default:
			errorMessages = append(errorMessages, fmt.Sprintf("validation failed on field %s", err.Field()))
		}
	}
	return strings.Join(errorMessages, ". ")
}

// serviceError writes the response for an error returned by a service.
// A backing store outage is a 503 so clients know to retry.
func serviceError(c *gin.Context, err error) ApiError {
	switch {
	case errors.Is(err, types.ErrDatabaseUnavailable):
		return ApiErrorf(c, http.StatusServiceUnavailable, "database unavailable, try again later")
	case errors.Is(err, types.ErrInvalidEmail), errors.Is(err, types.ErrInvalidDomain), errors.Is(err, types.ErrBadRequest):
		return ApiErrorf(c, http.StatusBadRequest, "%s", err.Error())
	case errors.Is(err, types.ErrPrimarySupportDisabled):
		return ApiErrorf(c, http.StatusForbidden, "%s", err.Error())
	case errors.Is(err, types.ErrVerificationFailed), errors.Is(err, types.ErrPrincipalMismatch):
		return ApiErrorf(c, http.StatusUnauthorized, "%s", err.Error())
	default:
		return ApiErrorf(c, http.StatusInternalServerError, "internal server error")
	}
}
