package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Lalithx4/agroai/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// fromDomainError maps app error codes onto HTTP statuses. Unknown errors
// stay opaque 500s.
func fromDomainError(err error) *HTTPError {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return &HTTPError{
			Status:  http.StatusInternalServerError,
			Code:    "internal_error",
			Message: "something went wrong",
			Err:     err,
		}
	}
	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperrors.CodeInvalidInput, apperrors.CodeNotPlantOrSoil:
		status = http.StatusBadRequest
	case apperrors.CodeStorageFull:
		status = http.StatusInsufficientStorage
	case apperrors.CodeNetworkTimeout:
		status = http.StatusGatewayTimeout
	case apperrors.CodeNetworkUnavailable:
		status = http.StatusServiceUnavailable
	case apperrors.CodeAnalysisError, apperrors.CodeChatError, apperrors.CodeWeatherError:
		status = http.StatusBadGateway
	}
	return &HTTPError{Status: status, Code: appErr.Code, Message: appErr.Message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return fromDomainError(err)
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
