package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Application error codes. They map the domain's failure taxonomy onto a
// small set of machine-readable strings, which in turn map onto http status
// codes in ReturnError.
const (
	ECONFLICT = "conflict" // duplicate username, email, follow edge
	EINTERNAL = "internal" // anything we didn't anticipate
	EINVALID = "invalid" // malformed or rule-breaking input
	ENOTFOUND = "not_found"
	EUNAUTHORIZED = "unauthorized"
)

// Error is an application error. Code classifies the failure, Message is safe
// to show to the end user.
type Error struct {
	Code string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("warbler error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper for constructing an *Error with a formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code: code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Internal error details are never exposed to the end user.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "An internal error has occurred."
}

// codeStatusMap translates application error codes to http status codes.
var codeStatusMap = map[string]int{
	ECONFLICT: http.StatusConflict,
	EINTERNAL: http.StatusInternalServerError,
	EINVALID: http.StatusBadRequest,
	ENOTFOUND: http.StatusNotFound,
	EUNAUTHORIZED: http.StatusUnauthorized,
}

// ErrorStatusCode returns the http status code for an application error code.
func ErrorStatusCode(code string) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ReturnError writes an error response as json. Internal errors get logged
// and stripped down to a generic message before leaving the process.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)
	if code == EINTERNAL {
		LogError(r, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ErrorStatusCode(code))
	json.NewEncoder(w).Encode(&Error{Code: code, Message: message})
}

// LogError logs an error together with the request's method and path.
func LogError(r *http.Request, err error) {
	logrus.WithFields(logrus.Fields{
		"method": r.Method,
		"path": r.URL.Path,
	}).Error(err)
}
