package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind groups error codes by how callers are expected to react.
type Kind string

const (
	KindTransport Kind = "transport" // no connectivity, timeout, breaker open
	KindAuth      Kind = "auth"      // missing, expired or rejected token
	KindShape     Kind = "shape"     // response did not match the expected shape
	KindRejected  Kind = "rejected"  // backend answered 4xx for another reason
	KindInput     Kind = "input"     // user input failed validation, no I/O attempted
	KindInternal  Kind = "internal"
)

type AppError struct {
	Code    string
	Kind    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on Code so wrapped sentinels compare equal with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func New(code, message string, cause ...error) *AppError {
	var c error
	if len(cause) > 0 {
		c = cause[0]
	}
	return &AppError{
		Code:    code,
		Kind:    kindOf(code),
		Message: message,
		Cause:   c,
	}
}

var (
	ErrConfigNotFound = &AppError{Code: "CONFIG_001", Kind: KindInternal, Message: "configuration not found"}
	ErrConfigInvalid  = &AppError{Code: "CONFIG_002", Kind: KindInternal, Message: "invalid configuration"}

	ErrTransport   = &AppError{Code: "NET_001", Kind: KindTransport, Message: "backend unreachable"}
	ErrBreakerOpen = &AppError{Code: "NET_002", Kind: KindTransport, Message: "backend circuit open"}

	ErrNoToken      = &AppError{Code: "AUTH_001", Kind: KindAuth, Message: "not signed in"}
	ErrTokenExpired = &AppError{Code: "AUTH_002", Kind: KindAuth, Message: "session expired"}
	ErrUnauthorized = &AppError{Code: "AUTH_003", Kind: KindAuth, Message: "unauthorized"}

	ErrShape    = &AppError{Code: "SHAPE_001", Kind: KindShape, Message: "unexpected response shape"}
	ErrRejected = &AppError{Code: "API_001", Kind: KindRejected, Message: "request rejected"}

	ErrInvalidInput = &AppError{Code: "INPUT_001", Kind: KindInput, Message: "invalid input"}

	ErrNotFound = &AppError{Code: "GEN_001", Kind: KindRejected, Message: "resource not found"}
	ErrInternal = &AppError{Code: "GEN_003", Kind: KindInternal, Message: "internal error"}
)

var kinds = map[string]Kind{}

func init() {
	for _, e := range []*AppError{
		ErrConfigNotFound, ErrConfigInvalid,
		ErrTransport, ErrBreakerOpen,
		ErrNoToken, ErrTokenExpired, ErrUnauthorized,
		ErrShape, ErrRejected, ErrInvalidInput,
		ErrNotFound, ErrInternal,
	} {
		kinds[e.Code] = e.Kind
	}
}

func kindOf(code string) Kind {
	if k, ok := kinds[code]; ok {
		return k
	}
	return KindInternal
}

func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// GetKind returns the kind of the outermost AppError in the chain.
func GetKind(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindOf(code),
		Message: message,
		Cause:   err,
	}
}

// From wraps cause under a sentinel, keeping the sentinel's code and kind.
func From(sentinel *AppError, cause error) *AppError {
	return &AppError{
		Code:    sentinel.Code,
		Kind:    sentinel.Kind,
		Message: sentinel.Message,
		Cause:   cause,
	}
}

// Input returns a validation error whose Message is shown to the user as-is.
func Input(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidInput.Code,
		Kind:    KindInput,
		Message: message,
	}
}

// UserMessage returns the text to show the user for err.
func UserMessage(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
