package apperror

import "net/http"

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
	// Expose forwards Err's text to the client in the "error" field
	Expose bool `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Detail returns the client-visible error text, or nil when nothing is exposed.
func (e *AppError) Detail() interface{} {
	if !e.Expose || e.Err == nil {
		return nil
	}
	return e.Err.Error()
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

func TooLarge(message string) *AppError {
	return New(http.StatusRequestEntityTooLarge, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}

// Validation is returned when required submission fields are missing.
func Validation(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

// Transport wraps a mail delivery failure; the cause is shown to the caller.
func Transport(message string, err error) *AppError {
	appErr := New(http.StatusInternalServerError, message, err)
	appErr.Expose = true
	return appErr
}
