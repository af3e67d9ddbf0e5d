package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/NomadCrew/nomad-crew-ledger/logger"
)

type ErrorType string

const (
	ValidationError            ErrorType = "VALIDATION_ERROR"
	SplitMismatchError         ErrorType = "SPLIT_MISMATCH"
	NotFoundError              ErrorType = "NOT_FOUND"
	AuthError                  ErrorType = "AUTHENTICATION_ERROR"
	DatabaseError              ErrorType = "DATABASE_ERROR"
	ServerError                ErrorType = "SERVER_ERROR"
	TripArchivedError          ErrorType = "TRIP_ARCHIVED"
	ExpenseLockedError         ErrorType = "EXPENSE_LOCKED"
	InternalInconsistencyError ErrorType = "INTERNAL_INCONSISTENCY"
	RateLimitError             ErrorType = "RATE_LIMIT_EXCEEDED"
	ErrorTypeConflict          ErrorType = "CONFLICT"
)

// Validation sub-codes carried in AppError.Code.
const (
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeEmptyParticipantSet = "EMPTY_PARTICIPANT_SET"
	CodeUnknownStrategy     = "UNKNOWN_STRATEGY"
	CodeNegativeShare       = "NEGATIVE_SHARE"
	CodeCurrencyMismatch    = "CURRENCY_MISMATCH"
	CodeNotTripMember       = "NOT_TRIP_MEMBER"
	CodeSelfSettlement      = "SELF_SETTLEMENT"
	CodeInvalidDescription  = "INVALID_DESCRIPTION"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	RetryAfter int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the status the error handler should respond with.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return getHTTPStatus(e.Type)
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

// WithCode sets the machine readable sub-code and returns the same error.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// SplitMismatch is a validation failure raised when explicit shares do not
// add up to the expense total.
func SplitMismatch(expected, actual string) *AppError {
	return &AppError{
		Type:       SplitMismatchError,
		Code:       string(SplitMismatchError),
		Message:    "Split amounts do not add up to the expense total",
		Detail:     fmt.Sprintf("expected %s, got %s", expected, actual),
		HTTPStatus: http.StatusBadRequest,
	}
}

func AuthenticationFailed(message string) *AppError {
	return &AppError{
		Type:       AuthError,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func NewDatabaseError(err error) *AppError {
	// Log original error but return sanitized message
	logger.GetLogger().Errorw("Database error", "error", err)
	return &AppError{
		Type:       DatabaseError,
		Message:    "Database operation failed",
		Detail:     "Please try again later",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func TripArchived(tripID string) *AppError {
	return &AppError{
		Type:       TripArchivedError,
		Code:       string(TripArchivedError),
		Message:    "Trip is archived",
		Detail:     fmt.Sprintf("Trip %s is read-only until it is unarchived", tripID),
		HTTPStatus: http.StatusConflict,
	}
}

// ExpenseLocked reports an attempt to change the financial fields of an
// expense that a later settlement already accounts for.
func ExpenseLocked(expenseID string) *AppError {
	return &AppError{
		Type:       ExpenseLockedError,
		Code:       string(ExpenseLockedError),
		Message:    "Expense is locked by a settlement",
		Detail:     fmt.Sprintf("Only the description of expense %s can be changed", expenseID),
		HTTPStatus: http.StatusConflict,
	}
}

func InternalInconsistency(tripID string, detail string) *AppError {
	return &AppError{
		Type:       InternalInconsistencyError,
		Code:       string(InternalInconsistencyError),
		Message:    "Ledger is inconsistent",
		Detail:     fmt.Sprintf("trip %s: %s", tripID, detail),
		HTTPStatus: http.StatusInternalServerError,
	}
}

func RateLimitExceeded(message string, retryAfter int) *AppError {
	return &AppError{
		Type:       RateLimitError,
		Message:    message,
		HTTPStatus: http.StatusTooManyRequests,
		RetryAfter: retryAfter,
	}
}

func NewConflictError(message string, detail string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusConflict,
	}
}

// As extracts the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == errType
}

// IsValidation is true for plain validation failures and split mismatches.
func IsValidation(err error) bool {
	return IsType(err, ValidationError) || IsType(err, SplitMismatchError)
}

func IsNotFound(err error) bool {
	return IsType(err, NotFoundError)
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError, SplitMismatchError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case AuthError:
		return http.StatusUnauthorized
	case TripArchivedError, ExpenseLockedError, ErrorTypeConflict:
		return http.StatusConflict
	case RateLimitError:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
